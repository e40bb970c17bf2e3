package processor

import (
	"fmt"
	"strings"
)

// Type is the persisted tag of a processor family. Values are stored in the
// tracked_contracts table: never renumber, only append.
type Type uint8

const (
	TypeIdentityRegistry        Type = 1
	TypeCompliance              Type = 2
	TypeSecurityCIS2            Type = 3
	TypeSecurityMintFund        Type = 4
	TypeSecuritySftRewards      Type = 5
	TypeSecurityP2PTrading      Type = 6
	TypeNftMultiRewarded        Type = 7
	TypeSecuritySftMultiYielder Type = 8
)

// AllTypes lists every processor family in tag order.
var AllTypes = []Type{
	TypeIdentityRegistry,
	TypeCompliance,
	TypeSecurityCIS2,
	TypeSecurityMintFund,
	TypeSecuritySftRewards,
	TypeSecurityP2PTrading,
	TypeNftMultiRewarded,
	TypeSecuritySftMultiYielder,
}

// String returns the configuration name of the type.
func (t Type) String() string {
	switch t {
	case TypeIdentityRegistry:
		return "identity_registry"
	case TypeCompliance:
		return "compliance"
	case TypeSecurityCIS2:
		return "security_cis2"
	case TypeSecurityMintFund:
		return "security_mint_fund"
	case TypeSecuritySftRewards:
		return "security_sft_rewards"
	case TypeSecurityP2PTrading:
		return "security_p2p_trading"
	case TypeNftMultiRewarded:
		return "nft_multi_rewarded"
	case TypeSecuritySftMultiYielder:
		return "security_sft_multi_yielder"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Valid reports whether t is a known processor family.
func (t Type) Valid() bool {
	return t >= TypeIdentityRegistry && t <= TypeSecuritySftMultiYielder
}

// ParseType maps a configuration name back to its Type.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range AllTypes {
		if t.String() == name {
			return t, nil
		}
	}

	names := make([]string, len(AllTypes))
	for i, t := range AllTypes {
		names[i] = t.String()
	}

	return 0, fmt.Errorf("unknown processor type %q (supported: %s)", name, strings.Join(names, ", "))
}

// MarshalText encodes the type by its configuration name. Tags this build does
// not know render as unknown(N) and do not parse back.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a configuration name.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
