package cis2security

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// Event tags. 255 to 251 are the CIS2 standard, the rest is the security extension.
const (
	TagTransfer              uint8 = 255
	TagMint                  uint8 = 254
	TagBurn                  uint8 = 253
	TagUpdateOperator        uint8 = 252
	TagTokenMetadata         uint8 = 251
	TagTokensFrozen          uint8 = 250
	TagTokensUnFrozen        uint8 = 249
	TagAgentAdded            uint8 = 248
	TagAgentRemoved          uint8 = 247
	TagPaused                uint8 = 246
	TagUnPaused              uint8 = 245
	TagIdentityRegistryAdded uint8 = 244
	TagComplianceAdded       uint8 = 243
	TagRecovered             uint8 = 242
)

// ErrUnknownEvent is returned by the decoders for tags they do not define, so
// extended families can decode their own tags first and fall back.
var ErrUnknownEvent = errors.New("unknown event tag")

// Event is a decoded CIS2 security event.
type Event interface {
	Tag() uint8
}

type Transfer struct {
	TokenID chain.TokenID
	Amount  *big.Int
	From    chain.Address
	To      chain.Address
}

type Mint struct {
	TokenID chain.TokenID
	Amount  *big.Int
	Owner   chain.Address
}

type Burn struct {
	TokenID chain.TokenID
	Amount  *big.Int
	Owner   chain.Address
}

// OperatorUpdate values.
const (
	OperatorRemove uint8 = 0
	OperatorAdd    uint8 = 1
)

type UpdateOperator struct {
	Update   uint8
	Owner    chain.Address
	Operator chain.Address
}

type TokenMetadata struct {
	TokenID chain.TokenID
	URL     string
	Hash    *common.Hash
}

// TokensFrozen and TokensUnFrozen share a layout.
type TokensFrozen struct {
	TokenID chain.TokenID
	Amount  *big.Int
	Address chain.Address
}

type TokensUnFrozen TokensFrozen

type AgentAdded struct {
	Agent chain.Address
	Roles []uint8
}

type AgentRemoved struct {
	Agent chain.Address
}

type Paused struct {
	TokenID chain.TokenID
}

type UnPaused Paused

type IdentityRegistryAdded struct {
	Contract chain.ContractAddress
}

type ComplianceAdded struct {
	Contract chain.ContractAddress
}

type Recovered struct {
	LostAccount chain.Address
	NewAccount  chain.Address
}

func (Transfer) Tag() uint8 { return TagTransfer }
func (Mint) Tag() uint8 { return TagMint }
func (Burn) Tag() uint8 { return TagBurn }
func (UpdateOperator) Tag() uint8 { return TagUpdateOperator }
func (TokenMetadata) Tag() uint8 { return TagTokenMetadata }
func (TokensFrozen) Tag() uint8 { return TagTokensFrozen }
func (TokensUnFrozen) Tag() uint8 { return TagTokensUnFrozen }
func (AgentAdded) Tag() uint8 { return TagAgentAdded }
func (AgentRemoved) Tag() uint8 { return TagAgentRemoved }
func (Paused) Tag() uint8 { return TagPaused }
func (UnPaused) Tag() uint8 { return TagUnPaused }
func (IdentityRegistryAdded) Tag() uint8 { return TagIdentityRegistryAdded }
func (ComplianceAdded) Tag() uint8 { return TagComplianceAdded }
func (Recovered) Tag() uint8 { return TagRecovered }

// DecodeStandard decodes the CIS2 standard events only.
func DecodeStandard(payload []byte) (Event, error) {
	r := serial.NewReader(payload)
	tag := r.U8()
	if r.Err() != nil {
		return nil, r.Err()
	}
	if tag < TagTokenMetadata {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEvent, tag)
	}
	return decodeBody(tag, r)
}

// Decode decodes CIS2 standard and security extension events.
func Decode(payload []byte) (Event, error) {
	r := serial.NewReader(payload)
	tag := r.U8()
	if r.Err() != nil {
		return nil, r.Err()
	}
	return decodeBody(tag, r)
}

// DecodeBody decodes the event after its tag was consumed from r.
func DecodeBody(tag uint8, r *serial.Reader) (Event, error) {
	return decodeBody(tag, r)
}

func decodeBody(tag uint8, r *serial.Reader) (Event, error) {
	var ev Event
	switch tag {
	case TagTransfer:
		ev = Transfer{TokenID: r.TokenID(), Amount: r.TokenAmount(), From: r.Address(), To: r.Address()}
	case TagMint:
		ev = Mint{TokenID: r.TokenID(), Amount: r.TokenAmount(), Owner: r.Address()}
	case TagBurn:
		ev = Burn{TokenID: r.TokenID(), Amount: r.TokenAmount(), Owner: r.Address()}
	case TagUpdateOperator:
		ev = UpdateOperator{Update: r.U8(), Owner: r.Address(), Operator: r.Address()}
	case TagTokenMetadata:
		ev = TokenMetadata{TokenID: r.TokenID(), URL: r.Text(), Hash: r.OptionalHash()}
	case TagTokensFrozen:
		ev = TokensFrozen{TokenID: r.TokenID(), Amount: r.TokenAmount(), Address: r.Address()}
	case TagTokensUnFrozen:
		ev = TokensUnFrozen{TokenID: r.TokenID(), Amount: r.TokenAmount(), Address: r.Address()}
	case TagAgentAdded:
		agent := r.Address()
		roles := make([]uint8, 0)
		for n := r.VecLen(); n > 0 && r.Err() == nil; n-- {
			roles = append(roles, r.U8())
		}
		ev = AgentAdded{Agent: agent, Roles: roles}
	case TagAgentRemoved:
		ev = AgentRemoved{Agent: r.Address()}
	case TagPaused:
		ev = Paused{TokenID: r.TokenID()}
	case TagUnPaused:
		ev = UnPaused{TokenID: r.TokenID()}
	case TagIdentityRegistryAdded:
		ev = IdentityRegistryAdded{Contract: r.ContractAddress()}
	case TagComplianceAdded:
		ev = ComplianceAdded{Contract: r.ContractAddress()}
	case TagRecovered:
		ev = Recovered{LostAccount: r.Address(), NewAccount: r.Address()}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEvent, tag)
	}

	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("event %d: %w", tag, err)
	}
	if tag == TagUpdateOperator {
		if u := ev.(UpdateOperator).Update; u != OperatorRemove && u != OperatorAdd {
			return nil, fmt.Errorf("event %d: %w: operator update %d", tag, serial.ErrInvalidTag, u)
		}
	}
	return ev, nil
}
