package chain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// accountAddressVersion is the base58check version byte of account addresses.
const accountAddressVersion = 1

// AccountAddressLength is the length of a raw account address.
const AccountAddressLength = 32

type (
	// BlockHash identifies a block.
	BlockHash = common.Hash
	// TxHash identifies a block item.
	TxHash = common.Hash
	// ModuleRef identifies deployed contract code.
	ModuleRef = common.Hash
)

var (
	// ErrInvalidAccountAddress is returned for strings that are not base58check account addresses.
	ErrInvalidAccountAddress = errors.New("invalid account address")
	// ErrInvalidContractAddress is returned for unparsable contract addresses.
	ErrInvalidContractAddress = errors.New("invalid contract address")
)

// two64 is 2^64, the weight of the index in the decimal form of a contract address.
var two64 = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 64), 0) //nolint:mnd

// ContractAddress is the address of a smart contract instance.
type ContractAddress struct {
	Index    uint64 `json:"index"`
	Subindex uint64 `json:"subindex"`
}

// String renders the address as <index,subindex>.
func (a ContractAddress) String() string {
	return fmt.Sprintf("<%d,%d>", a.Index, a.Subindex)
}

// Decimal packs the address into a single number, index * 2^64 + subindex.
func (a ContractAddress) Decimal() decimal.Decimal {
	index := decimal.NewFromBigInt(new(big.Int).SetUint64(a.Index), 0)
	subindex := decimal.NewFromBigInt(new(big.Int).SetUint64(a.Subindex), 0)
	return index.Mul(two64).Add(subindex)
}

// ContractAddressFromDecimal reverses ContractAddress.Decimal.
func ContractAddressFromDecimal(d decimal.Decimal) (ContractAddress, error) {
	if !d.IsInteger() || d.IsNegative() {
		return ContractAddress{}, fmt.Errorf("%w: %s", ErrInvalidContractAddress, d)
	}

	n := d.BigInt()
	sub := new(big.Int)
	idx := new(big.Int)
	idx.QuoRem(n, two64.BigInt(), sub)
	if !idx.IsUint64() {
		return ContractAddress{}, fmt.Errorf("%w: %s", ErrInvalidContractAddress, d)
	}

	return ContractAddress{Index: idx.Uint64(), Subindex: sub.Uint64()}, nil
}

// ParseContractAddress accepts "<index,subindex>", "index,subindex" or a bare index.
func ParseContractAddress(s string) (ContractAddress, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")

	indexPart, subPart, hasSub := strings.Cut(s, ",")
	index, err := strconv.ParseUint(strings.TrimSpace(indexPart), 10, 64)
	if err != nil {
		return ContractAddress{}, fmt.Errorf("%w: %q", ErrInvalidContractAddress, s)
	}

	var sub uint64
	if hasSub {
		sub, err = strconv.ParseUint(strings.TrimSpace(subPart), 10, 64)
		if err != nil {
			return ContractAddress{}, fmt.Errorf("%w: %q", ErrInvalidContractAddress, s)
		}
	}

	return ContractAddress{Index: index, Subindex: sub}, nil
}

// AccountAddress is the base58check encoded form of an account address.
type AccountAddress string

// AccountAddressFromBytes encodes a raw 32 byte account address.
func AccountAddressFromBytes(raw []byte) (AccountAddress, error) {
	if len(raw) != AccountAddressLength {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAccountAddress, AccountAddressLength, len(raw))
	}
	return AccountAddress(base58.CheckEncode(raw, accountAddressVersion)), nil
}

// Bytes decodes the address back into its raw form.
func (a AccountAddress) Bytes() ([]byte, error) {
	raw, version, err := base58.CheckDecode(string(a))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccountAddress, err)
	}
	if version != accountAddressVersion || len(raw) != AccountAddressLength {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountAddress, a)
	}
	return raw, nil
}

func (a AccountAddress) String() string {
	return string(a)
}

// Address is either an account or a contract.
type Address struct {
	Account  *AccountAddress  `json:"account,omitempty"`
	Contract *ContractAddress `json:"contract,omitempty"`
}

// AccountAddr wraps an account address.
func AccountAddr(a AccountAddress) Address {
	return Address{Account: &a}
}

// ContractAddr wraps a contract address.
func ContractAddr(c ContractAddress) Address {
	return Address{Contract: &c}
}

// String renders accounts in base58 and contracts as <index,subindex>.
func (a Address) String() string {
	switch {
	case a.Account != nil:
		return a.Account.String()
	case a.Contract != nil:
		return a.Contract.String()
	default:
		return ""
	}
}

// TokenID is a CIS2 token identifier, rendered as lowercase hex without prefix.
type TokenID []byte

func (t TokenID) String() string {
	return hex.EncodeToString(t)
}

// ParseTokenID parses the hex form of a token id.
func ParseTokenID(s string) (TokenID, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	return TokenID(raw), nil
}

// ContractEvent is the raw binary payload logged by a contract.
type ContractEvent = hexutil.Bytes

// FinalizedBlock is one item of the finalized block stream.
type FinalizedBlock struct {
	Height uint64    `json:"height"`
	Hash   BlockHash `json:"hash"`
}

// BlockInfo is the block metadata the listener needs.
type BlockInfo struct {
	Hash             BlockHash `json:"hash"`
	Height           uint64    `json:"height"`
	SlotTime         time.Time `json:"slotTime"`
	TransactionCount uint64    `json:"transactionCount"`
}

// BlockItemSummary is the outcome of one block item.
type BlockItemSummary struct {
	Index   uint64          `json:"index"`
	Hash    TxHash          `json:"hash"`
	Sender  *AccountAddress `json:"sender,omitempty"`
	Details ItemDetails     `json:"details"`
}

// ItemDetails is set for account transactions only, other item kinds are irrelevant.
type ItemDetails struct {
	AccountTransaction *AccountTransactionDetails `json:"accountTransaction,omitempty"`
}

// AccountTransactionDetails carries the effects of an account transaction.
type AccountTransactionDetails struct {
	Sender  AccountAddress            `json:"sender"`
	Cost    uint64                    `json:"cost"`
	Effects AccountTransactionEffects `json:"effects"`
}

// AccountTransactionEffects has at most one field set. Effects that do not touch
// contracts leave both nil.
type AccountTransactionEffects struct {
	ContractInitialized  *ContractInitializedEvent `json:"contractInitialized,omitempty"`
	ContractUpdateIssued *ContractUpdateIssued     `json:"contractUpdateIssued,omitempty"`
}

// ContractInitializedEvent describes a new contract instance.
type ContractInitializedEvent struct {
	Address   ContractAddress `json:"address"`
	OriginRef ModuleRef       `json:"originRef"`
	InitName  string          `json:"initName"`
	Amount    uint64          `json:"amount"`
	Events    []ContractEvent `json:"events"`
}

// ContractUpdateIssued is the execution trace of one outer contract call.
type ContractUpdateIssued struct {
	Effects []TraceElement `json:"effects"`
}

// TraceKind enumerates contract trace elements.
type TraceKind string

const (
	TraceUpdated     TraceKind = "updated"
	TraceInterrupted TraceKind = "interrupted"
	TraceResumed     TraceKind = "resumed"
	TraceTransferred TraceKind = "transferred"
	TraceUpgraded    TraceKind = "upgraded"
)

// TraceElement is one step of a contract execution trace. Which fields are
// meaningful depends on Kind.
type TraceElement struct {
	Kind        TraceKind       `json:"kind"`
	Address     ContractAddress `json:"address"`
	Instigator  *Address        `json:"instigator,omitempty"`
	Amount      uint64          `json:"amount,omitempty"`
	ReceiveName string          `json:"receiveName,omitempty"`
	Events      []ContractEvent `json:"events,omitempty"`
	Success     bool            `json:"success,omitempty"`
	To          *AccountAddress `json:"to,omitempty"`
	FromModule  *ModuleRef      `json:"fromModule,omitempty"`
	ToModule    *ModuleRef      `json:"toModule,omitempty"`
}
