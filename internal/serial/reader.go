// Package serial decodes the Concordium binary serialization used by contract
// event payloads.
package serial

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

const (
	addressTagAccount  = 0
	addressTagContract = 1

	optionNone = 0
	optionSome = 1
)

var (
	// ErrUnexpectedEOF is returned when the payload ends in the middle of a value.
	ErrUnexpectedEOF = errors.New("unexpected end of payload")
	// ErrTrailingBytes is returned by Done when bytes remain after the last field.
	ErrTrailingBytes = errors.New("trailing bytes after payload")
	// ErrInvalidTag is returned for an unknown variant tag.
	ErrInvalidTag = errors.New("invalid tag")
)

// Reader consumes a single serialized value. Errors are sticky: after the
// first failure every read returns the zero value and Err reports the cause.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Done returns the first read error, or ErrTrailingBytes if data is left over.
func (r *Reader) Done() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.buf) {
		return fmt.Errorf("%w: %d", ErrTrailingBytes, len(r.buf)-r.off)
	}
	return nil
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = fmt.Errorf("offset %d: %w", r.off, err)
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.fail(ErrUnexpectedEOF)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2) //nolint:mnd
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4) //nolint:mnd
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) U64() uint64 {
	b := r.take(8) //nolint:mnd
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// TokenAmount reads a LEB128 encoded CIS2 token amount.
func (r *Reader) TokenAmount() *big.Int {
	if r.err != nil {
		return new(big.Int)
	}
	v, n, err := DecodeLEB128(r.buf[r.off:])
	if err != nil {
		r.fail(err)
		return new(big.Int)
	}
	r.off += n
	return v
}

// TokenID reads a token id prefixed with its u8 length.
func (r *Reader) TokenID() chain.TokenID {
	n := r.U8()
	id := r.Bytes(int(n))
	if id == nil {
		return chain.TokenID{}
	}
	return chain.TokenID(id)
}

// Text reads a UTF-8 string prefixed with its u16 length.
func (r *Reader) Text() string {
	n := r.U16()
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.fail(errors.New("invalid utf-8 string"))
		return ""
	}
	return string(b)
}

// Hash reads a 32 byte digest.
func (r *Reader) Hash() common.Hash {
	b := r.take(common.HashLength)
	if b == nil {
		return common.Hash{}
	}
	return common.BytesToHash(b)
}

// OptionalHash reads an Option<[u8; 32]>.
func (r *Reader) OptionalHash() *common.Hash {
	switch tag := r.U8(); {
	case r.err != nil:
		return nil
	case tag == optionNone:
		return nil
	case tag == optionSome:
		h := r.Hash()
		return &h
	default:
		r.fail(fmt.Errorf("%w: option %d", ErrInvalidTag, tag))
		return nil
	}
}

// AccountAddress reads a raw 32 byte account address.
func (r *Reader) AccountAddress() chain.AccountAddress {
	b := r.take(chain.AccountAddressLength)
	if b == nil {
		return ""
	}
	addr, err := chain.AccountAddressFromBytes(b)
	if err != nil {
		r.fail(err)
		return ""
	}
	return addr
}

// ContractAddress reads an index and subindex.
func (r *Reader) ContractAddress() chain.ContractAddress {
	index := r.U64()
	subindex := r.U64()
	return chain.ContractAddress{Index: index, Subindex: subindex}
}

// Address reads a tagged account or contract address.
func (r *Reader) Address() chain.Address {
	switch tag := r.U8(); {
	case r.err != nil:
		return chain.Address{}
	case tag == addressTagAccount:
		return chain.AccountAddr(r.AccountAddress())
	case tag == addressTagContract:
		return chain.ContractAddr(r.ContractAddress())
	default:
		r.fail(fmt.Errorf("%w: address %d", ErrInvalidTag, tag))
		return chain.Address{}
	}
}

// TokenUID reads a token id qualified by its contract.
func (r *Reader) TokenUID() TokenUID {
	contract := r.ContractAddress()
	id := r.TokenID()
	return TokenUID{Contract: contract, ID: id}
}

// Rate reads a numerator and denominator pair.
func (r *Reader) Rate() Rate {
	num := r.U64()
	den := r.U64()
	return Rate{Numerator: num, Denominator: den}
}

// VecLen reads a u16 collection length.
func (r *Reader) VecLen() int {
	return int(r.U16())
}
