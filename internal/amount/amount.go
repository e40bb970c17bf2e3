// Package amount converts chain-native token amounts into exact storage decimals.
//
// Every conversion goes through the LEB128 wire form and a big.Int, never a
// narrowing numeric cast, so values of any width survive unchanged.
package amount

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotInteger is returned when a stored amount has a fractional part.
	ErrNotInteger = errors.New("amount is not an integer")
	// ErrNegative is returned when a stored amount is below zero.
	ErrNegative = errors.New("amount is negative")
	// ErrOutOfRange is returned when a stored amount does not fit the target width.
	ErrOutOfRange = errors.New("amount out of range")
)

// FromU8 converts an 8 bit token amount.
func FromU8(v uint8) decimal.Decimal {
	return mustFromWire(new(big.Int).SetUint64(uint64(v)))
}

// FromU32 converts a 32 bit token amount.
func FromU32(v uint32) decimal.Decimal {
	return mustFromWire(new(big.Int).SetUint64(uint64(v)))
}

// FromU64 converts a 64 bit token amount.
func FromU64(v uint64) decimal.Decimal {
	return mustFromWire(new(big.Int).SetUint64(v))
}

// FromBig converts an arbitrary precision token amount of up to 256 bits.
func FromBig(v *big.Int) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, nil
	}
	return fromWire(v)
}

// FromLEB128 converts the wire form directly.
func FromLEB128(data []byte) (decimal.Decimal, error) {
	v, n, err := serial.DecodeLEB128(data)
	if err != nil {
		return decimal.Zero, err
	}
	if n != len(data) {
		return decimal.Zero, serial.ErrTrailingBytes
	}
	return decimal.NewFromBigInt(v, 0), nil
}

func fromWire(v *big.Int) (decimal.Decimal, error) {
	wire, err := serial.EncodeLEB128(v)
	if err != nil {
		return decimal.Zero, err
	}
	return FromLEB128(wire)
}

func mustFromWire(v *big.Int) decimal.Decimal {
	d, err := fromWire(v)
	if err != nil {
		// unreachable for values of at most 64 bits
		panic(err)
	}
	return d
}

// ToBig converts a stored amount back to an integer.
func ToBig(d decimal.Decimal) (*big.Int, error) {
	if !d.IsInteger() {
		return nil, fmt.Errorf("%w: %s", ErrNotInteger, d)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegative, d)
	}
	return d.BigInt(), nil
}

// ToU64 converts a stored amount back to a 64 bit amount.
func ToU64(d decimal.Decimal) (uint64, error) {
	v, err := ToBig(d)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d)
	}
	return v.Uint64(), nil
}

// ToU32 converts a stored amount back to a 32 bit amount.
func ToU32(d decimal.Decimal) (uint32, error) {
	v, err := ToU64(d)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d)
	}
	return uint32(v), nil
}

// ToU8 converts a stored amount back to an 8 bit amount.
func ToU8(d decimal.Decimal) (uint8, error) {
	v, err := ToU64(d)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d)
	}
	return uint8(v), nil
}

// Sub returns a-b, or false if the result would be negative.
func Sub(a, b decimal.Decimal) (decimal.Decimal, bool) {
	r := a.Sub(b)
	if r.IsNegative() {
		return a, false
	}
	return r, true
}
