package serial

import (
	"errors"
	"math/big"
)

// MaxTokenAmountBytes bounds a LEB128 token amount, enough for 256 bit values.
const MaxTokenAmountBytes = 37

var (
	// ErrLEB128Overflow is returned when an amount does not terminate within MaxTokenAmountBytes.
	ErrLEB128Overflow = errors.New("leb128 amount too long")
	// ErrNegativeAmount is returned when encoding a negative value.
	ErrNegativeAmount = errors.New("negative amount")
)

// DecodeLEB128 decodes an unsigned LEB128 value and returns it with the number
// of bytes consumed.
func DecodeLEB128(data []byte) (*big.Int, int, error) {
	result := new(big.Int)
	chunk := new(big.Int)
	var shift uint
	for i, b := range data {
		if i >= MaxTokenAmountBytes {
			return nil, 0, ErrLEB128Overflow
		}
		chunk.SetUint64(uint64(b & 0x7f)) //nolint:mnd
		result.Or(result, chunk.Lsh(chunk, shift))
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	if len(data) >= MaxTokenAmountBytes {
		return nil, 0, ErrLEB128Overflow
	}
	return nil, 0, ErrUnexpectedEOF
}

// EncodeLEB128 encodes a non-negative value as unsigned LEB128.
func EncodeLEB128(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, ErrNegativeAmount
	}

	n := new(big.Int).Set(v)
	low := new(big.Int)
	mask := big.NewInt(0x7f) //nolint:mnd

	var out []byte
	for {
		b := byte(low.And(n, mask).Uint64())
		n.Rsh(n, 7)
		if n.Sign() == 0 {
			out = append(out, b)
			break
		}
		out = append(out, b|0x80)
	}

	if len(out) > MaxTokenAmountBytes {
		return nil, ErrLEB128Overflow
	}
	return out, nil
}
