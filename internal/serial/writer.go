package serial

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// Writer builds serialized payloads. It mirrors Reader and panics on values
// that cannot be represented, so it is meant for fixtures and tooling.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the payload written so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) U8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) U16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *Writer) U32(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

func (w *Writer) U64(v uint64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

func (w *Writer) Raw(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

func (w *Writer) TokenAmount(v *big.Int) *Writer {
	b, err := EncodeLEB128(v)
	if err != nil {
		panic(err)
	}
	return w.Raw(b)
}

// TokenAmountU64 is a shorthand for small amounts.
func (w *Writer) TokenAmountU64(v uint64) *Writer {
	return w.TokenAmount(new(big.Int).SetUint64(v))
}

func (w *Writer) TokenID(id chain.TokenID) *Writer {
	return w.U8(uint8(len(id))).Raw(id)
}

func (w *Writer) Text(s string) *Writer {
	return w.U16(uint16(len(s))).Raw([]byte(s))
}

func (w *Writer) Hash(h common.Hash) *Writer {
	return w.Raw(h.Bytes())
}

func (w *Writer) OptionalHash(h *common.Hash) *Writer {
	if h == nil {
		return w.U8(optionNone)
	}
	return w.U8(optionSome).Hash(*h)
}

func (w *Writer) AccountAddress(a chain.AccountAddress) *Writer {
	raw, err := a.Bytes()
	if err != nil {
		panic(err)
	}
	return w.Raw(raw)
}

func (w *Writer) ContractAddress(c chain.ContractAddress) *Writer {
	return w.U64(c.Index).U64(c.Subindex)
}

func (w *Writer) Address(a chain.Address) *Writer {
	if a.Contract != nil {
		return w.U8(addressTagContract).ContractAddress(*a.Contract)
	}
	if a.Account == nil {
		panic("serial: empty address")
	}
	return w.U8(addressTagAccount).AccountAddress(*a.Account)
}

func (w *Writer) TokenUID(t TokenUID) *Writer {
	return w.ContractAddress(t.Contract).TokenID(t.ID)
}

func (w *Writer) Rate(r Rate) *Writer {
	return w.U64(r.Numerator).U64(r.Denominator)
}
