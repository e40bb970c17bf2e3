package serial

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/stretchr/testify/require"
)

func testAccount(t *testing.T, fill byte) chain.AccountAddress {
	t.Helper()
	addr, err := chain.AccountAddressFromBytes(bytes.Repeat([]byte{fill}, chain.AccountAddressLength))
	require.NoError(t, err)
	return addr
}

func TestLEB128(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		encoded []byte
	}{
		{name: "zero", value: "0", encoded: []byte{0x00}},
		{name: "one byte max", value: "127", encoded: []byte{0x7f}},
		{name: "two bytes", value: "128", encoded: []byte{0x80, 0x01}},
		{name: "u8 max", value: "255", encoded: []byte{0xff, 0x01}},
		{name: "624485", value: "624485", encoded: []byte{0xe5, 0x8e, 0x26}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := new(big.Int).SetString(tt.value, 10)
			require.True(t, ok)

			enc, err := EncodeLEB128(v)
			require.NoError(t, err)
			require.Equal(t, tt.encoded, enc)

			dec, n, err := DecodeLEB128(enc)
			require.NoError(t, err)
			require.Equal(t, len(enc), n)
			require.Equal(t, 0, v.Cmp(dec))
		})
	}
}

func TestLEB128_Bounds(t *testing.T) {
	max256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	enc, err := EncodeLEB128(max256)
	require.NoError(t, err)
	require.Len(t, enc, MaxTokenAmountBytes)

	dec, _, err := DecodeLEB128(enc)
	require.NoError(t, err)
	require.Equal(t, 0, max256.Cmp(dec))

	_, err = EncodeLEB128(big.NewInt(-1))
	require.ErrorIs(t, err, ErrNegativeAmount)

	_, _, err = DecodeLEB128(bytes.Repeat([]byte{0x80}, MaxTokenAmountBytes+1))
	require.ErrorIs(t, err, ErrLEB128Overflow)

	_, _, err = DecodeLEB128([]byte{0x80, 0x80})
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestReader_CIS2Transfer(t *testing.T) {
	from := testAccount(t, 1)
	to := chain.ContractAddress{Index: 9, Subindex: 1}
	hash := common.HexToHash("0xaa")

	payload := NewWriter().
		U8(255).
		TokenID(chain.TokenID{0x01, 0x02}).
		TokenAmountU64(1000).
		Address(chain.AccountAddr(from)).
		Address(chain.ContractAddr(to)).
		Text("https://example.com/meta.json").
		OptionalHash(&hash).
		OptionalHash(nil).
		Bytes()

	r := NewReader(payload)
	require.Equal(t, uint8(255), r.U8())
	require.Equal(t, chain.TokenID{0x01, 0x02}, r.TokenID())
	require.Equal(t, int64(1000), r.TokenAmount().Int64())
	require.Equal(t, from, *r.Address().Account)
	require.Equal(t, to, *r.Address().Contract)
	require.Equal(t, "https://example.com/meta.json", r.Text())
	require.Equal(t, hash, *r.OptionalHash())
	require.Nil(t, r.OptionalHash())
	require.NoError(t, r.Done())
}

func TestReader_Errors(t *testing.T) {
	t.Run("short payload is sticky", func(t *testing.T) {
		r := NewReader([]byte{0x01})
		require.Zero(t, r.U64())
		require.Zero(t, r.U8())
		require.ErrorIs(t, r.Done(), ErrUnexpectedEOF)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x02})
		r.U8()
		require.ErrorIs(t, r.Done(), ErrTrailingBytes)
	})

	t.Run("bad address tag", func(t *testing.T) {
		r := NewReader([]byte{0x07})
		r.Address()
		require.ErrorIs(t, r.Err(), ErrInvalidTag)
	})

	t.Run("bad option tag", func(t *testing.T) {
		r := NewReader([]byte{0x02})
		r.OptionalHash()
		require.ErrorIs(t, r.Err(), ErrInvalidTag)
	})
}

func TestReader_TokenUIDAndRate(t *testing.T) {
	uid := TokenUID{Contract: chain.ContractAddress{Index: 3}, ID: chain.TokenID{}}
	payload := NewWriter().TokenUID(uid).Rate(Rate{Numerator: 1, Denominator: 2}).Bytes()

	r := NewReader(payload)
	require.Equal(t, uid, r.TokenUID())
	require.Equal(t, Rate{Numerator: 1, Denominator: 2}, r.Rate())
	require.NoError(t, r.Done())
	require.Equal(t, "<3,0>/", uid.String())
}
