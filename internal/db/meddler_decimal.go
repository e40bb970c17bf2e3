package db

import (
	"database/sql"
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/russross/meddler"
	"github.com/shopspring/decimal"
)

func init() {
	meddler.Register("decimal", DecimalMeddler{})
	meddler.Register("contract", ContractAddressMeddler{})
}

// DecimalMeddler stores exact amounts as decimal text so no precision is lost
// on either driver.
type DecimalMeddler struct{}

func (d DecimalMeddler) PreRead(fieldAddr any) (scanTarget any, err error) {
	return new(sql.NullString), nil
}

func (d DecimalMeddler) PostRead(fieldAddr, scanTarget any) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	switch ptr := fieldAddr.(type) {
	case *decimal.Decimal:
		if !ns.Valid {
			*ptr = decimal.Zero
			return nil
		}
		v, err := decimal.NewFromString(ns.String)
		if err != nil {
			return fmt.Errorf("invalid decimal %q: %w", ns.String, err)
		}
		*ptr = v
	case *decimal.NullDecimal:
		if !ns.Valid {
			*ptr = decimal.NullDecimal{}
			return nil
		}
		v, err := decimal.NewFromString(ns.String)
		if err != nil {
			return fmt.Errorf("invalid decimal %q: %w", ns.String, err)
		}
		*ptr = decimal.NewNullDecimal(v)
	default:
		return fmt.Errorf("expected *decimal.Decimal or *decimal.NullDecimal, got %T", fieldAddr)
	}

	return nil
}

func (d DecimalMeddler) PreWrite(field any) (saveValue any, err error) {
	switch v := field.(type) {
	case decimal.Decimal:
		return v.String(), nil
	case decimal.NullDecimal:
		if !v.Valid {
			return nil, nil
		}
		return v.Decimal.String(), nil
	default:
		return nil, fmt.Errorf("expected decimal.Decimal or decimal.NullDecimal, got %T", field)
	}
}

// ContractAddressMeddler stores a contract address as the decimal index*2^64+subindex.
type ContractAddressMeddler struct{}

func (c ContractAddressMeddler) PreRead(fieldAddr any) (scanTarget any, err error) {
	return new(sql.NullString), nil
}

func (c ContractAddressMeddler) PostRead(fieldAddr, scanTarget any) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	ptr, ok := fieldAddr.(*chain.ContractAddress)
	if !ok {
		return fmt.Errorf("expected *chain.ContractAddress, got %T", fieldAddr)
	}
	if !ns.Valid {
		*ptr = chain.ContractAddress{}
		return nil
	}

	addr, err := ContractAddressFromText(ns.String)
	if err != nil {
		return err
	}
	*ptr = addr
	return nil
}

func (c ContractAddressMeddler) PreWrite(field any) (saveValue any, err error) {
	addr, ok := field.(chain.ContractAddress)
	if !ok {
		return nil, fmt.Errorf("expected chain.ContractAddress, got %T", field)
	}
	return ContractAddressText(addr), nil
}

// ContractAddressText is the stored form of a contract address, for hand written queries.
func ContractAddressText(addr chain.ContractAddress) string {
	return addr.Decimal().String()
}

// ContractAddressFromText parses the stored form of a contract address.
func ContractAddressFromText(s string) (chain.ContractAddress, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return chain.ContractAddress{}, fmt.Errorf("%w: %q", chain.ErrInvalidContractAddress, s)
	}
	return chain.ContractAddressFromDecimal(d)
}
