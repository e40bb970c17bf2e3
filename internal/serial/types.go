package serial

import (
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// TokenUID is a token id qualified by the contract that issues it.
type TokenUID struct {
	Contract chain.ContractAddress
	ID       chain.TokenID
}

func (t TokenUID) String() string {
	return fmt.Sprintf("%s/%s", t.Contract, t.ID)
}

// Rate is an exchange rate expressed as a fraction.
type Rate struct {
	Numerator   uint64
	Denominator uint64
}
