package sftmultiyielder

import (
	"fmt"
	"math/big"

	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

const (
	TagAgentAdded       uint8 = 0
	TagAgentRemoved     uint8 = 1
	TagYieldAdded       uint8 = 2
	TagYieldRemoved     uint8 = 3
	TagYieldDistributed uint8 = 4
)

// Calculation selects how a yield scales with the held amount.
type Calculation uint8

const (
	// CalculationQuantity pays rate times the held amount once.
	CalculationQuantity Calculation = 0
	// CalculationSimpleInterest pays rate times the held amount per elapsed version.
	CalculationSimpleInterest Calculation = 1
)

func (c Calculation) Valid() bool {
	return c <= CalculationSimpleInterest
}

type Event interface {
	Tag() uint8
}

type AgentAdded struct {
	Agent chain.Address
}

type AgentRemoved struct {
	Agent chain.Address
}

// Yield is one reward paid for holding a token version.
type Yield struct {
	Token       serial.TokenUID
	Rate        serial.Rate
	Calculation Calculation
}

type YieldAdded struct {
	TokenContract chain.ContractAddress
	TokenVer      uint64
	Yields        []Yield
}

type YieldRemoved struct {
	TokenContract chain.ContractAddress
	TokenVer      uint64
}

// YieldDistributed records owner exchanging version FromVer for ToVer.
type YieldDistributed struct {
	FromVer       uint64
	ToVer         uint64
	TokenContract chain.ContractAddress
	Amount        *big.Int
	Owner         chain.Address
}

func (AgentAdded) Tag() uint8 { return TagAgentAdded }
func (AgentRemoved) Tag() uint8 { return TagAgentRemoved }
func (YieldAdded) Tag() uint8 { return TagYieldAdded }
func (YieldRemoved) Tag() uint8 { return TagYieldRemoved }
func (YieldDistributed) Tag() uint8 { return TagYieldDistributed }

// Decode parses one yielder event.
func Decode(payload []byte) (Event, error) {
	r := serial.NewReader(payload)
	tag := r.U8()

	var ev Event
	switch tag {
	case TagAgentAdded:
		ev = AgentAdded{Agent: r.Address()}
	case TagAgentRemoved:
		ev = AgentRemoved{Agent: r.Address()}
	case TagYieldAdded:
		e := YieldAdded{TokenContract: r.ContractAddress(), TokenVer: r.U64()}
		for n := r.VecLen(); n > 0 && r.Err() == nil; n-- {
			y := Yield{Token: r.TokenUID(), Rate: r.Rate(), Calculation: Calculation(r.U8())}
			if r.Err() == nil && !y.Calculation.Valid() {
				return nil, fmt.Errorf("%w: yield calculation %d", serial.ErrInvalidTag, y.Calculation)
			}
			e.Yields = append(e.Yields, y)
		}
		ev = e
	case TagYieldRemoved:
		ev = YieldRemoved{TokenContract: r.ContractAddress(), TokenVer: r.U64()}
	case TagYieldDistributed:
		ev = YieldDistributed{
			FromVer:       r.U64(),
			ToVer:         r.U64(),
			TokenContract: r.ContractAddress(),
			Amount:        r.TokenAmount(),
			Owner:         r.Address(),
		}
	default:
		if r.Err() != nil {
			return nil, r.Err()
		}
		return nil, fmt.Errorf("unknown event tag %d", tag)
	}

	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("event %d: %w", tag, err)
	}
	return ev, nil
}
