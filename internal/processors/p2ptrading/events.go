package p2ptrading

import (
	"fmt"
	"math/big"

	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

const (
	TagAgentAdded    uint8 = 0
	TagAgentRemoved  uint8 = 1
	TagSell          uint8 = 2
	TagSellCancelled uint8 = 3
	TagExchange      uint8 = 4
)

type Event interface {
	Tag() uint8
}

type AgentAdded struct {
	Agent chain.Address
}

type AgentRemoved struct {
	Agent chain.Address
}

// Sell lists Amount tokens of From at Rate currency per token.
type Sell struct {
	Token  serial.TokenUID
	From   chain.AccountAddress
	Amount *big.Int
	Rate   serial.Rate
}

type SellCancelled struct {
	Token  serial.TokenUID
	From   chain.AccountAddress
	Amount *big.Int
}

type Exchange struct {
	Token      serial.TokenUID
	Seller     chain.AccountAddress
	Buyer      chain.AccountAddress
	SellAmount *big.Int
	PayAmount  *big.Int
}

func (AgentAdded) Tag() uint8 { return TagAgentAdded }
func (AgentRemoved) Tag() uint8 { return TagAgentRemoved }
func (Sell) Tag() uint8 { return TagSell }
func (SellCancelled) Tag() uint8 { return TagSellCancelled }
func (Exchange) Tag() uint8 { return TagExchange }

// Decode parses one trading event.
func Decode(payload []byte) (Event, error) {
	r := serial.NewReader(payload)
	tag := r.U8()

	var ev Event
	switch tag {
	case TagAgentAdded:
		ev = AgentAdded{Agent: r.Address()}
	case TagAgentRemoved:
		ev = AgentRemoved{Agent: r.Address()}
	case TagSell:
		ev = Sell{Token: r.TokenUID(), From: r.AccountAddress(), Amount: r.TokenAmount(), Rate: r.Rate()}
	case TagSellCancelled:
		ev = SellCancelled{Token: r.TokenUID(), From: r.AccountAddress(), Amount: r.TokenAmount()}
	case TagExchange:
		ev = Exchange{
			Token:      r.TokenUID(),
			Seller:     r.AccountAddress(),
			Buyer:      r.AccountAddress(),
			SellAmount: r.TokenAmount(),
			PayAmount:  r.TokenAmount(),
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
