package mintfund

import (
	"fmt"
	"math/big"

	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

const (
	TagAgentAdded          uint8 = 0
	TagAgentRemoved        uint8 = 1
	TagFundAdded           uint8 = 2
	TagFundRemoved         uint8 = 3
	TagFundStateUpdated    uint8 = 4
	TagInvested            uint8 = 5
	TagInvestmentCancelled uint8 = 6
	TagInvestmentClaimed   uint8 = 7
	TagInvestmentDisbursed uint8 = 8
)

// FundState is the lifecycle state of a fund.
type FundState uint8

const (
	FundOpen    FundState = 0
	FundSuccess FundState = 1
	FundFail    FundState = 2
)

func (s FundState) String() string {
	switch s {
	case FundOpen:
		return "open"
	case FundSuccess:
		return "success"
	case FundFail:
		return "fail"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
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

type FundAdded struct {
	FundID        uint64
	Token         serial.TokenUID
	CurrencyToken serial.TokenUID
	Rate          serial.Rate
}

type FundRemoved struct {
	FundID uint64
}

// FundStateUpdated carries a receiver only for FundSuccess.
type FundStateUpdated struct {
	FundID   uint64
	State    FundState
	Receiver *chain.Address
}

// Investment is the body shared by events 5 to 8.
type Investment struct {
	FundID         uint64
	Investor       chain.AccountAddress
	SecurityAmount *big.Int
	CurrencyAmount *big.Int
}

type (
	Invested            Investment
	InvestmentCancelled Investment
	InvestmentClaimed   Investment
	InvestmentDisbursed Investment
)

func (AgentAdded) Tag() uint8 { return TagAgentAdded }
func (AgentRemoved) Tag() uint8 { return TagAgentRemoved }
func (FundAdded) Tag() uint8 { return TagFundAdded }
func (FundRemoved) Tag() uint8 { return TagFundRemoved }
func (FundStateUpdated) Tag() uint8 { return TagFundStateUpdated }
func (Invested) Tag() uint8 { return TagInvested }
func (InvestmentCancelled) Tag() uint8 { return TagInvestmentCancelled }
func (InvestmentClaimed) Tag() uint8 { return TagInvestmentClaimed }
func (InvestmentDisbursed) Tag() uint8 { return TagInvestmentDisbursed }

// Decode parses one mint fund event.
func Decode(payload []byte) (Event, error) {
	r := serial.NewReader(payload)
	tag := r.U8()

	var ev Event
	switch tag {
	case TagAgentAdded:
		ev = AgentAdded{Agent: r.Address()}
	case TagAgentRemoved:
		ev = AgentRemoved{Agent: r.Address()}
	case TagFundAdded:
		ev = FundAdded{FundID: r.U64(), Token: r.TokenUID(), CurrencyToken: r.TokenUID(), Rate: r.Rate()}
	case TagFundRemoved:
		ev = FundRemoved{FundID: r.U64()}
	case TagFundStateUpdated:
		e := FundStateUpdated{FundID: r.U64(), State: FundState(r.U8())}
		switch e.State {
		case FundOpen, FundFail:
		case FundSuccess:
			receiver := r.Address()
			e.Receiver = &receiver
		default:
			if r.Err() == nil {
				return nil, fmt.Errorf("%w: fund state %d", serial.ErrInvalidTag, e.State)
			}
		}
		ev = e
	case TagInvested, TagInvestmentCancelled, TagInvestmentClaimed, TagInvestmentDisbursed:
		inv := Investment{FundID: r.U64(), Investor: r.AccountAddress(), SecurityAmount: r.TokenAmount(), CurrencyAmount: r.TokenAmount()}
		switch tag {
		case TagInvested:
			ev = Invested(inv)
		case TagInvestmentCancelled:
			ev = InvestmentCancelled(inv)
		case TagInvestmentClaimed:
			ev = InvestmentClaimed(inv)
		default:
			ev = InvestmentDisbursed(inv)
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
