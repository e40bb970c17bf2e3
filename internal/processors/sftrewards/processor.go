// Package sftrewards indexes semi-fungible security tokens that pay rewards:
// the full CIS2 security ledger plus reward configuration and claims.
package sftrewards

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strconv"

	"github.com/goran-ethernal/RWAIndexor/internal/amount"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/base"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/cis2security"
	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

const (
	TagRewardAdded   uint8 = 200
	TagRewardClaimed uint8 = 199
)

// RewardAdded attaches a reward token to a security token.
type RewardAdded struct {
	TokenID chain.TokenID
	Reward  serial.TokenUID
	Rate    serial.Rate
}

// RewardClaimed records a holder claiming rewards.
type RewardClaimed struct {
	TokenID       chain.TokenID
	RewardTokenID chain.TokenID
	Amount        *big.Int
	Owner         chain.Address
}

func (RewardAdded) Tag() uint8 { return TagRewardAdded }
func (RewardClaimed) Tag() uint8 { return TagRewardClaimed }

// Decode parses reward events and falls back to the CIS2 security events.
func Decode(payload []byte) (cis2security.Event, error) {
	r := serial.NewReader(payload)
	tag := r.U8()

	var ev cis2security.Event
	switch tag {
	case TagRewardAdded:
		ev = RewardAdded{TokenID: r.TokenID(), Reward: r.TokenUID(), Rate: r.Rate()}
	case TagRewardClaimed:
		ev = RewardClaimed{TokenID: r.TokenID(), RewardTokenID: r.TokenID(), Amount: r.TokenAmount(), Owner: r.Address()}
	default:
		if r.Err() != nil {
			return nil, r.Err()
		}
		return cis2security.DecodeBody(tag, r)
	}

	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("event %d: %w", tag, err)
	}
	return ev, nil
}

var _ processor.Processor = (*Processor)(nil)

// Processor handles contracts of type security_sft_rewards.
type Processor struct {
	ledger *cis2security.Ledger
}

func New(identity processor.Identity, log *logger.Logger) *Processor {
	return &Processor{ledger: cis2security.NewLedger(base.New(processor.TypeSecuritySftRewards, identity, log))}
}

func (p *Processor) Type() processor.Type {
	return p.ledger.Type()
}

func (p *Processor) Identity() processor.Identity {
	return p.ledger.Identity()
}

func (p *Processor) Process(ctx context.Context, tx *sql.Tx, call processor.Call) error {
	for i, payload := range call.Events {
		ev, err := Decode(payload)
		if err != nil {
			return p.ledger.Invalid("decode", fmt.Errorf("event %d: %w", i, err))
		}

		switch e := ev.(type) {
		case RewardAdded:
			err = p.addReward(ctx, tx, call, e)
		case RewardClaimed:
			err = p.claim(ctx, tx, call, i, e)
		default:
			err = p.ledger.Apply(ctx, tx, call, i, ev)
		}

		if err != nil {
			return err
		}
	}
	return nil
}

// addReward replaces the reward of the token, if any.
func (p *Processor) addReward(ctx context.Context, tx *sql.Tx, call processor.Call, e RewardAdded) error {
	_, err := p.ledger.Exec(ctx, tx, "add reward", `
		INSERT INTO sft_reward_tokens (contract, token_id, reward_token_contract, reward_token_id,
		                               rate_numerator, rate_denominator, block_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (contract, token_id) DO UPDATE SET
			reward_token_contract = excluded.reward_token_contract,
			reward_token_id       = excluded.reward_token_id,
			rate_numerator        = excluded.rate_numerator,
			rate_denominator      = excluded.rate_denominator,
			block_height          = excluded.block_height`,
		db.ContractAddressText(call.Contract), e.TokenID.String(),
		db.ContractAddressText(e.Reward.Contract), e.Reward.ID.String(),
		strconv.FormatUint(e.Rate.Numerator, 10), strconv.FormatUint(e.Rate.Denominator, 10),
		call.BlockHeight)
	return err
}

func (p *Processor) claim(ctx context.Context, tx *sql.Tx, call processor.Call, i int, e RewardClaimed) error {
	amt, err := amount.FromBig(e.Amount)
	if err != nil {
		return p.ledger.Invalid("claim", err)
	}

	return p.ledger.InsertEvent(ctx, tx, "sft_reward_claims", call, i,
		base.Column{Name: "token_id", Value: e.TokenID.String()},
		base.Column{Name: "reward_token_id", Value: e.RewardTokenID.String()},
		base.Column{Name: "amount", Value: amt.String()},
		base.Column{Name: "owner", Value: e.Owner.String()},
	)
}

