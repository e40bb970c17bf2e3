// Package nftmultirewarded indexes the reward NFT contract: standard CIS2
// ownership plus the reward token it currently pays out.
package nftmultirewarded

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/base"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/cis2security"
	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

const TagRewardTokenUpdated uint8 = 200

type RewardTokenUpdated struct {
	Reward serial.TokenUID
}

func (RewardTokenUpdated) Tag() uint8 { return TagRewardTokenUpdated }

// Decode parses the reward update and the CIS2 standard events. Security
// extension tags are not defined for this contract.
func Decode(payload []byte) (cis2security.Event, error) {
	if len(payload) == 0 || payload[0] != TagRewardTokenUpdated {
		return cis2security.DecodeStandard(payload)
	}

	r := serial.NewReader(payload[1:])
	ev := RewardTokenUpdated{Reward: r.TokenUID()}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("event %d: %w", TagRewardTokenUpdated, err)
	}
	return ev, nil
}

var _ processor.Processor = (*Processor)(nil)

// Processor handles contracts of type nft_multi_rewarded.
type Processor struct {
	ledger *cis2security.Ledger
}

func New(identity processor.Identity, log *logger.Logger) *Processor {
	return &Processor{ledger: cis2security.NewLedger(base.New(processor.TypeNftMultiRewarded, identity, log))}
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

		if e, ok := ev.(RewardTokenUpdated); ok {
			err = p.updateReward(ctx, tx, call, e)
		} else {
			err = p.ledger.Apply(ctx, tx, call, i, ev)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) updateReward(ctx context.Context, tx *sql.Tx, call processor.Call, e RewardTokenUpdated) error {
	_, err := p.ledger.Exec(ctx, tx, "update reward token", `
		INSERT INTO nft_reward_tokens (contract, reward_token_contract, reward_token_id, update_block_height)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (contract) DO UPDATE SET
			reward_token_contract = excluded.reward_token_contract,
			reward_token_id       = excluded.reward_token_id,
			update_block_height   = excluded.update_block_height`,
		db.ContractAddressText(call.Contract), db.ContractAddressText(e.Reward.Contract), e.Reward.ID.String(),
		call.BlockHeight)
	return err
}
