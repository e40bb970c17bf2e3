// Package sftmultiyielder indexes yielder contracts that pay several reward
// tokens for holding a version of a semi-fungible security token.
package sftmultiyielder

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/goran-ethernal/RWAIndexor/internal/amount"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/base"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

var _ processor.Processor = (*Processor)(nil)

// Processor handles contracts of type security_sft_multi_yielder.
type Processor struct {
	base.Processor
}

func New(identity processor.Identity, log *logger.Logger) *Processor {
	return &Processor{Processor: base.New(processor.TypeSecuritySftMultiYielder, identity, log)}
}

func (p *Processor) Process(ctx context.Context, tx *sql.Tx, call processor.Call) error {
	for i, payload := range call.Events {
		ev, err := Decode(payload)
		if err != nil {
			return p.Invalid("decode", fmt.Errorf("event %d: %w", i, err))
		}

		switch e := ev.(type) {
		case AgentAdded:
			err = p.AddAgent(ctx, tx, call.Contract, e.Agent, nil, call.BlockHeight)
		case AgentRemoved:
			err = p.RemoveAgent(ctx, tx, call.Contract, e.Agent)
		case YieldAdded:
			err = p.addYields(ctx, tx, call, e)
		case YieldRemoved:
			err = p.ExecOne(ctx, tx, "remove yield", fmt.Sprintf("yield of %s version %d", e.TokenContract, e.TokenVer),
				`DELETE FROM sft_yields WHERE contract = $1 AND token_contract = $2 AND token_ver = $3`,
				db.ContractAddressText(call.Contract), db.ContractAddressText(e.TokenContract), version(e.TokenVer))
		case YieldDistributed:
			err = p.distribute(ctx, tx, call, i, e)
		default:
			err = p.UnknownEvent(ev.Tag())
		}

		if err != nil {
			return err
		}
	}
	return nil
}

// addYields replaces the yields of a token version.
func (p *Processor) addYields(ctx context.Context, tx *sql.Tx, call processor.Call, e YieldAdded) error {
	contract := db.ContractAddressText(call.Contract)
	tokenContract := db.ContractAddressText(e.TokenContract)

	if _, err := p.Exec(ctx, tx, "replace yields",
		`DELETE FROM sft_yields WHERE contract = $1 AND token_contract = $2 AND token_ver = $3`,
		contract, tokenContract, version(e.TokenVer)); err != nil {
		return err
	}

	for idx, y := range e.Yields {
		if _, err := p.Exec(ctx, tx, "add yield", `
			INSERT INTO sft_yields (contract, token_contract, token_ver, yield_index, yield_contract, yield_token_id,
			                        rate_numerator, rate_denominator, calculation, block_height)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			contract, tokenContract, version(e.TokenVer), idx,
			db.ContractAddressText(y.Token.Contract), y.Token.ID.String(),
			strconv.FormatUint(y.Rate.Numerator, 10), strconv.FormatUint(y.Rate.Denominator, 10),
			y.Calculation, call.BlockHeight); err != nil {
			return err
		}
	}

	p.Log.Debugw("yields set", "contract", call.Contract, "token", e.TokenContract, "version", e.TokenVer, "yields", len(e.Yields))
	return nil
}

func (p *Processor) distribute(ctx context.Context, tx *sql.Tx, call processor.Call, i int, e YieldDistributed) error {
	if e.ToVer < e.FromVer {
		return p.Invalid("distribute", fmt.Errorf("version goes back from %d to %d", e.FromVer, e.ToVer))
	}

	amt, err := amount.FromBig(e.Amount)
	if err != nil {
		return p.Invalid("distribute", err)
	}

	return p.InsertEvent(ctx, tx, "sft_yield_distributions", call, i,
		base.Column{Name: "token_contract", Value: db.ContractAddressText(e.TokenContract)},
		base.Column{Name: "from_ver", Value: version(e.FromVer)},
		base.Column{Name: "to_ver", Value: version(e.ToVer)},
		base.Column{Name: "amount", Value: amt.String()},
		base.Column{Name: "owner", Value: e.Owner.String()},
	)
}

func version(v uint64) string {
	return strconv.FormatUint(v, 10)
}
