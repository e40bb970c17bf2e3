// Package cis2security indexes CIS2 security token contracts: balances,
// frozen amounts, operators, agents and the pause state of every token.
package cis2security

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/base"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

var _ processor.Processor = (*Processor)(nil)

// Processor handles contracts of type security_cis2.
type Processor struct {
	*Ledger
}

// New creates a CIS2 security processor for the given identity.
func New(identity processor.Identity, log *logger.Logger) *Processor {
	return &Processor{Ledger: NewLedger(base.New(processor.TypeSecurityCIS2, identity, log))}
}

// Process decodes and applies every event of the call in order.
func (p *Processor) Process(ctx context.Context, tx *sql.Tx, call processor.Call) error {
	for i, payload := range call.Events {
		ev, err := Decode(payload)
		if err != nil {
			return p.Invalid("decode", fmt.Errorf("event %d: %w", i, err))
		}

		if err := p.Apply(ctx, tx, call, i, ev); err != nil {
			return err
		}
	}

	p.Log.Debugw("processed call", "contract", call.Contract, "events", len(call.Events), "height", call.BlockHeight)
	return nil
}
