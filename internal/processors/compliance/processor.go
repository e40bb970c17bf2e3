// Package compliance indexes compliance contracts: the modules they consult
// and their agents.
package compliance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/base"
	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

const (
	TagModuleAdded   uint8 = 0
	TagModuleRemoved uint8 = 1
	TagAgentAdded    uint8 = 2
	TagAgentRemoved  uint8 = 3
)

// Event is a decoded compliance event. Module events set Module, agent events Agent.
type Event struct {
	Tag    uint8
	Module chain.ContractAddress
	Agent  chain.Address
}

// Decode parses one compliance event.
func Decode(payload []byte) (Event, error) {
	r := serial.NewReader(payload)
	ev := Event{Tag: r.U8()}

	switch ev.Tag {
	case TagModuleAdded, TagModuleRemoved:
		ev.Module = r.ContractAddress()
	case TagAgentAdded, TagAgentRemoved:
		ev.Agent = r.Address()
	default:
		if r.Err() != nil {
			return Event{}, r.Err()
		}
		return Event{}, fmt.Errorf("unknown event tag %d", ev.Tag)
	}

	if err := r.Done(); err != nil {
		return Event{}, fmt.Errorf("event %d: %w", ev.Tag, err)
	}
	return ev, nil
}

var _ processor.Processor = (*Processor)(nil)

// Processor handles contracts of type compliance.
type Processor struct {
	base.Processor
}

func New(identity processor.Identity, log *logger.Logger) *Processor {
	return &Processor{Processor: base.New(processor.TypeCompliance, identity, log)}
}

func (p *Processor) Process(ctx context.Context, tx *sql.Tx, call processor.Call) error {
	contract := db.ContractAddressText(call.Contract)

	for i, payload := range call.Events {
		ev, err := Decode(payload)
		if err != nil {
			return p.Invalid("decode", fmt.Errorf("event %d: %w", i, err))
		}

		switch ev.Tag {
		case TagModuleAdded:
			_, err = p.Exec(ctx, tx, "add module", `
				INSERT INTO compliance_modules (contract, module, block_height) VALUES ($1, $2, $3)
				ON CONFLICT (contract, module) DO UPDATE SET block_height = excluded.block_height`,
				contract, db.ContractAddressText(ev.Module), call.BlockHeight)
		case TagModuleRemoved:
			err = p.ExecOne(ctx, tx, "remove module", "module "+ev.Module.String(),
				`DELETE FROM compliance_modules WHERE contract = $1 AND module = $2`,
				contract, db.ContractAddressText(ev.Module))
		case TagAgentAdded:
			err = p.AddAgent(ctx, tx, call.Contract, ev.Agent, nil, call.BlockHeight)
		case TagAgentRemoved:
			err = p.RemoveAgent(ctx, tx, call.Contract, ev.Agent)
		default:
			err = p.UnknownEvent(ev.Tag)
		}

		if err != nil {
			return err
		}
	}
	return nil
}
