// Package identityregistry indexes identity registry contracts: registered
// identities, trusted issuers and agents.
package identityregistry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/base"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

var _ processor.Processor = (*Processor)(nil)

// Processor handles contracts of type identity_registry.
type Processor struct {
	base.Processor
}

func New(identity processor.Identity, log *logger.Logger) *Processor {
	return &Processor{Processor: base.New(processor.TypeIdentityRegistry, identity, log)}
}

// Process applies the events of the call in order.
func (p *Processor) Process(ctx context.Context, tx *sql.Tx, call processor.Call) error {
	contract := db.ContractAddressText(call.Contract)

	for i, payload := range call.Events {
		ev, err := Decode(payload)
		if err != nil {
			return p.Invalid("decode", fmt.Errorf("event %d: %w", i, err))
		}

		switch ev.Tag {
		case TagIdentityRegistered:
			// Registering an address again refreshes it.
			_, err = p.Exec(ctx, tx, "register identity", `
				INSERT INTO identities (contract, address, create_block_height, update_block_height)
				VALUES ($1, $2, $3, $3)
				ON CONFLICT (contract, address) DO UPDATE SET update_block_height = excluded.update_block_height`,
				contract, ev.Address.String(), call.BlockHeight)
		case TagIdentityUpdated:
			err = p.ExecOne(ctx, tx, "update identity", "identity "+ev.Address.String(),
				`UPDATE identities SET update_block_height = $1 WHERE contract = $2 AND address = $3`,
				call.BlockHeight, contract, ev.Address.String())
		case TagIdentityRemoved:
			err = p.ExecOne(ctx, tx, "remove identity", "identity "+ev.Address.String(),
				`DELETE FROM identities WHERE contract = $1 AND address = $2`,
				contract, ev.Address.String())
		case TagIssuerAdded:
			_, err = p.Exec(ctx, tx, "add issuer", `
				INSERT INTO identity_issuers (contract, issuer, block_height) VALUES ($1, $2, $3)
				ON CONFLICT (contract, issuer) DO UPDATE SET block_height = excluded.block_height`,
				contract, db.ContractAddressText(ev.Issuer), call.BlockHeight)
		case TagIssuerRemoved:
			err = p.ExecOne(ctx, tx, "remove issuer", "issuer "+ev.Issuer.String(),
				`DELETE FROM identity_issuers WHERE contract = $1 AND issuer = $2`,
				contract, db.ContractAddressText(ev.Issuer))
		case TagAgentAdded:
			err = p.AddAgent(ctx, tx, call.Contract, ev.Address, nil, call.BlockHeight)
		case TagAgentRemoved:
			err = p.RemoveAgent(ctx, tx, call.Contract, ev.Address)
		default:
			err = p.UnknownEvent(ev.Tag)
		}

		if err != nil {
			return err
		}
	}
	return nil
}
