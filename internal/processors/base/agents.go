package base

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// AddAgent grants agent rights on contract. Re-adding an agent replaces its roles.
func (p Processor) AddAgent(ctx context.Context, tx *sql.Tx, contract chain.ContractAddress,
	agent chain.Address, roles []uint8, height uint64) error {
	_, err := p.Exec(ctx, tx, "add agent", `
		INSERT INTO contract_agents (contract, agent, roles, block_height)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (contract, agent) DO UPDATE SET roles = excluded.roles, block_height = excluded.block_height`,
		db.ContractAddressText(contract), agent.String(), formatRoles(roles), height)
	return err
}

// RemoveAgent revokes agent rights. Removing an unknown agent is NotFound.
func (p Processor) RemoveAgent(ctx context.Context, tx *sql.Tx, contract chain.ContractAddress, agent chain.Address) error {
	return p.ExecOne(ctx, tx, "remove agent", "agent "+agent.String(),
		`DELETE FROM contract_agents WHERE contract = $1 AND agent = $2`,
		db.ContractAddressText(contract), agent.String())
}

func formatRoles(roles []uint8) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = strconv.Itoa(int(r))
	}
	return strings.Join(parts, ",")
}
