package migrations

import (
	"path/filepath"
	"testing"

	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_UpAndDown(t *testing.T) {
	sqlDB, err := db.NewSQLiteDB(filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	log := logger.NewNopLogger()
	require.NoError(t, RunMigrations(log, sqlDB, config.DriverSQLite))

	for _, table := range []string{
		"listener_checkpoint",
		"tracked_contracts",
		"contract_agents",
		"cis2_tokens",
		"cis2_holders",
		"cis2_balance_updates",
		"security_mint_funds",
		"security_mint_fund_investors",
		"security_mint_fund_investment_records",
		"identities",
		"compliance_modules",
		"sft_reward_tokens",
		"nft_reward_tokens",
		"sft_yields",
		"p2p_sell_positions",
		"p2p_trades",
	} {
		var name string
		err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	require.NoError(t, db.RunMigrationsDBExtended(log, sqlDB, config.DriverSQLite, All(), migrate.Down, db.NoLimitMigrations))

	var count int
	require.NoError(t, sqlDB.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'tracked_contracts'`).Scan(&count))
	require.Zero(t, count)
}
