// Package migrations holds the schema of every table the indexer writes.
package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
)

//go:embed 001_listener_checkpoint.sql
var mig001 string

//go:embed 002_tracked_contracts.sql
var mig002 string

//go:embed 003_contract_agents.sql
var mig003 string

//go:embed 004_cis2.sql
var mig004 string

//go:embed 005_security_mint_fund.sql
var mig005 string

//go:embed 006_identity_registry.sql
var mig006 string

//go:embed 007_compliance.sql
var mig007 string

//go:embed 008_rewards.sql
var mig008 string

//go:embed 009_sft_multi_yielder.sql
var mig009 string

//go:embed 010_p2p_trading.sql
var mig010 string

// All returns the migrations in the order they must be applied.
func All() []db.Migration {
	return []db.Migration{
		{ID: "001_listener_checkpoint.sql", SQL: mig001},
		{ID: "002_tracked_contracts.sql", SQL: mig002},
		{ID: "003_contract_agents.sql", SQL: mig003},
		{ID: "004_cis2.sql", SQL: mig004},
		{ID: "005_security_mint_fund.sql", SQL: mig005},
		{ID: "006_identity_registry.sql", SQL: mig006},
		{ID: "007_compliance.sql", SQL: mig007},
		{ID: "008_rewards.sql", SQL: mig008},
		{ID: "009_sft_multi_yielder.sql", SQL: mig009},
		{ID: "010_p2p_trading.sql", SQL: mig010},
	}
}

// RunMigrations brings the schema up to date for the given driver.
func RunMigrations(log *logger.Logger, sqlDB *sql.DB, driver string) error {
	return db.RunMigrationsDB(log, sqlDB, driver, All())
}
