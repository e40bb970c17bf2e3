// Package processortest holds the fixtures shared by processor tests.
package processortest

import (
	"bytes"
	"context"
	"database/sql"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/migrations"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
	"github.com/stretchr/testify/require"
)

// NewDB opens a migrated SQLite database in a temp dir.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	dbConfig := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "processor.db")}
	dbConfig.ApplyDefaults()

	sqlDB, err := db.NewSQLiteDBFromConfig(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.RunMigrations(logger.NewNopLogger(), sqlDB, config.DriverSQLite))

	return sqlDB
}

// Account returns a valid account address made of a repeated byte.
func Account(t *testing.T, fill byte) chain.AccountAddress {
	t.Helper()

	addr, err := chain.AccountAddressFromBytes(bytes.Repeat([]byte{fill}, chain.AccountAddressLength))
	require.NoError(t, err)
	return addr
}

// Call builds a call at the given height. The tx hash is derived from the
// height so calls at different heights never collide.
func Call(contract chain.ContractAddress, height uint64, events ...[]byte) processor.Call {
	evs := make([]chain.ContractEvent, len(events))
	for i, e := range events {
		evs[i] = e
	}

	return processor.Call{
		Contract:    contract,
		BlockHeight: height,
		BlockHash:   common.BigToHash(new(big.Int).SetUint64(height)),
		BlockTime:   time.Unix(1_700_000_000+int64(height), 0).UTC(),
		TxHash:      common.BigToHash(new(big.Int).SetUint64(height + 1_000_000)),
		Events:      evs,
	}
}

// Run processes call in its own transaction, committing on success and
// rolling back on failure.
func Run(t *testing.T, sqlDB *sql.DB, p processor.Processor, call processor.Call) error {
	t.Helper()

	tx, err := sqlDB.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	if err := p.Process(context.Background(), tx, call); err != nil {
		require.NoError(t, tx.Rollback())
		return err
	}

	require.NoError(t, tx.Commit())
	return nil
}

// QueryString reads a single text value.
func QueryString(t *testing.T, sqlDB *sql.DB, query string, args ...any) string {
	t.Helper()

	var s string
	require.NoError(t, sqlDB.QueryRow(query, args...).Scan(&s))
	return s
}

// Count returns the number of rows matching query, which must select COUNT(*).
func Count(t *testing.T, sqlDB *sql.DB, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, sqlDB.QueryRow(query, args...).Scan(&n))
	return n
}
