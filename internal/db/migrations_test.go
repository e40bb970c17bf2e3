package db

import (
	"path/filepath"
	"testing"

	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/require"
)

const testMigration = `
-- +migrate Down
DROP TABLE IF EXISTS widgets;

-- +migrate Up
CREATE TABLE widgets (
	id   /*pk_serial*/,
	name TEXT NOT NULL
);
`

func TestDialectReplacer(t *testing.T) {
	r, dialect, err := dialectReplacer(config.DriverSQLite)
	require.NoError(t, err)
	require.Equal(t, "sqlite3", dialect)
	require.Equal(t, "id INTEGER PRIMARY KEY AUTOINCREMENT", r.Replace("id /*pk_serial*/"))

	r, dialect, err = dialectReplacer(config.DriverPostgres)
	require.NoError(t, err)
	require.Equal(t, "postgres", dialect)
	require.Equal(t, "id BIGSERIAL PRIMARY KEY", r.Replace("id /*pk_serial*/"))

	_, _, err = dialectReplacer("oracle")
	require.Error(t, err)
}

func TestRunMigrationsDB(t *testing.T) {
	sqlDB, err := NewSQLiteDB(filepath.Join(t.TempDir(), "migrations.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	log := logger.NewNopLogger()
	migs := []Migration{{ID: "widgets_0001", SQL: testMigration}}

	require.NoError(t, RunMigrationsDB(log, sqlDB, config.DriverSQLite, migs))
	// second run is a no-op
	require.NoError(t, RunMigrationsDB(log, sqlDB, config.DriverSQLite, migs))

	_, err = sqlDB.Exec(`INSERT INTO widgets (name) VALUES ($1)`, "a")
	require.NoError(t, err)

	require.NoError(t, RunMigrationsDBExtended(log, sqlDB, config.DriverSQLite, migs, migrate.Down, NoLimitMigrations))
	_, err = sqlDB.Exec(`SELECT 1 FROM widgets`)
	require.Error(t, err)
}

func TestRunMigrationsDB_MissingSeparator(t *testing.T) {
	sqlDB, err := NewSQLiteDB(filepath.Join(t.TempDir(), "bad.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	err = RunMigrationsDB(logger.NewNopLogger(), sqlDB, config.DriverSQLite,
		[]Migration{{ID: "bad", SQL: "CREATE TABLE x (id INTEGER);"}})
	require.ErrorContains(t, err, "missing")
}
