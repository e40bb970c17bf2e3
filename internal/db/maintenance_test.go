package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const pgSizeQuery = "SELECT pg_database_size(current_database())"

func sqliteStoreConfig(t *testing.T, journalMode string) config.DatabaseConfig {
	t.Helper()

	return config.DatabaseConfig{
		Driver:             config.DriverSQLite,
		Path:               t.TempDir() + "/rwa.db",
		JournalMode:        journalMode,
		Synchronous:        "NORMAL",
		BusyTimeout:        5000,
		CacheSize:          -2000,
		MaxOpenConnections: 4,
		MaxIdleConnections: 2,
	}
}

func newSQLiteStore(t *testing.T) (*sql.DB, config.DatabaseConfig) {
	t.Helper()

	store := sqliteStoreConfig(t, "WAL")

	sqlDB, err := NewSQLiteDBFromConfig(store)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = sqlDB.Exec(`CREATE TABLE blocks (height BIGINT PRIMARY KEY, hash TEXT NOT NULL)`)
	require.NoError(t, err)

	return sqlDB, store
}

// commitBlocks writes one row per height the way the listener commits blocks,
// holding the shared maintenance lock for each.
func commitBlocks(t *testing.T, m Maintenance, sqlDB *sql.DB, from, to uint64) {
	t.Helper()

	for h := from; h <= to; h++ {
		unlock := m.AcquireOperationLock()
		_, err := sqlDB.Exec(`INSERT INTO blocks (height, hash) VALUES ($1, $2)`,
			h, fmt.Sprintf("%#064x", h))
		unlock()
		require.NoError(t, err)
	}
}

func TestMaintenanceCoordinator_SQLite(t *testing.T) {
	sqlDB, store := newSQLiteStore(t)
	m := newMaintenanceCoordinator(store, sqlDB,
		config.MaintenanceConfig{WALCheckpointMode: "TRUNCATE"}, logger.NewNopLogger())

	commitBlocks(t, m, sqlDB, 17_000_000, 17_000_499)

	checkpoints := testutil.ToFloat64(walCheckpoints.WithLabelValues("truncate"))
	vacuums := testutil.ToFloat64(vacuumRuns.WithLabelValues(config.DriverSQLite, vacuumPlain))

	require.NoError(t, m.RunMaintenance(context.Background()))

	require.Equal(t, checkpoints+1, testutil.ToFloat64(walCheckpoints.WithLabelValues("truncate")))
	require.Equal(t, vacuums+1, testutil.ToFloat64(vacuumRuns.WithLabelValues(config.DriverSQLite, vacuumPlain)))

	stats := m.GetMetrics()
	require.Equal(t, uint64(1), stats.MaintenanceCount)
	require.NoError(t, stats.LastMaintenanceError)
	require.Positive(t, stats.DBSizeBytes)
	require.Equal(t, float64(stats.DBSizeBytes), testutil.ToFloat64(dbSize.WithLabelValues(config.DriverSQLite)))

	// blocks survive maintenance
	var n int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM blocks`).Scan(&n))
	require.Equal(t, 500, n)
}

func TestMaintenanceCoordinator_SQLiteWithoutWAL(t *testing.T) {
	store := sqliteStoreConfig(t, "DELETE")

	sqlDB, err := NewSQLiteDBFromConfig(store)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	checkpoints := testutil.ToFloat64(walCheckpoints.WithLabelValues("passive"))

	m := newMaintenanceCoordinator(store, sqlDB,
		config.MaintenanceConfig{WALCheckpointMode: "PASSIVE"}, logger.NewNopLogger())
	require.NoError(t, m.RunMaintenance(context.Background()))

	require.Equal(t, checkpoints, testutil.ToFloat64(walCheckpoints.WithLabelValues("passive")))
}

// pgRecorder is a database/sql connector that answers like PostgreSQL for the
// statements maintenance issues and records them.
type pgRecorder struct {
	mu         sync.Mutex
	statements []string
	size       int64
	vacuumErr  error
}

func (r *pgRecorder) Connect(context.Context) (driver.Conn, error) { return &pgConn{r: r}, nil }
func (r *pgRecorder) Driver() driver.Driver                       { return pgDriver{r: r} }

func (r *pgRecorder) record(query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, query)
}

func (r *pgRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statements...)
}

type pgDriver struct{ r *pgRecorder }

func (d pgDriver) Open(string) (driver.Conn, error) { return &pgConn{r: d.r}, nil }

type pgConn struct{ r *pgRecorder }

func (c *pgConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepared statements not supported") }
func (c *pgConn) Close() error                        { return nil }
func (c *pgConn) Begin() (driver.Tx, error)           { return nil, errors.New("transactions not supported") }

func (c *pgConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.r.record(query)
	if c.r.vacuumErr != nil {
		return nil, c.r.vacuumErr
	}
	return driver.RowsAffected(0), nil
}

func (c *pgConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.r.record(query)
	return &sizeRows{size: c.r.size}, nil
}

type sizeRows struct {
	size int64
	done bool
}

func (r *sizeRows) Columns() []string { return []string{"pg_database_size"} }
func (r *sizeRows) Close() error      { return nil }

func (r *sizeRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	dest[0] = r.size
	r.done = true
	return nil
}

func TestMaintenanceCoordinator_Postgres(t *testing.T) {
	rec := &pgRecorder{size: 8 << 20}
	sqlDB := sql.OpenDB(rec)
	t.Cleanup(func() { sqlDB.Close() })

	store := config.DatabaseConfig{Driver: config.DriverPostgres, DSN: "postgres://rwa@localhost/rwa"}
	m := newMaintenanceCoordinator(store, sqlDB,
		config.MaintenanceConfig{WALCheckpointMode: "TRUNCATE"}, logger.NewNopLogger())

	analyzes := testutil.ToFloat64(vacuumRuns.WithLabelValues(config.DriverPostgres, vacuumAnalyze))
	successes := testutil.ToFloat64(maintenanceRuns.WithLabelValues(config.DriverPostgres, "success"))

	require.NoError(t, m.RunMaintenance(context.Background()))

	// no SQLite pragmas reach the server
	require.Equal(t, []string{pgSizeQuery, "VACUUM (ANALYZE)", pgSizeQuery}, rec.recorded())

	require.Equal(t, analyzes+1, testutil.ToFloat64(vacuumRuns.WithLabelValues(config.DriverPostgres, vacuumAnalyze)))
	require.Equal(t, successes+1, testutil.ToFloat64(maintenanceRuns.WithLabelValues(config.DriverPostgres, "success")))
	require.Equal(t, int64(8<<20), m.GetMetrics().DBSizeBytes)
	require.Equal(t, float64(8<<20), testutil.ToFloat64(dbSize.WithLabelValues(config.DriverPostgres)))
}

func TestMaintenanceCoordinator_PostgresVacuumFails(t *testing.T) {
	rec := &pgRecorder{size: 1024, vacuumErr: errors.New("canceling statement due to lock timeout")}
	sqlDB := sql.OpenDB(rec)
	t.Cleanup(func() { sqlDB.Close() })

	m := newMaintenanceCoordinator(config.DatabaseConfig{Driver: config.DriverPostgres}, sqlDB,
		config.MaintenanceConfig{}, logger.NewNopLogger())

	failures := testutil.ToFloat64(maintenanceRuns.WithLabelValues(config.DriverPostgres, "error"))

	err := m.RunMaintenance(context.Background())
	require.ErrorContains(t, err, "vacuum analyze failed")
	require.ErrorContains(t, m.GetMetrics().LastMaintenanceError, "lock timeout")
	require.Equal(t, failures+1, testutil.ToFloat64(maintenanceRuns.WithLabelValues(config.DriverPostgres, "error")))

	// a failed run still releases the lock for block commits
	unlock := m.AcquireOperationLock()
	unlock()
}

func TestMaintenanceCoordinator_HoldsBackCommits(t *testing.T) {
	sqlDB, store := newSQLiteStore(t)
	m := newMaintenanceCoordinator(store, sqlDB,
		config.MaintenanceConfig{WALCheckpointMode: "PASSIVE"}, logger.NewNopLogger())

	// block 1 is being committed when maintenance starts
	unlockFirst := m.AcquireOperationLock()

	maintenanceDone := make(chan error, 1)
	go func() { maintenanceDone <- m.RunMaintenance(context.Background()) }()

	// let maintenance queue up for the exclusive lock
	time.Sleep(20 * time.Millisecond)

	// block 2 arrives while maintenance waits and must run after it
	seenBySecond := make(chan uint64, 1)
	go func() {
		unlock := m.AcquireOperationLock()
		seenBySecond <- m.GetMetrics().MaintenanceCount
		unlock()
	}()

	time.Sleep(20 * time.Millisecond)
	require.Zero(t, m.GetMetrics().MaintenanceCount, "maintenance waits for the in-flight commit")
	select {
	case <-seenBySecond:
		t.Fatal("block 2 overtook a waiting maintenance")
	default:
	}

	unlockFirst()

	require.NoError(t, <-maintenanceDone)
	require.Equal(t, uint64(1), <-seenBySecond)
}

func TestMaintenanceCoordinator_StartAndStop(t *testing.T) {
	sqlDB, store := newSQLiteStore(t)
	m := newMaintenanceCoordinator(store, sqlDB, config.MaintenanceConfig{
		Enabled:           true,
		CheckInterval:     common.NewDuration(20 * time.Millisecond),
		VacuumOnStartup:   true,
		WALCheckpointMode: "PASSIVE",
	}, logger.NewNopLogger())

	require.NoError(t, m.Start(context.Background()))
	require.Equal(t, uint64(1), m.GetMetrics().MaintenanceCount, "startup run is synchronous")

	commitBlocks(t, m, sqlDB, 1, 50)

	require.Eventually(t, func() bool { return m.GetMetrics().MaintenanceCount >= 3 },
		5*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	count := m.GetMetrics().MaintenanceCount
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, count, m.GetMetrics().MaintenanceCount)
}

func TestMaintenanceCoordinator_Disabled(t *testing.T) {
	sqlDB, store := newSQLiteStore(t)
	m := newMaintenanceCoordinator(store, sqlDB, config.MaintenanceConfig{
		Enabled:         false,
		VacuumOnStartup: true,
	}, logger.NewNopLogger())

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop())
	require.Zero(t, m.GetMetrics().MaintenanceCount)
}

func TestMaintenanceCoordinator_CanceledContext(t *testing.T) {
	sqlDB, store := newSQLiteStore(t)
	m := newMaintenanceCoordinator(store, sqlDB, config.MaintenanceConfig{}, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, m.RunMaintenance(ctx), context.Canceled)
	require.Zero(t, m.GetMetrics().MaintenanceCount)
}

func TestNewMaintenanceCoordinator_NilConfig(t *testing.T) {
	m := NewMaintenanceCoordinator(config.DatabaseConfig{}, nil, nil, logger.NewNopLogger())
	require.IsType(t, &NoOpMaintenance{}, m)

	require.NoError(t, m.Start(context.Background()))
	m.AcquireOperationLock()()
	require.NoError(t, m.RunMaintenance(context.Background()))
	require.NoError(t, m.Stop())
	require.Zero(t, m.GetMetrics().MaintenanceCount)
}
