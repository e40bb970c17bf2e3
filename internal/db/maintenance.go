package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
)

// Maintenance serializes storage housekeeping against block commits.
type Maintenance interface {
	// Start begins background maintenance if enabled.
	Start(ctx context.Context) error
	// Stop stops background maintenance and waits for completion.
	Stop() error
	// AcquireOperationLock acquires a shared lock for a database write.
	// Returns an unlock function that must be called when the operation completes.
	AcquireOperationLock() func()
	// GetMetrics returns current maintenance metrics.
	GetMetrics() MaintenanceMetrics
	// RunMaintenance performs database maintenance operations (for manual invocation).
	RunMaintenance(ctx context.Context) error
}

// NoOpMaintenance is used when maintenance is not configured.
type NoOpMaintenance struct{}

func (m *NoOpMaintenance) Start(ctx context.Context) error {
	return nil
}

func (m *NoOpMaintenance) Stop() error {
	return nil
}

func (m *NoOpMaintenance) RunMaintenance(ctx context.Context) error {
	return nil
}

func (m *NoOpMaintenance) AcquireOperationLock() func() {
	return func() {}
}

func (m *NoOpMaintenance) GetMetrics() MaintenanceMetrics {
	return MaintenanceMetrics{}
}

// MaintenanceCoordinator runs periodic housekeeping for the configured driver.
// Readers of opLock are block commits, the writer is a maintenance run.
type MaintenanceCoordinator struct {
	db     *sql.DB
	config config.MaintenanceConfig
	store  config.DatabaseConfig
	log    *logger.Logger

	opLock sync.RWMutex

	maintenanceCtx    context.Context
	maintenanceCancel context.CancelFunc
	maintenanceWg     sync.WaitGroup

	metricsLock         sync.Mutex
	lastMaintenanceTime time.Time
	maintenanceCount    uint64
	lastMaintenanceErr  error
	lastDBSize          int64
}

// NewMaintenanceCoordinator creates a new maintenance coordinator.
func NewMaintenanceCoordinator(
	store config.DatabaseConfig,
	db *sql.DB,
	cfg *config.MaintenanceConfig,
	log *logger.Logger,
) Maintenance {
	if cfg == nil {
		return &NoOpMaintenance{}
	}

	return newMaintenanceCoordinator(store, db, *cfg, log)
}

func newMaintenanceCoordinator(
	store config.DatabaseConfig,
	db *sql.DB,
	cfg config.MaintenanceConfig,
	log *logger.Logger,
) *MaintenanceCoordinator {
	return &MaintenanceCoordinator{
		db:     db,
		config: cfg,
		store:  store,
		log:    log.WithComponent(common.ComponentMaintenance),
	}
}

// Start begins background maintenance if enabled.
func (m *MaintenanceCoordinator) Start(ctx context.Context) error {
	if !m.config.Enabled {
		m.log.Info("Background maintenance is disabled")
		return nil
	}

	m.maintenanceCtx, m.maintenanceCancel = context.WithCancel(ctx)

	if m.config.VacuumOnStartup {
		m.log.Info("Running startup maintenance")
		if err := m.RunMaintenance(m.maintenanceCtx); err != nil {
			m.log.Warnf("Startup maintenance failed: %v", err)
		}
	}

	m.maintenanceWg.Add(1)
	go m.maintenanceWorker(m.config.CheckInterval.Duration)

	m.log.Infof("Background maintenance started - driver: %s, interval: %v",
		m.store.Driver, m.config.CheckInterval.Duration)

	return nil
}

// Stop stops background maintenance and waits for completion.
func (m *MaintenanceCoordinator) Stop() error {
	if m.maintenanceCancel == nil {
		return nil // Not started
	}

	m.maintenanceCancel()
	m.maintenanceWg.Wait()
	m.log.Info("Background maintenance stopped")

	return nil
}

func (m *MaintenanceCoordinator) maintenanceWorker(checkInterval time.Duration) {
	defer m.maintenanceWg.Done()

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.maintenanceCtx.Done():
			return

		case <-ticker.C:
			m.log.Debug("Running periodic maintenance")
			if err := m.RunMaintenance(m.maintenanceCtx); err != nil {
				m.log.Warnf("Periodic maintenance failed: %v", err)
			}
		}
	}
}

// RunMaintenance performs database maintenance operations.
// It waits for in-flight block commits and blocks new ones until done.
func (m *MaintenanceCoordinator) RunMaintenance(ctx context.Context) error {
	start := time.Now().UTC()

	m.opLock.Lock()
	defer m.opLock.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	initialSize, err := m.dbSize(ctx)
	if err != nil {
		m.log.Warnf("Failed to get initial DB size: %v", err)
	}

	var maintenanceErr error
	if m.store.Driver == config.DriverPostgres {
		maintenanceErr = m.vacuumAnalyze(ctx)
	} else {
		if err := m.walCheckpoint(); err != nil {
			m.log.Errorf("WAL checkpoint failed: %v", err)
			maintenanceErr = fmt.Errorf("WAL checkpoint failed: %w", err)
		}
		if err := m.vacuum(); err != nil && maintenanceErr == nil {
			maintenanceErr = fmt.Errorf("VACUUM failed: %w", err)
		}
	}

	finalSize, err := m.dbSize(ctx)
	if err != nil {
		m.log.Warnf("Failed to get final DB size: %v", err)
	}

	duration := time.Since(start)

	m.metricsLock.Lock()
	m.lastMaintenanceTime = time.Now().UTC()
	m.maintenanceCount++
	m.lastMaintenanceErr = maintenanceErr
	m.lastDBSize = finalSize
	m.metricsLock.Unlock()

	maintenanceRunObserve(m.driver(), maintenanceErr, duration)

	if maintenanceErr != nil {
		m.log.Warnf("Maintenance completed with errors in %v: %v", duration, maintenanceErr)
		return maintenanceErr
	}

	m.log.Infof("Maintenance completed successfully in %v.", duration)

	if initialSize > finalSize {
		spaceReclaimed := uint64(initialSize - finalSize)
		maintenanceReclaimedAdd(m.driver(), spaceReclaimed)
		m.log.Infof("Maintenance cleaned: %d MB", common.BytesToMB(spaceReclaimed))
	}

	dbSizeSet(m.driver(), finalSize)

	return nil
}

func (m *MaintenanceCoordinator) dbSize(ctx context.Context) (int64, error) {
	if m.store.Driver == config.DriverPostgres {
		var size int64
		err := m.db.QueryRowContext(ctx, "SELECT pg_database_size(current_database())").Scan(&size)
		return size, err
	}

	return DBTotalSize(m.store.Path)
}

func (m *MaintenanceCoordinator) walCheckpoint() error {
	isWAL, err := m.isWALMode()
	if err != nil {
		return fmt.Errorf("failed to check journal mode: %w", err)
	}

	if !isWAL {
		m.log.Debug("Database not in WAL mode, skipping WAL checkpoint")
		return nil
	}

	checkpointSQL := fmt.Sprintf("PRAGMA wal_checkpoint(%s)", m.config.WALCheckpointMode)

	var busyCount, logFrames, checkpointedFrames int
	err = m.db.QueryRow(checkpointSQL).Scan(&busyCount, &logFrames, &checkpointedFrames)
	if err != nil {
		return fmt.Errorf("failed to execute WAL checkpoint: %w", err)
	}

	m.log.Debugf("WAL checkpoint complete - mode: %s, busy: %d, log_frames: %d, checkpointed: %d",
		m.config.WALCheckpointMode, busyCount, logFrames, checkpointedFrames)

	walCheckpointInc(strings.ToLower(m.config.WALCheckpointMode), busyCount)

	if busyCount > 0 {
		m.log.Warnf("WAL checkpoint encountered %d busy pages", busyCount)
	}

	return nil
}

func (m *MaintenanceCoordinator) vacuum() error {
	if err := Vacuum(m.db); err != nil {
		if strings.Contains(err.Error(), "database is locked") {
			return fmt.Errorf("cannot vacuum: database is locked (retry later)")
		}
		return fmt.Errorf("vacuum failed: %w", err)
	}

	vacuumInc(m.driver(), vacuumPlain)
	return nil
}

// vacuumAnalyze reclaims dead tuples and refreshes planner statistics.
func (m *MaintenanceCoordinator) vacuumAnalyze(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, "VACUUM (ANALYZE)"); err != nil {
		return fmt.Errorf("vacuum analyze failed: %w", err)
	}

	vacuumInc(m.driver(), vacuumAnalyze)
	return nil
}

func (m *MaintenanceCoordinator) isWALMode() (bool, error) {
	var mode string
	if err := m.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		return false, err
	}
	return strings.EqualFold(mode, "wal"), nil
}

// AcquireOperationLock acquires a shared lock for a database write.
func (m *MaintenanceCoordinator) AcquireOperationLock() func() {
	start := time.Now()
	m.opLock.RLock()
	commitLockWaitObserve(time.Since(start))

	return m.opLock.RUnlock
}

func (m *MaintenanceCoordinator) driver() string {
	if m.store.Driver == "" {
		return config.DriverSQLite
	}
	return m.store.Driver
}

// GetMetrics returns current maintenance metrics.
func (m *MaintenanceCoordinator) GetMetrics() MaintenanceMetrics {
	m.metricsLock.Lock()
	defer m.metricsLock.Unlock()

	return MaintenanceMetrics{
		LastMaintenanceTime:  m.lastMaintenanceTime,
		MaintenanceCount:     m.maintenanceCount,
		LastMaintenanceError: m.lastMaintenanceErr,
		DBSizeBytes:          m.lastDBSize,
	}
}

// MaintenanceMetrics provides visibility into maintenance operations.
type MaintenanceMetrics struct {
	LastMaintenanceTime  time.Time
	MaintenanceCount     uint64
	LastMaintenanceError error
	DBSizeBytes          int64
}
