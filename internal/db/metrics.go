package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	vacuumPlain   = "vacuum"
	vacuumAnalyze = "vacuum_analyze"
)

var (
	maintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_db_maintenance_runs_total",
			Help: "Maintenance runs by driver and outcome",
		},
		[]string{"driver", "status"},
	)

	// Block commits are held back for the whole run.
	maintenanceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rwaindexer_db_maintenance_duration_seconds",
			Help:    "Duration of maintenance runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), //nolint:mnd
		},
		[]string{"driver"},
	)

	maintenanceLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rwaindexer_db_maintenance_last_run_timestamp",
			Help: "Unix timestamp of the last maintenance run",
		},
		[]string{"driver"},
	)

	maintenanceReclaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_db_maintenance_reclaimed_bytes_total",
			Help: "Bytes given back by maintenance runs",
		},
		[]string{"driver"},
	)

	walCheckpoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_db_wal_checkpoint_total",
			Help: "SQLite WAL checkpoints by mode",
		},
		[]string{"mode"},
	)

	walBusyPages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rwaindexer_db_wal_checkpoint_busy_pages_total",
			Help: "Pages a WAL checkpoint could not copy because a reader held them",
		},
	)

	vacuumRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_db_vacuum_total",
			Help: "VACUUM statements by driver and kind",
		},
		[]string{"driver", "kind"},
	)

	dbSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rwaindexer_db_size_bytes",
			Help: "Database size after the last maintenance run",
		},
		[]string{"driver"},
	)

	commitLockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rwaindexer_db_commit_lock_wait_seconds",
			Help:    "Time a block commit waited for a running maintenance",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), //nolint:mnd
		},
	)
)

func maintenanceRunObserve(driver string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}

	maintenanceRuns.WithLabelValues(driver, status).Inc()
	maintenanceDuration.WithLabelValues(driver).Observe(duration.Seconds())
	maintenanceLastRun.WithLabelValues(driver).Set(float64(time.Now().UTC().Unix()))
}

func maintenanceReclaimedAdd(driver string, bytes uint64) {
	maintenanceReclaimed.WithLabelValues(driver).Add(float64(bytes))
}

func walCheckpointInc(mode string, busyPages int) {
	walCheckpoints.WithLabelValues(mode).Inc()
	if busyPages > 0 {
		walBusyPages.Add(float64(busyPages))
	}
}

func vacuumInc(driver, kind string) {
	vacuumRuns.WithLabelValues(driver, kind).Inc()
}

func dbSizeSet(driver string, size int64) {
	dbSize.WithLabelValues(driver).Set(float64(size))
}

func commitLockWaitObserve(d time.Duration) {
	commitLockWait.Observe(d.Seconds())
}
