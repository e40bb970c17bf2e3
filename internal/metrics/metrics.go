package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database metrics
	dbQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"store", "operation"},
	)

	dbQueryTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rwaindexer_db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	dbErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"store", "error_type"},
	)

	// Indexing metrics
	CheckpointHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwaindexer_checkpoint_height",
			Help: "Height of the last committed block",
		},
	)

	BlocksProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rwaindexer_blocks_processed_total",
			Help: "Total number of blocks committed with at least one contract call",
		},
	)

	BlocksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rwaindexer_blocks_skipped_total",
			Help: "Total number of blocks without contract calls",
		},
	)

	CallsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_calls_dispatched_total",
			Help: "Total number of contract calls handed to processors",
		},
		[]string{"processor", "kind"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_events_processed_total",
			Help: "Total number of contract events applied by processors",
		},
		[]string{"processor"},
	)

	BlockProcessingTime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rwaindexer_block_processing_duration_seconds",
			Help:    "Time taken to fetch, dispatch and commit one block",
			Buckets: prometheus.DefBuckets,
		},
	)

	IndexingRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwaindexer_indexing_rate_blocks_per_second",
			Help: "Blocks per second over the last chunk",
		},
	)

	Resubscriptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_resubscriptions_total",
			Help: "Total number of finalized block resubscriptions by reason",
		},
		[]string{"reason"},
	)

	ListenerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rwaindexer_listener_state",
			Help: "Current listener state (1 for the active state)",
		},
		[]string{"state"},
	)

	ListenerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwaindexer_listener_errors_total",
			Help: "Total number of listener errors by kind",
		},
		[]string{"kind", "retryable"},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwaindexer_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rwaindexer_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwaindexer_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rwaindexer_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

func DBQueryInc(store string, operation string) {
	dbQueries.WithLabelValues(store, operation).Inc()
}

func DBQueryDuration(store string, operation string, duration time.Duration) {
	dbQueryTime.WithLabelValues(store, operation).Observe(duration.Seconds())
}

func DBErrorsInc(store string, errorType string) {
	dbErrors.WithLabelValues(store, errorType).Inc()
}

func BlockProcessingTimeLog(duration time.Duration) {
	BlockProcessingTime.Observe(duration.Seconds())
}

func CheckpointHeightSet(height uint64) {
	CheckpointHeight.Set(float64(height))
}

func BlocksProcessedInc() {
	BlocksProcessed.Inc()
}

func BlocksSkippedAdd(count int) {
	BlocksSkipped.Add(float64(count))
}

func CallsDispatchedInc(processor, kind string) {
	CallsDispatched.WithLabelValues(processor, kind).Inc()
}

func EventsProcessedAdd(processor string, count int) {
	EventsProcessed.WithLabelValues(processor).Add(float64(count))
}

func IndexingRateLog(rate float64) {
	IndexingRate.Set(rate)
}

func ResubscriptionsInc(reason string) {
	Resubscriptions.WithLabelValues(reason).Inc()
}

// ListenerStateSet marks state as the active one among all known states.
func ListenerStateSet(state string, all []string) {
	for _, s := range all {
		v := float64(0)
		if s == state {
			v = 1
		}
		ListenerState.WithLabelValues(s).Set(v)
	}
}

func ListenerErrorsInc(kind string, retryable bool) {
	r := "false"
	if retryable {
		r = "true"
	}
	ListenerErrors.WithLabelValues(kind, r).Inc()
}

func ComponentHealthSet(component string, healthy bool) {
	boolAsFloat := float64(1)
	if !healthy {
		boolAsFloat = 0
	}

	ComponentHealth.WithLabelValues(component).Set(boolAsFloat)
}

// UpdateSystemMetrics updates runtime system metrics.
// This should be called periodically (e.g., every 15 seconds).
func UpdateSystemMetrics() {
	Uptime.Set(time.Since(startTime).Seconds())

	Goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("total_alloc").Set(float64(m.TotalAlloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}
