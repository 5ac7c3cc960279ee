// Package metrics provides Prometheus metrics for the golazo service.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ranking
	rankingComputations prometheus.Counter
	rankingLatency      prometheus.Histogram
	rankedPlayers       prometheus.Gauge
	changesetRows       *prometheus.CounterVec
	refreshFailures     *prometheus.CounterVec

	// Store
	storeOperations *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec

	// Queue and workers
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueued  prometheus.Counter
	queueRejected  *prometheus.CounterVec
	queueCoalesced prometheus.Counter
	workerCount    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
	duplicateRequests   prometheus.Counter

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager atomic.Pointer[Manager] //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager.Store(NewManager(WithPrometheusRegistry(customRegistry)))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "golazo",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.rankingComputations = auto.NewCounter(m.counterOpts("computations_total", "Total number of ranking computations"))
	m.rankingLatency = auto.NewHistogram(m.histogramOpts("computation_latency_milliseconds", "Ranking computation latency in milliseconds"))
	m.rankedPlayers = auto.NewGauge(m.gaugeOpts("ranked_players", "Number of players in the latest ranking"))
	m.changesetRows = auto.NewCounterVec(m.counterOpts("changeset_rows_total", "Rows reported by published changesets"), []string{"feed", "kind"})
	m.refreshFailures = auto.NewCounterVec(m.counterOpts("refresh_failures_total", "Fetch failures replaced by an empty list during refresh"), []string{"source"})

	m.storeOperations = auto.NewCounterVec(m.counterOpts("store_operations_total", "Store operations by name and result"), []string{"operation", "result"})
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds", "Store operation latency in milliseconds"), []string{"operation"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Pending refresh events"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the refresh queue"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Refresh events accepted by the queue"))
	m.queueRejected = auto.NewCounterVec(m.counterOpts("queue_rejected_total", "Refresh events rejected by the queue"), []string{"reason"})
	m.queueCoalesced = auto.NewCounter(m.counterOpts("queue_coalesced_total", "Refresh events folded into a single recomputation"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of refresh workers"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(m.counterOpts("http_errors_total", "HTTP error responses by endpoint and type"), []string{"endpoint", "method", "error_type"})
	m.duplicateRequests = auto.NewCounter(m.counterOpts("duplicate_requests_total", "Writes rejected because their idempotency key was seen"))

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

func current() *Manager {
	m := globalManager.Load()
	if m == nil || !m.enabled {
		return nil
	}
	return m
}

// SetManager replaces the manager used by the package-level recorders.
func SetManager(m *Manager) {
	globalManager.Store(m)
}

// GetRegistry returns the registry backing the default manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordRankingComputation records one computation and its latency.
func RecordRankingComputation(latencyMs float64, players int) {
	if m := current(); m != nil {
		m.rankingComputations.Inc()
		m.rankingLatency.Observe(latencyMs)
		m.rankedPlayers.Set(float64(players))
	}
}

// RecordChangeset records the rows of a published changeset.
func RecordChangeset(feed string, deletions, modifications, insertions int) {
	if m := current(); m != nil {
		m.changesetRows.WithLabelValues(feed, "deletion").Add(float64(deletions))
		m.changesetRows.WithLabelValues(feed, "modification").Add(float64(modifications))
		m.changesetRows.WithLabelValues(feed, "insertion").Add(float64(insertions))
	}
}

// RecordRefreshFailure records a fetch failure during refresh.
func RecordRefreshFailure(source string) {
	if m := current(); m != nil {
		m.refreshFailures.WithLabelValues(source).Inc()
	}
}

// RecordStoreOperation records a store call.
func RecordStoreOperation(operation string, err error, latencyMs float64) {
	if m := current(); m != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.storeOperations.WithLabelValues(operation, result).Inc()
		m.storeLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// UpdateQueueSize sets the number of pending refresh events.
func UpdateQueueSize(size int) {
	if m := current(); m != nil {
		m.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the refresh queue capacity.
func UpdateQueueCapacity(capacity int) {
	if m := current(); m != nil {
		m.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue records an accepted refresh event.
func RecordQueueEnqueue() {
	if m := current(); m != nil {
		m.queueEnqueued.Inc()
	}
}

// RecordQueueRejected records a rejected refresh event.
func RecordQueueRejected(reason string) {
	if m := current(); m != nil {
		m.queueRejected.WithLabelValues(reason).Inc()
	}
}

// RecordQueueCoalesced records events drained into one recomputation.
func RecordQueueCoalesced(n int) {
	if m := current(); m != nil && n > 0 {
		m.queueCoalesced.Add(float64(n))
	}
}

// UpdateWorkerCount sets the number of refresh workers.
func UpdateWorkerCount(count int) {
	if m := current(); m != nil {
		m.workerCount.Set(float64(count))
	}
}

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if m := current(); m != nil {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordHTTPError records an error response.
func RecordHTTPError(endpoint, method, errorType string) {
	if m := current(); m != nil {
		m.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordDuplicateRequest records a write rejected by idempotency checks.
func RecordDuplicateRequest() {
	if m := current(); m != nil {
		m.duplicateRequests.Inc()
	}
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if m := current(); m != nil {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if m := current(); m != nil {
		m.systemGoroutineCount.Set(float64(count))
	}
}
