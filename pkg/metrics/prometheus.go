// Package metrics provides Prometheus metrics for the PokeScan stream daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus instruments for the daemon.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Stream transport metrics
	bytesReceived    prometheus.Counter
	linesReceived    prometheus.Counter
	parseErrors      prometheus.Counter
	reconnects       prometheus.Counter
	connectionState  prometheus.Gauge
	lineProcessingMs prometheus.Histogram

	// Normalization metrics
	recordsNormalized     prometheus.Counter
	normalizationFailures prometheus.Counter
	clearMessages         prometheus.Counter

	// Rule evaluation metrics
	verdicts   *prometheus.CounterVec
	evaluateMs prometheus.Histogram

	// Reference data and criteria metrics
	dexSpecies         prometheus.Gauge
	dexGrowthTables    prometheus.Gauge
	criteriaSaves      prometheus.Counter
	criteriaSaveErrors prometheus.Counter

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseMs      prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pokescan",
		subsystem:        "stream",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all Prometheus instruments on the configured registry.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.bytesReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bytes_received_total",
		Help:      "Total bytes received from the emulator socket",
	})

	m.linesReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lines_received_total",
		Help:      "Total complete newline-delimited messages framed",
	})

	m.parseErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "parse_errors_total",
		Help:      "Total malformed JSON lines discarded",
	})

	m.reconnects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconnects_total",
		Help:      "Total reconnect attempts issued after a transport failure",
	})

	m.connectionState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connection_state",
		Help:      "Current connection state (0=disconnected, 1=connecting, 2=connected)",
	})

	m.lineProcessingMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "line_processing_milliseconds",
		Help:      "Histogram of per-line parse+normalize latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.recordsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_normalized_total",
		Help:      "Total payloads normalized into canonical records",
	})

	m.normalizationFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "normalization_failures_total",
		Help:      "Total payloads with no resolvable species",
	})

	m.clearMessages = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "clear_messages_total",
		Help:      "Total clear sentinels received",
	})

	m.verdicts = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "verdicts_total",
			Help:      "Total verdicts produced, by kind",
		},
		[]string{"kind"},
	)

	m.evaluateMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluate_duration_milliseconds",
		Help:      "Histogram of rule evaluation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.dexSpecies = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dex_species_count",
		Help:      "Number of species loaded into the reference dex",
	})

	m.dexGrowthTables = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dex_growth_tables_count",
		Help:      "Number of growth tables loaded into the reference dex",
	})

	m.criteriaSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "criteria_saves_total",
		Help:      "Total successful criteria persistence writes",
	})

	m.criteriaSaveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "criteria_save_errors_total",
		Help:      "Total failed criteria persistence writes",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers recording through the global manager.

// RecordBytesReceived adds n to the received byte counter.
func RecordBytesReceived(n int) {
	globalManager.bytesReceived.Add(float64(n))
}

// RecordLineReceived counts one framed message.
func RecordLineReceived() {
	globalManager.linesReceived.Inc()
}

// RecordParseError counts one discarded malformed line.
func RecordParseError() {
	globalManager.parseErrors.Inc()
}

// RecordReconnect counts one reconnect attempt.
func RecordReconnect() {
	globalManager.reconnects.Inc()
}

// UpdateConnectionState publishes the connection state as a gauge value.
func UpdateConnectionState(state int) {
	globalManager.connectionState.Set(float64(state))
}

// RecordLineProcessingLatency observes per-line processing latency.
func RecordLineProcessingLatency(latencyMs float64) {
	globalManager.lineProcessingMs.Observe(latencyMs)
}

// RecordRecordNormalized counts one successful normalization.
func RecordRecordNormalized() {
	globalManager.recordsNormalized.Inc()
}

// RecordNormalizationFailure counts one unresolvable payload.
func RecordNormalizationFailure() {
	globalManager.normalizationFailures.Inc()
}

// RecordClearMessage counts one clear sentinel.
func RecordClearMessage() {
	globalManager.clearMessages.Inc()
}

// RecordVerdict counts one verdict of the given kind.
func RecordVerdict(kind string) {
	globalManager.verdicts.WithLabelValues(kind).Inc()
}

// RecordEvaluateLatency observes rule evaluation latency.
func RecordEvaluateLatency(latencyMs float64) {
	globalManager.evaluateMs.Observe(latencyMs)
}

// UpdateDexSpeciesCount publishes the loaded species count.
func UpdateDexSpeciesCount(count int) {
	globalManager.dexSpecies.Set(float64(count))
}

// UpdateDexGrowthTableCount publishes the loaded growth table count.
func UpdateDexGrowthTableCount(count int) {
	globalManager.dexGrowthTables.Set(float64(count))
}

// RecordCriteriaSave counts one successful criteria write.
func RecordCriteriaSave() {
	globalManager.criteriaSaves.Inc()
}

// RecordCriteriaSaveError counts one failed criteria write.
func RecordCriteriaSaveError() {
	globalManager.criteriaSaveErrors.Inc()
}

// UpdateSystemMemoryUsage publishes the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount publishes the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes an average GC pause duration.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseMs.Observe(pauseMs)
}

// GetRegistry returns the custom registry backing the global manager,
// suitable for serving with promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
