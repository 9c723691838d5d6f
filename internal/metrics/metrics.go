package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for chartvault
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Sync Metrics
	SyncPassesTotal    prometheus.CounterVec
	SyncPassDuration   prometheus.Histogram
	DocumentsPersisted prometheus.Counter

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec
	CacheSizeBytes   prometheus.Gauge

	// Retention Metrics
	VersionsEvictedTotal prometheus.Counter
	OrphansSweptTotal    prometheus.Counter
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartvault_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chartvault_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chartvault_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Sync Metrics
		SyncPassesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartvault_sync_passes_total",
				Help: "Total sync passes by outcome (success, up_to_date, error, rejected)",
			},
			[]string{"outcome"},
		),
		SyncPassDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chartvault_sync_pass_duration_seconds",
				Help:    "Sync pass execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		DocumentsPersisted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "chartvault_documents_persisted_total",
				Help: "Total document metadata rows written by sync passes",
			},
		),

		// Cache Metrics
		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartvault_cache_hits_total",
				Help: "Total content cache hits by partition",
			},
			[]string{"partition"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartvault_cache_misses_total",
				Help: "Total content cache misses by partition",
			},
			[]string{"partition"},
		),
		CacheSizeBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "chartvault_cache_size_bytes",
				Help: "Current content cache size in bytes",
			},
		),

		// Retention Metrics
		VersionsEvictedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "chartvault_versions_evicted_total",
				Help: "Total cycles evicted by the retention policy",
			},
		),
		OrphansSweptTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "chartvault_orphans_swept_total",
				Help: "Total stale cache files removed by the age sweep",
			},
		),
	}
}
