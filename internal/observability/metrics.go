package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and store.
type Metrics struct {
	ItemsIngested *prometheus.CounterVec // labels: source_type
	ItemsSkipped  *prometheus.CounterVec // labels: source_type, reason={geo,parse}
	SourceErrors  *prometheus.CounterVec // labels: source

	CycleDuration *prometheus.HistogramVec // labels: group={events,social}
	CyclesRunning prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	// Store metrics.
	StoreWrites      *prometheus.CounterVec // labels: namespace
	StoreWriteErrors *prometheus.CounterVec // labels: namespace
	QueryDuration    prometheus.Histogram

	ArchivePublished prometheus.Counter
	ArchiveErrors    prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := build()

	prometheus.MustRegister(
		m.ItemsIngested,
		m.ItemsSkipped,
		m.SourceErrors,
		m.CycleDuration,
		m.CyclesRunning,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.StoreWrites,
		m.StoreWriteErrors,
		m.QueryDuration,
		m.ArchivePublished,
		m.ArchiveErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return build()
}

func build() *Metrics {
	return &Metrics{
		ItemsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osint_monitor",
			Name:      "items_ingested_total",
			Help:      "Normalized items produced by source adapters.",
		}, []string{"source_type"}),
		ItemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osint_monitor",
			Name:      "items_skipped_total",
			Help:      "Raw entries dropped during normalization by reason.",
		}, []string{"source_type", "reason"}),
		SourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osint_monitor",
			Name:      "source_errors_total",
			Help:      "Whole-adapter fetch failures.",
		}, []string{"source"}),
		CycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osint_monitor",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete ingestion cycle per source group.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"group"}),
		CyclesRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "osint_monitor",
			Name:      "cycles_running",
			Help:      "Number of ingestion cycles currently in flight.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osint_monitor",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osint_monitor",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "osint_monitor",
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		StoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osint_monitor",
			Name:      "store_writes_total",
			Help:      "Items written to the store by namespace.",
		}, []string{"namespace"}),
		StoreWriteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osint_monitor",
			Name:      "store_write_errors_total",
			Help:      "Per-item store write failures by namespace.",
		}, []string{"namespace"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "osint_monitor",
			Name:      "query_duration_seconds",
			Help:      "Duration of store queries, including filtering and sorting.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ArchivePublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osint_monitor",
			Name:      "archive_published_total",
			Help:      "Items published to the Kafka archive sink.",
		}),
		ArchiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osint_monitor",
			Name:      "archive_errors_total",
			Help:      "Kafka archive publish failures.",
		}),
	}
}
