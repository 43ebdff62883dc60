// Package metrics exposes Prometheus collectors for dataset loads, checks,
// cleaning runs and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/dataquality/internal/core"
)

const namespace = "dataquality"

// Metrics holds every collector on a private registry.
// It implements core.Observer.
type Metrics struct {
	registry *prometheus.Registry

	datasetsLoaded prometheus.Counter
	rowsLoaded     prometheus.Counter
	loadFailures   *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	loadBytes      prometheus.Histogram
	stageRuns      *prometheus.CounterVec
	stageChanges   *prometheus.CounterVec
	checkDuration  *prometheus.HistogramVec
	evictions      prometheus.Counter
	stored         prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ core.Observer = (*Metrics)(nil)

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		datasetsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_loaded_total",
			Help:      "CSV files successfully loaded.",
		}),
		rowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Data rows read from loaded files.",
		}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_failures_total",
			Help:      "Failed loads by error code.",
		}, []string{"code"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time to parse an uploaded file.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
		loadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_size_bytes",
			Help:      "Size of loaded files.",
			Buckets:   prometheus.ExponentialBuckets(1024, 8, 8),
		}),
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clean_stage_runs_total",
			Help:      "Cleaning stages applied, by stage.",
		}, []string{"stage"}),
		stageChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clean_stage_changes_total",
			Help:      "Rows, cells or names changed by cleaning stages.",
		}, []string{"stage"}),
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time to run a quality check or full report.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"check"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_evicted_total",
			Help:      "Datasets removed by expiry or capacity.",
		}),
		stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "datasets_stored",
			Help:      "Datasets currently held in memory.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.datasetsLoaded,
		m.rowsLoaded,
		m.loadFailures,
		m.loadDuration,
		m.loadBytes,
		m.stageRuns,
		m.stageChanges,
		m.checkDuration,
		m.evictions,
		m.stored,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WatchUploads exports the upload limiter state as gauges.
func (m *Metrics) WatchUploads(status func() core.UploadLimiterStatus) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uploads_active",
			Help:      "Files currently being parsed.",
		}, func() float64 { return float64(status().Active) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uploads_available",
			Help:      "Free upload slots.",
		}, func() float64 { return float64(status().Available) }),
	)
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) DatasetLoaded(rows, _ int, bytes int64, elapsed time.Duration) {
	m.datasetsLoaded.Inc()
	m.rowsLoaded.Add(float64(rows))
	m.loadBytes.Observe(float64(bytes))
	m.loadDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) LoadFailed(code string) {
	m.loadFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) DatasetCleaned(stages []core.StageResult) {
	for _, s := range stages {
		m.stageRuns.WithLabelValues(s.Stage).Inc()
		m.stageChanges.WithLabelValues(s.Stage).Add(float64(s.Changed))
	}
}

func (m *Metrics) CheckRun(check string, elapsed time.Duration) {
	m.checkDuration.WithLabelValues(check).Observe(elapsed.Seconds())
}

func (m *Metrics) DatasetsEvicted(n int) {
	m.evictions.Add(float64(n))
}

func (m *Metrics) DatasetsStored(n int) {
	m.stored.Set(float64(n))
}
