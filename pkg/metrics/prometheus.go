// Package metrics provides Prometheus metrics for the scan stats service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Manager owns a registry and every collector of the service.
// All record methods are safe on a nil *Manager.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	scansRecorded    prometheus.Counter
	activityFailures prometheus.Counter
	mirrorOutcomes   *prometheus.CounterVec
	historicRows     prometheus.Counter
	broadcastResults *prometheus.CounterVec
	rosterReloads    *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scanstats",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scansRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scans_recorded_total",
		Help:      "Scans durably appended to the event store",
	})

	m.activityFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "activity_touch_failures_total",
		Help:      "Activity marker updates that failed after a recorded scan",
	})

	m.mirrorOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scan_mirror_total",
		Help:      "Spreadsheet mirror publications by outcome",
	}, []string{"outcome"})

	m.historicRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "historic_rows_imported_total",
		Help:      "Historic daily count rows upserted",
	})

	m.broadcastResults = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_deliveries_total",
		Help:      "Broadcast deliveries by outcome",
	}, []string{"outcome"})

	m.rosterReloads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_reloads_total",
		Help:      "Roster snapshot reloads by outcome",
	}, []string{"outcome"})

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stats_query_duration_seconds",
		Help:      "Aggregation engine call latency",
		Buckets:   m.histogramBuckets,
	}, []string{"query"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method", "status_code"})
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) RecordScan() {
	if m == nil {
		return
	}
	m.scansRecorded.Inc()
}

func (m *Manager) RecordActivityFailure() {
	if m == nil {
		return
	}
	m.activityFailures.Inc()
}

func (m *Manager) RecordMirror(outcome string) {
	if m == nil {
		return
	}
	m.mirrorOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Manager) RecordHistoricRows(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.historicRows.Add(float64(n))
}

func (m *Manager) RecordBroadcast(outcome string) {
	if m == nil {
		return
	}
	m.broadcastResults.WithLabelValues(outcome).Inc()
}

func (m *Manager) RecordRosterReload(outcome string) {
	if m == nil {
		return
	}
	m.rosterReloads.WithLabelValues(outcome).Inc()
}

// ObserveQuery is meant to be deferred: defer m.ObserveQuery("personal_stats", time.Now()).
func (m *Manager) ObserveQuery(query string, start time.Time) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(d.Seconds())
}
