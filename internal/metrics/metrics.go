// Package metrics exposes toastlog activity to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tuanbt/toastlog/internal/toast"
)

// LogSizer reports the size of the notification log. notify.Store
// implements it.
type LogSizer interface {
	Len() int
}

// Metrics provides Prometheus metrics for toastlog. It implements
// notify.Observer and intercept.Observer.
type Metrics struct {
	log      LogSizer
	registry *prometheus.Registry

	recordsTotal    *prometheus.CounterVec
	handlerFailures *prometheus.CounterVec
	mirroredTotal   *prometheus.CounterVec
	passiveSessions prometheus.Gauge
	logRecords      prometheus.Gauge
	ingestRequests  *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry.
// log may be nil.
func New(log LogSizer) *Metrics {
	m := &Metrics{
		log:      log,
		registry: prometheus.NewRegistry(),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toastlog_records_total",
				Help: "Total number of notification records appended by kind",
			},
			[]string{"kind"},
		),
		handlerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toastlog_handler_failures_total",
				Help: "Total number of notification handler panics by kind",
			},
			[]string{"kind"},
		),
		mirroredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toastlog_mirrored_emissions_total",
				Help: "Total number of intercepted emissions by strategy, kind and whether a handler took them",
			},
			[]string{"strategy", "kind", "delivered"},
		),
		passiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "toastlog_passive_sessions",
				Help: "Number of active passive interception sessions",
			},
		),
		logRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "toastlog_log_records",
				Help: "Number of records in the notification log",
			},
		),
		ingestRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toastlog_ingest_requests_total",
				Help: "Total number of ingest HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}

	m.registry.MustRegister(m)
	return m
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.recordsTotal.Describe(ch)
	m.handlerFailures.Describe(ch)
	m.mirroredTotal.Describe(ch)
	m.passiveSessions.Describe(ch)
	m.logRecords.Describe(ch)
	m.ingestRequests.Describe(ch)
}

// Collect implements prometheus.Collector and samples the log size.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	if m.log != nil {
		m.logRecords.Set(float64(m.log.Len()))
	}

	m.recordsTotal.Collect(ch)
	m.handlerFailures.Collect(ch)
	m.mirroredTotal.Collect(ch)
	m.passiveSessions.Collect(ch)
	m.logRecords.Collect(ch)
	m.ingestRequests.Collect(ch)
}

// SetLog replaces the log sampled on Collect. It exists because the store
// takes the metrics as its observer, so the store is built after New.
func (m *Metrics) SetLog(log LogSizer) {
	m.log = log
}

// Registry returns the private registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordAppended implements notify.Observer.
func (m *Metrics) RecordAppended(kind toast.Kind) {
	m.recordsTotal.WithLabelValues(string(kind)).Inc()
}

// HandlerFailed implements notify.Observer.
func (m *Metrics) HandlerFailed(kind toast.Kind) {
	m.handlerFailures.WithLabelValues(string(kind)).Inc()
}

// Mirrored implements intercept.Observer.
func (m *Metrics) Mirrored(strategy string, kind toast.Kind, delivered bool) {
	m.mirroredTotal.WithLabelValues(strategy, string(kind), strconv.FormatBool(delivered)).Inc()
}

// SessionsChanged implements intercept.Observer.
func (m *Metrics) SessionsChanged(active int) {
	m.passiveSessions.Set(float64(active))
}

// RecordIngestRequest counts one ingest HTTP response.
func (m *Metrics) RecordIngestRequest(route string, code int) {
	m.ingestRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
