package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the caption canvas server.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	errorsTotal           prometheus.Counter
	activeSessions        prometheus.Gauge
	framesDrawnTotal      prometheus.Counter
	autosavesTotal        prometheus.Counter
	autosaveFailuresTotal prometheus.Counter
}

// New creates and registers the server's Prometheus metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "canvas_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "canvas_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "canvas_active_sessions",
		Help: "Number of live preview sessions",
	})
	framesDrawnTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "canvas_frames_drawn_total",
		Help: "Total number of frames drawn by session compositors",
	})
	autosavesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "canvas_autosaves_total",
		Help: "Total number of successful caption autosaves",
	})
	autosaveFailuresTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "canvas_autosave_failures_total",
		Help: "Total number of caption autosaves rejected by the store",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		activeSessions,
		framesDrawnTotal,
		autosavesTotal,
		autosaveFailuresTotal,
	)

	return &Metrics{
		registry:              registry,
		requestsTotal:         requestsTotal,
		errorsTotal:           errorsTotal,
		activeSessions:        activeSessions,
		framesDrawnTotal:      framesDrawnTotal,
		autosavesTotal:        autosavesTotal,
		autosaveFailuresTotal: autosaveFailuresTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// SetActiveSessions sets the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// IncFramesDrawn increments the compositor draw counter.
func (m *Metrics) IncFramesDrawn() {
	m.framesDrawnTotal.Inc()
}

// IncAutosaves increments the successful autosave counter.
func (m *Metrics) IncAutosaves() {
	m.autosavesTotal.Inc()
}

// IncAutosaveFailures increments the failed autosave counter.
func (m *Metrics) IncAutosaveFailures() {
	m.autosaveFailuresTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values
// (e.g. active sessions).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
