// Package metrics exposes autosave and submit counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/inkwell/internal/draft"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements draft.Observer.
type Metrics struct {
	registry *prometheus.Registry

	AutosaveTotal *prometheus.CounterVec
	SubmitTotal   *prometheus.CounterVec
	OpenSessions  prometheus.Gauge
	HTTPRequests  *prometheus.CounterVec
}

var _ draft.Observer = (*Metrics)(nil)

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		AutosaveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_autosave_total",
			Help: "Autosave ticks by outcome.",
		}, []string{"outcome"}),
		SubmitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_submit_total",
			Help: "Manual submits by outcome.",
		}, []string{"outcome"}),
		OpenSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inkwell_edit_sessions_open",
			Help: "Edit sessions currently open.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_http_requests_total",
			Help: "HTTP requests by route and status class.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(
		m.AutosaveTotal,
		m.SubmitTotal,
		m.OpenSessions,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) AutosaveTick(outcome draft.TickOutcome) {
	m.AutosaveTotal.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) Submitted(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SubmitTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionsOpen(n int) {
	m.OpenSessions.Set(float64(n))
}

// ObserveRequest counts one finished HTTP request.
func (m *Metrics) ObserveRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
