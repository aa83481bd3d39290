package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.SummaryVec
	Requests        *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	OutboxEvents    *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestDuration: factory.NewSummaryVec(prometheus.SummaryOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.99: 0.001,
			},
		}, []string{"method", "path", "status_code"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orderdesk_status_transitions_total",
			Help: "Committed status transitions by entity and target status",
		}, []string{"entity", "status"}),
		OutboxEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orderdesk_outbox_events_total",
			Help: "Outbox events handled by the relay",
		}, []string{"result"}),
	}
}

// ObserveTransition counts a committed transition. Nil receivers are ignored.
func (m *Metrics) ObserveTransition(entity, status string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(entity, status).Inc()
}

// ObserveOutbox counts a relay outcome such as "sent" or "failed".
func (m *Metrics) ObserveOutbox(result string) {
	if m == nil {
		return
	}
	m.OutboxEvents.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
