// Package metrics exposes Prometheus instrumentation for the gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors on a private registry so
// tests can instantiate independent sets.
type Metrics struct {
	registry *prometheus.Registry

	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	bridgeCalls *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powermcp",
			Name:      "invocations_total",
			Help:      "Gateway invocations by tool and envelope status.",
		}, []string{"tool", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "powermcp",
			Name:      "invocation_duration_seconds",
			Help:      "Full acquire-operate-release duration per invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"tool"}),
		bridgeCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powermcp",
			Name:      "bridge_calls_total",
			Help:      "Cross-process bridge calls by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(m.invocations, m.duration, m.bridgeCalls)
	return m
}

// ObserveInvocation implements gateway.Observer.
func (m *Metrics) ObserveInvocation(tool, status string, d time.Duration) {
	m.invocations.WithLabelValues(tool, status).Inc()
	m.duration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveBridgeCall counts one bridge call outcome ("ok", "process_failure",
// "protocol_error").
func (m *Metrics) ObserveBridgeCall(outcome string) {
	m.bridgeCalls.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
