package intercept

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts classified exchanges and their outcomes.
type Metrics struct {
	registry  *prometheus.Registry
	exchanges *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	served    prometheus.Counter
}

// NewMetrics registers the interception collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capestudio_intercept_exchanges_total",
			Help: "Intercepted exchanges by classification",
		}, []string{"kind"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capestudio_intercept_outcomes_total",
			Help: "Interception decisions by kind and outcome",
		}, []string{"kind", "outcome"}),
		served: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capestudio_intercept_archive_bytes_total",
			Help: "Archive bytes served to the client",
		}),
	}
	m.registry.MustRegister(m.exchanges, m.outcomes, m.served)
	return m
}

// Registry exposes the collectors for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) classified(kind Kind) {
	if m == nil || kind == PassThrough {
		return
	}
	m.exchanges.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) outcome(kind Kind, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(kind.String(), outcome).Inc()
}

func (m *Metrics) servedBytes(n int) {
	if m == nil {
		return
	}
	m.served.Add(float64(n))
}
