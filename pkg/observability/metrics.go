// Package observability exposes Prometheus collectors for expression
// activity. The Metrics type plugs into the expression factory as its
// observer; the serve command registers it and serves /metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements el.Observer over Prometheus collectors.
type Metrics struct {
	compiled  *prometheus.CounterVec
	evaluated *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		compiled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_expressions_compiled_total",
				Help: "Total number of expression compilations",
			},
			[]string{"kind", "outcome"},
		),
		evaluated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_expressions_evaluated_total",
				Help: "Total number of expression evaluations",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "arbor_expression_duration_seconds",
				Help: "Duration of expression evaluations",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.compiled, m.evaluated, m.duration)
	return m
}

// ExpressionCompiled records a compilation attempt.
func (m *Metrics) ExpressionCompiled(kind string, err error) {
	m.compiled.WithLabelValues(kind, outcome(err)).Inc()
}

// ExpressionEvaluated records an evaluation attempt and its duration.
func (m *Metrics) ExpressionEvaluated(kind string, elapsed time.Duration, err error) {
	m.evaluated.WithLabelValues(kind, outcome(err)).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
