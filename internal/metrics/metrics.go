// Package metrics exposes prometheus instruments for family graph operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rcliao/famgraph/internal/apperr"
)

// Metrics groups the instruments of one registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Rejections *prometheus.CounterVec
}

// New registers the famgraph instruments on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "famgraph_operations_total",
				Help: "Total number of family graph operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "famgraph_operation_duration_seconds",
				Help:    "Duration of family graph operations in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"op"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "famgraph_rule_rejections_total",
				Help: "Relation writes rejected by a constraint, by error kind",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.Operations, m.Duration, m.Rejections)
	return m
}

// Nop returns instruments bound to a private registry.
func Nop() *Metrics {
	return New(nil)
}

// Observe records one operation. The outcome is "ok" or the error kind.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.Operations.WithLabelValues(op, Outcome(err)).Inc()
}

// Reject counts a constraint rejection.
func (m *Metrics) Reject(kind apperr.Kind) {
	m.Rejections.WithLabelValues(string(kind)).Inc()
}

// WriteTextfile writes every metric in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}

// Outcome maps an operation error to its label value.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k := apperr.KindOf(err); k != "" {
		return string(k)
	}
	return string(apperr.KindStorage)
}
