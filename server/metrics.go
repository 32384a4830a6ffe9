package server

import (
	"time"

	"github.com/etnz/realized"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors of a server.
type Metrics struct {
	registry     *prometheus.Registry
	computations *prometheus.CounterVec
	issues       *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewMetrics registers the server collectors in a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		computations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rgc_computations_total",
				Help: "Total number of realized gain computations",
			},
			[]string{"mode", "status"},
		),
		issues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rgc_issues_total",
				Help: "Total number of issues reported by computations",
			},
			[]string{"kind"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rgc_computation_duration_seconds",
				Help:    "Computation duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"mode"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// observe records a computation that started at start.
func (m *Metrics) observe(mode string, start time.Time, issues []realized.Issue, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.computations.WithLabelValues(mode, status).Inc()
	m.duration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	for _, i := range issues {
		m.issues.WithLabelValues(i.Kind.String()).Inc()
	}
}
