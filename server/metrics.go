package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the proving counters exposed on /metrics
type Metrics struct {
	registry   *prometheus.Registry
	proofs     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	mismatches *prometheus.CounterVec
}

// NewMetrics registers the proving metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		proofs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zkpi_proofs_total",
			Help: "Proving calls by circuit and outcome",
		}, []string{"circuit", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zkpi_proof_duration_seconds",
			Help:    "Wall-clock time of proving calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"circuit"}),
		mismatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zkpi_signal_mismatches_total",
			Help: "Proofs whose public signals differ from the derived ones",
		}, []string{"circuit"}),
	}
	m.registry.MustRegister(m.proofs, m.duration, m.mismatches)
	return m
}

// ObserveProof records one finished proving call. It has the shape of
// prover.Observer.
func (m *Metrics) ObserveProof(circuit string, took time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.proofs.WithLabelValues(circuit, status).Inc()
	m.duration.WithLabelValues(circuit).Observe(took.Seconds())
}

// SignalMismatch counts one oracle mismatch
func (m *Metrics) SignalMismatch(circuit string) {
	m.mismatches.WithLabelValues(circuit).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
