package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. Methods are nil-safe
// so components can run without observability wired (tests, tooling).
type Metrics struct {
	SubmissionOutcome *prometheus.CounterVec
	DecisionOutcome   *prometheus.CounterVec
	FeeAmount         prometheus.Histogram
	StoreLatency      *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SubmissionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_submissions_total",
			Help: "Submission outcomes by result",
		}, []string{"outcome"}), // outcome: created, invalid, duplicate, error

		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_decisions_total",
			Help: "Admin decision outcomes by action and result",
		}, []string{"action", "outcome"}),

		FeeAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "regdesk_fee_minor_units",
			Help:    "Amounts due at creation in currency minor units",
			Buckets: prometheus.ExponentialBuckets(100, 2, 12),
		}),

		StoreLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regdesk_store_duration_seconds",
			Help:    "Registration store call latency by operation",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
	}
}

// RecordSubmission counts one submission outcome.
func (m *Metrics) RecordSubmission(outcome string) {
	if m != nil {
		m.SubmissionOutcome.WithLabelValues(outcome).Inc()
	}
}

// RecordDecision counts one admin decision outcome.
func (m *Metrics) RecordDecision(action, outcome string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(action, outcome).Inc()
	}
}

// ObserveFee records an amount frozen onto a new registration.
func (m *Metrics) ObserveFee(amount int64) {
	if m != nil {
		m.FeeAmount.Observe(float64(amount))
	}
}

// ObserveStoreLatency records the duration of a store call.
func (m *Metrics) ObserveStoreLatency(op string, d time.Duration) {
	if m != nil {
		m.StoreLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}
