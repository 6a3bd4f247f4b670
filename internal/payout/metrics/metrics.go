package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the payout engine.
type Metrics struct {
	Executed prometheus.Counter

	// Failures by cause ("not_ready", "already_paid", "transfer", "timeout")
	Failures *prometheus.CounterVec

	ExecuteLatency prometheus.Histogram
}

// New creates a new Metrics instance with all payout metrics registered.
func New() *Metrics {
	return &Metrics{
		Executed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nilgate_payouts_executed_total",
			Help: "Total payouts successfully executed",
		}),
		Failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_payout_failures_total",
			Help: "Payout execution failures by cause",
		}, []string{"cause"}),
		ExecuteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nilgate_payout_execute_duration_seconds",
			Help:    "Duration of payout execution including the chain call",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementExecuted records a successful payout.
func (m *Metrics) IncrementExecuted() {
	if m != nil {
		m.Executed.Inc()
	}
}

// IncrementFailure records a failed execution by cause.
func (m *Metrics) IncrementFailure(cause string) {
	if m != nil {
		m.Failures.WithLabelValues(cause).Inc()
	}
}

// ObserveExecuteLatency records the execution duration.
func (m *Metrics) ObserveExecuteLatency(d time.Duration) {
	if m != nil {
		m.ExecuteLatency.Observe(d.Seconds())
	}
}
