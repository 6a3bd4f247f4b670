package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance module.
type Metrics struct {
	// Attestation lookup latencies by required type
	LookupLatency *prometheus.HistogramVec

	// Verdicts by jurisdiction and outcome
	Verdicts *prometheus.CounterVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a new Metrics instance with all compliance metrics registered.
func New() *Metrics {
	return &Metrics{
		LookupLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nilgate_compliance_lookup_duration_seconds",
			Help:    "Duration of attestation lookups by required type",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"type"}),

		Verdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_compliance_verdicts_total",
			Help: "Total compliance verdicts by jurisdiction and outcome",
		}, []string{"jurisdiction", "compliant"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nilgate_compliance_evaluate_duration_seconds",
			Help:    "Duration of full compliance evaluation including lookups",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveLookupLatency records the duration of one attestation lookup.
func (m *Metrics) ObserveLookupLatency(typ string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(typ).Observe(d.Seconds())
	}
}

// IncrementVerdict records a compliance verdict.
func (m *Metrics) IncrementVerdict(jurisdiction string, compliant bool) {
	if m != nil {
		m.Verdicts.WithLabelValues(jurisdiction, strconv.FormatBool(compliant)).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
