package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the deal ledger.
type Metrics struct {
	DealsCreated prometheus.Counter

	// Transitions by target status and outcome ("ok", "invalid", "conflict")
	Transitions *prometheus.CounterVec
}

// New creates a new Metrics instance with all ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		DealsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nilgate_deals_created_total",
			Help: "Total deals persisted by the ledger",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_deal_transitions_total",
			Help: "Status transition attempts by target status and outcome",
		}, []string{"target", "outcome"}),
	}
}

// IncrementCreated records a persisted deal.
func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.DealsCreated.Inc()
	}
}

// IncrementTransition records a transition attempt.
func (m *Metrics) IncrementTransition(target, outcome string) {
	if m != nil {
		m.Transitions.WithLabelValues(target, outcome).Inc()
	}
}
