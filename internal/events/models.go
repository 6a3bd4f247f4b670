// Package events carries deal lifecycle events to downstream consumers:
// telemetry, the settlement audit trail, and the payment-message generator's
// ingestion topic. Events are emitted after the fact and are fail-open; a sink
// outage never blocks a transition.
package events

import (
	"time"

	"nilgate/pkg/domain"
)

// Type names a lifecycle event.
type Type string

const (
	TypeDealCreated   Type = "deal_created"
	TypeDealApproved  Type = "deal_approved"
	TypeDealVerified  Type = "deal_verified"
	TypeDealPaid      Type = "deal_paid"
	TypeDealDisputed  Type = "deal_disputed"
	TypeDealRejected  Type = "deal_rejected" // approve attempted, evaluator said no
)

// Event is one lifecycle fact. Keep it transport-agnostic so sinks can fan
// out; the Kafka publisher serializes it as JSON.
type Event struct {
	Type        Type               `json:"type"`
	Timestamp   time.Time          `json:"timestamp"`
	DealID      domain.DealID      `json:"deal_id"`
	ChainDealID domain.ChainDealID `json:"chain_deal_id"`
	Status      domain.DealStatus  `json:"status"`
	Reason      string             `json:"reason,omitempty"`
	RequestID   string             `json:"request_id,omitempty"`
}
