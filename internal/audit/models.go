// Package audit keeps the append-only settlement audit trail. Every lifecycle
// event lands here asynchronously; the trail answers "what happened to this
// deal and when" without replaying the event topic.
package audit

import (
	"context"
	"time"

	"nilgate/pkg/domain"
)

// Entry is one recorded lifecycle fact for a deal.
type Entry struct {
	Timestamp   time.Time          `json:"timestamp"`
	DealID      domain.DealID      `json:"deal_id"`
	ChainDealID domain.ChainDealID `json:"chain_deal_id"`
	Action      string             `json:"action"`
	Status      domain.DealStatus  `json:"status"`
	Reason      string             `json:"reason,omitempty"`
	RequestID   string             `json:"request_id,omitempty"`
}

// Store persists the trail. Append-only; entries are never updated.
type Store interface {
	Append(ctx context.Context, e Entry) error
	ListByDeal(ctx context.Context, dealID domain.DealID) ([]Entry, error)
}
