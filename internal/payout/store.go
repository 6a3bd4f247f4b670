package payout

import (
	"context"

	"nilgate/pkg/domain"
)

// Store persists payout records. Create returns sentinel.ErrConflict when a
// payout already exists for the deal; that conflict is the at-most-once
// guarantee the engine leans on.
type Store interface {
	Create(ctx context.Context, p *Payout) error
	FindByDeal(ctx context.Context, dealID domain.DealID) (*Payout, error)
}
