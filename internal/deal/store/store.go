// Package store persists deal records. Implementations must make UpdateStatus
// an atomic check-and-set so concurrent transitions on one deal cannot both
// win; the service's per-deal locking is the first line of defense and this is
// the second.
package store

import (
	"context"
	"time"

	"nilgate/internal/deal/models"
	"nilgate/pkg/domain"
)

// Store persists deals. Sentinel errors: ErrNotFound for unknown ids,
// ErrConflict for duplicate chain deal ids, ErrStatusConflict when the
// check-and-set loses to a concurrent transition.
type Store interface {
	Create(ctx context.Context, d *models.Deal) error
	Get(ctx context.Context, id domain.DealID) (*models.Deal, error)
	GetByChainID(ctx context.Context, chainID domain.ChainDealID) (*models.Deal, error)

	// UpdateStatus moves a deal from exactly `from` to `to`, recording the
	// dispute reason when `to` is DISPUTED. Returns the updated record.
	UpdateStatus(ctx context.Context, id domain.DealID, from, to domain.DealStatus, disputeReason string, at time.Time) (*models.Deal, error)
}
