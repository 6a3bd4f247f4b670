package athlete

import (
	"context"

	"nilgate/pkg/domain"
)

// Store persists athlete records. Implementations return sentinel.ErrNotFound
// for unknown ids and sentinel.ErrConflict when wallet or vault uniqueness is
// violated.
type Store interface {
	Save(ctx context.Context, a *Athlete) error
	FindByID(ctx context.Context, id domain.AthleteID) (*Athlete, error)
	FindByVault(ctx context.Context, vault domain.Address) (*Athlete, error)
}
