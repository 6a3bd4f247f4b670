package athlete

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/sentinel"
)

// Service registers athletes and resolves vaults for deal creation.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Register creates an athlete record. Wallet and vault must be globally unique;
// a duplicate registers as a conflict, never a silent overwrite.
func (s *Service) Register(ctx context.Context, wallet, vault domain.Address, country domain.Jurisdiction) (*Athlete, error) {
	a, err := New(wallet, vault, country, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "wallet or vault address already registered")
		}
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "athlete store unavailable", err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "athlete registered",
			"athlete_id", a.ID.String(),
			"vault", a.Vault.String(),
			"country", a.Country.String(),
		)
	}
	return a, nil
}

// Get returns the athlete by id.
func (s *Service) Get(ctx context.Context, id domain.AthleteID) (*Athlete, error) {
	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "athlete not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "athlete store unavailable", err)
	}
	return a, nil
}

// GetByVault resolves the athlete owning a vault address. Deal creation uses
// this to reject deals against unregistered vaults.
func (s *Service) GetByVault(ctx context.Context, vault domain.Address) (*Athlete, error) {
	a, err := s.store.FindByVault(ctx, vault)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no athlete registered for vault")
		}
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "athlete store unavailable", err)
	}
	return a, nil
}
