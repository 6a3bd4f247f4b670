package attestation

import (
	"context"
	"log/slog"

	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
)

// Service validates and persists attestations on behalf of authenticated
// issuers.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Put upserts an attestation. issuerName is the authenticated authority from
// the transport layer; it must match the attestation's issuer field so one
// authority cannot overwrite another's facts.
func (s *Service) Put(ctx context.Context, a *Attestation, issuerName string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if issuerName != "" && a.Issuer != issuerName {
		return dErrors.New(dErrors.CodeUnauthorized, "attestation issuer does not match authenticated authority")
	}
	if err := s.store.Put(ctx, a); err != nil {
		return dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "attestation store unavailable", err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "attestation recorded",
			"subject_kind", a.Subject.Kind.String(),
			"subject_id", a.Subject.ID,
			"type", a.Type.String(),
			"issuer", a.Issuer,
		)
	}
	return nil
}

// Query returns all attestations for a subject and type.
func (s *Service) Query(ctx context.Context, subject domain.Subject, typ domain.AttestationType) ([]*Attestation, error) {
	records, err := s.store.Query(ctx, subject, typ)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "attestation store unavailable", err)
	}
	return records, nil
}
