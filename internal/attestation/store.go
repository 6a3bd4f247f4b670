package attestation

import (
	"context"

	"nilgate/pkg/domain"
)

// Store persists attestations keyed by (subject, type, issuer). Put is an
// idempotent upsert; Query returns every issuer's attestation for a subject
// and type, in no particular order. Attestation writes need no deal-level
// locking: compliance evaluation re-reads at call time.
type Store interface {
	Put(ctx context.Context, a *Attestation) error
	Query(ctx context.Context, subject domain.Subject, typ domain.AttestationType) ([]*Attestation, error)
}
