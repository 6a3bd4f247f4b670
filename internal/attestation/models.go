// Package attestation owns compliance facts: signed, typed statements from a
// named authority about an athlete or a deal. The engine never inspects the
// signed payload; it stores the payload hash and trusts the issuer identity
// established at submission time.
package attestation

import (
	"time"

	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
)

// Attestation is one compliance fact.
//
// Invariant: at most one attestation exists per (subject, type, issuer).
// Re-issuance replaces the previous record, never duplicates it.
type Attestation struct {
	Subject     domain.Subject         `json:"subject"`
	Type        domain.AttestationType `json:"type"`
	Issuer      string                 `json:"issuer"`
	PayloadHash string                 `json:"payload_hash"`
	IssuedAt    time.Time              `json:"issued_at"`
	ValidUntil  *time.Time             `json:"valid_until,omitempty"`
}

// Validate checks structural invariants before storage.
func (a *Attestation) Validate() error {
	if err := a.Subject.Validate(); err != nil {
		return err
	}
	if _, err := domain.ParseAttestationType(string(a.Type)); err != nil {
		return err
	}
	if a.Type.DealScopedOnly() && a.Subject.Kind != domain.SubjectDeal {
		return dErrors.Newf(dErrors.CodeValidation,
			"%s attestations must attach to a deal, not an athlete", a.Type)
	}
	if a.Issuer == "" {
		return dErrors.New(dErrors.CodeValidation, "attestation issuer is required")
	}
	if a.PayloadHash == "" {
		return dErrors.New(dErrors.CodeValidation, "attestation payload hash is required")
	}
	if a.IssuedAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "attestation issued-at timestamp is required")
	}
	if a.ValidUntil != nil && !a.ValidUntil.After(a.IssuedAt) {
		return dErrors.New(dErrors.CodeValidation, "attestation expiry must be after issuance")
	}
	return nil
}

// ValidAt reports whether the attestation holds at time t: issued on or before
// t and either unexpiring or expiring strictly after t.
func (a *Attestation) ValidAt(t time.Time) bool {
	if t.Before(a.IssuedAt) {
		return false
	}
	if a.ValidUntil != nil && !t.Before(*a.ValidUntil) {
		return false
	}
	return true
}
