package domain

import dErrors "nilgate/pkg/domain-errors"

// DealStatus is the closed lifecycle enumeration for a deal.
//
// Transitions: CREATED → APPROVED → VERIFIED → PAID, with DISPUTED reachable
// from any non-terminal state. PAID and DISPUTED are terminal. Status only
// changes through the ledger's Transition operation; no other component writes
// it.
type DealStatus string

const (
	StatusCreated  DealStatus = "CREATED"
	StatusApproved DealStatus = "APPROVED"
	StatusVerified DealStatus = "VERIFIED"
	StatusPaid     DealStatus = "PAID"
	StatusDisputed DealStatus = "DISPUTED"
)

// validStatuses is the single source of truth for the enumeration.
var validStatuses = map[DealStatus]bool{
	StatusCreated:  true,
	StatusApproved: true,
	StatusVerified: true,
	StatusPaid:     true,
	StatusDisputed: true,
}

// forwardTransitions encodes the happy-path edges. DISPUTED is handled
// separately since it is reachable from every non-terminal state.
var forwardTransitions = map[DealStatus]DealStatus{
	StatusCreated:  StatusApproved,
	StatusApproved: StatusVerified,
	StatusVerified: StatusPaid,
}

// ParseDealStatus constructs a DealStatus from external input.
func ParseDealStatus(s string) (DealStatus, error) {
	st := DealStatus(s)
	if !validStatuses[st] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown deal status %q", s)
	}
	return st, nil
}

func (s DealStatus) String() string { return string(s) }

// IsTerminal reports whether no further transitions are allowed.
func (s DealStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusDisputed
}

// CanTransitionTo reports whether moving from s to target is a legal edge.
// Idempotent re-entry (APPROVED→APPROVED, VERIFIED→VERIFIED) is allowed so
// retried approve/verify requests are no-ops rather than errors.
func (s DealStatus) CanTransitionTo(target DealStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusDisputed {
		return true
	}
	if target == s && (s == StatusApproved || s == StatusVerified) {
		return true
	}
	return forwardTransitions[s] == target
}
