package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and collaborator clients
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in store
// - ErrConflict: uniqueness constraint hit (chain deal id, vault, payout/deal)
// - ErrStatusConflict: optimistic status check-and-set lost the race
// - ErrTimeout: collaborator call exceeded its deadline
// - ErrUnavailable: store or collaborator temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrStatusConflict = errors.New("status conflict")
	ErrTimeout        = errors.New("timeout")
	ErrUnavailable    = errors.New("unavailable")
)
