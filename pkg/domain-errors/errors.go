// Package domainerrors provides coded errors for the deal clearing domain.
//
// Services return these so transport layers can translate outcomes into
// machine-readable status codes without string matching. Infra layers return
// sentinel errors (pkg/platform/sentinel) instead; services translate at the
// boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of domain failure.
type Code string

const (
	// CodeValidation covers malformed or inconsistent input, rejected before
	// any state change (e.g. splits not summing to the deal amount).
	CodeValidation Code = "validation"

	// CodeNotFound covers unknown deals, athletes, payouts, or issuers.
	CodeNotFound Code = "not_found"

	// CodeConflict covers uniqueness violations (duplicate vault, duplicate
	// chain deal id).
	CodeConflict Code = "conflict"

	// CodeInvalidTransition covers state machine guard violations. The deal is
	// left untouched and the current status is reported to the caller.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeNotReady means payout was requested before the deal reached VERIFIED.
	CodeNotReady Code = "not_ready"

	// CodeAlreadyPaid means a payout record already exists for the deal.
	CodeAlreadyPaid Code = "already_paid"

	// CodePayoutFailed means the chain distribution call failed. The deal stays
	// VERIFIED and the request is retryable.
	CodePayoutFailed Code = "payout_failed"

	// CodeUpstreamTimeout means a collaborator call exceeded its deadline. No
	// status was advanced; retryable.
	CodeUpstreamTimeout Code = "upstream_timeout"

	// CodeUpstreamUnavailable means the attestation store or chain client is
	// down. Surfaced, never swallowed, advances nothing.
	CodeUpstreamUnavailable Code = "upstream_unavailable"

	// CodeUnauthorized covers missing or invalid issuer credentials.
	CodeUnauthorized Code = "unauthorized"

	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. Construct via New or Wrap.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause remains
// reachable via errors.Is/errors.As.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain code onto an HTTP status for the transport layer.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidTransition, CodeNotReady, CodeAlreadyPaid:
		return http.StatusConflict
	case CodePayoutFailed:
		return http.StatusBadGateway
	case CodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
