package testutil

import (
	"context"
	"net/http"

	"nilgate/internal/platform/middleware"
)

// WithIssuer adds an authenticated issuer to the request context. This
// simulates what RequireIssuerAuth would do for a valid bearer token.
func WithIssuer(req *http.Request, issuerID, issuerName string) *http.Request {
	ctx := req.Context()
	if issuerID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyIssuerID, issuerID)
	}
	if issuerName != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyIssuerName, issuerName)
	}
	return req.WithContext(ctx)
}

// WithRequestID seeds a correlation id on the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyRequestID, requestID)
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
