package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator validates issuer bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*IssuerClaims, error)
}

// IssuerClaims is what the token layer hands back to HTTP middleware: who the
// attestation authority is and the name it signs attestations under.
type IssuerClaims struct {
	IssuerID   string
	IssuerName string
}

type contextKeyIssuerID struct{}
type contextKeyIssuerName struct{}

// Context keys exported for handlers and tests.
var (
	ContextKeyIssuerID   = contextKeyIssuerID{}
	ContextKeyIssuerName = contextKeyIssuerName{}
)

// GetIssuerID retrieves the authenticated issuer id from the context.
func GetIssuerID(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeyIssuerID).(string)
	if !ok {
		return ""
	}
	return id
}

// GetIssuerName retrieves the authenticated issuer name from the context.
func GetIssuerName(ctx context.Context) string {
	name, ok := ctx.Value(ContextKeyIssuerName).(string)
	if !ok {
		return ""
	}
	return name
}

// RequireIssuerAuth guards attestation submission endpoints. The bearer token
// identifies a registered attestation authority; handlers must still check the
// token subject matches the attestation's issuer field.
func RequireIssuerAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				if logger != nil {
					logger.WarnContext(r.Context(), "issuer auth missing token",
						"request_id", GetRequestID(r.Context()),
					)
				}
				writeUnauthorized(w, "missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if logger != nil {
					logger.WarnContext(r.Context(), "issuer auth invalid token",
						"error", err,
						"request_id", GetRequestID(r.Context()),
					)
				}
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIssuerID, claims.IssuerID)
			ctx = context.WithValue(ctx, ContextKeyIssuerName, claims.IssuerName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
