// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nilgate/internal/platform/metrics"
	"nilgate/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Deals        *DealHandler
	Athletes     *AthleteHandler
	Attestations *AttestationHandler
	Issuers      *IssuerHandler
	Audit        *AuditHandler
	TokenValid   middleware.TokenValidator
	Metrics      *metrics.HTTP
	Logger       *slog.Logger
}

// NewRouter wires all public endpoints behind the shared middleware stack.
// Attestation submission additionally requires issuer authentication.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(d.Metrics.Middleware)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	d.Athletes.Register(r)
	d.Deals.Register(r)
	d.Issuers.Register(r)
	d.Attestations.Register(r)
	if d.Audit != nil {
		d.Audit.Register(r)
	}

	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireIssuerAuth(d.TokenValid, d.Logger))
		d.Attestations.RegisterAuthenticated(g)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
