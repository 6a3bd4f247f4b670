package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nilgate/internal/issuer"
	"nilgate/internal/platform/middleware"
	dErrors "nilgate/pkg/domain-errors"

	"nilgate/internal/transport/http/shared"
)

// IssuerService is the issuer registry surface the handler calls.
type IssuerService interface {
	Register(ctx context.Context, name, secret string) (*issuer.Issuer, error)
	Authenticate(ctx context.Context, name, secret string) (string, error)
}

// IssuerHandler serves issuer registration and token exchange.
type IssuerHandler struct {
	issuers IssuerService
	logger  *slog.Logger
}

func NewIssuerHandler(issuers IssuerService, logger *slog.Logger) *IssuerHandler {
	return &IssuerHandler{issuers: issuers, logger: logger}
}

// Register mounts the issuer routes.
func (h *IssuerHandler) Register(r chi.Router) {
	r.Post("/issuers", h.handleRegister)
	r.Post("/issuers/token", h.handleToken)
}

type registerIssuerRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

func (h *IssuerHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerIssuerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	i, err := h.issuers.Register(ctx, req.Name, req.Secret)
	if err != nil {
		h.logger.WarnContext(ctx, "issuer registration failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, i)
}

type issuerTokenRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type issuerTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *IssuerHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issuerTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	token, err := h.issuers.Authenticate(ctx, req.Name, req.Secret)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, issuerTokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}
