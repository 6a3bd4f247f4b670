package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nilgate/internal/athlete"
	"nilgate/internal/platform/middleware"
	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"

	"nilgate/internal/transport/http/shared"
)

// AthleteService is the athlete registry surface the handler calls.
type AthleteService interface {
	Register(ctx context.Context, wallet, vault domain.Address, country domain.Jurisdiction) (*athlete.Athlete, error)
	Get(ctx context.Context, id domain.AthleteID) (*athlete.Athlete, error)
}

// AthleteHandler serves athlete registration and lookup.
type AthleteHandler struct {
	athletes AthleteService
	logger   *slog.Logger
}

func NewAthleteHandler(athletes AthleteService, logger *slog.Logger) *AthleteHandler {
	return &AthleteHandler{athletes: athletes, logger: logger}
}

// Register mounts the athlete routes.
func (h *AthleteHandler) Register(r chi.Router) {
	r.Post("/athletes", h.handleRegister)
	r.Get("/athletes/{athleteID}", h.handleGet)
}

type registerAthleteRequest struct {
	Wallet  string `json:"wallet"`
	Vault   string `json:"vault"`
	Country string `json:"country"`
}

func (h *AthleteHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerAthleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	wallet, err := domain.ParseAddress(req.Wallet)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	vault, err := domain.ParseAddress(req.Vault)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	country, err := domain.ParseJurisdiction(req.Country)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	a, err := h.athletes.Register(ctx, wallet, vault, country)
	if err != nil {
		h.logger.WarnContext(ctx, "athlete registration failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, a)
}

func (h *AthleteHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseAthleteID(chi.URLParam(r, "athleteID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	a, err := h.athletes.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, a)
}
