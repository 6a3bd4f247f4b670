package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nilgate/internal/compliance"
	"nilgate/internal/deal/models"
	"nilgate/internal/orchestrator"
	"nilgate/internal/payout"
	"nilgate/internal/platform/middleware"
	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"

	"nilgate/internal/transport/http/shared"
)

// LifecycleService is the orchestrator surface the deal endpoints call.
type LifecycleService interface {
	CreateDeal(ctx context.Context, p orchestrator.CreateDealParams) (*models.Deal, error)
	GetDeal(ctx context.Context, id domain.DealID) (*models.Deal, error)
	Approve(ctx context.Context, id domain.DealID) (*models.Deal, *compliance.Result, error)
	Verify(ctx context.Context, id domain.DealID) (*models.Deal, error)
	RequestPayout(ctx context.Context, id domain.DealID) (*payout.Payout, error)
	Dispute(ctx context.Context, id domain.DealID, reason string) (*models.Deal, error)
	ComplianceStatus(ctx context.Context, id domain.DealID) (*compliance.Result, error)
	GetPayout(ctx context.Context, dealID domain.DealID) (*payout.Payout, error)
}

// DealHandler serves the deal lifecycle endpoints.
type DealHandler struct {
	lifecycle LifecycleService
	logger    *slog.Logger
}

func NewDealHandler(lifecycle LifecycleService, logger *slog.Logger) *DealHandler {
	return &DealHandler{lifecycle: lifecycle, logger: logger}
}

// Register mounts the deal routes.
func (h *DealHandler) Register(r chi.Router) {
	r.Post("/deals", h.handleCreate)
	r.Get("/deals/{dealID}", h.handleGet)
	r.Post("/deals/{dealID}/approve", h.handleApprove)
	r.Post("/deals/{dealID}/verify", h.handleVerify)
	r.Post("/deals/{dealID}/payout", h.handlePayout)
	r.Post("/deals/{dealID}/dispute", h.handleDispute)
	r.Get("/deals/{dealID}/compliance", h.handleComplianceStatus)
	r.Get("/deals/{dealID}/payout", h.handleGetPayout)
}

type splitRequest struct {
	Payee string `json:"payee"`
	Share string `json:"share"`
}

type createDealRequest struct {
	Vault        string         `json:"vault"`
	Brand        string         `json:"brand"`
	Amount       string         `json:"amount"`
	TermsHash    string         `json:"terms_hash"`
	Jurisdiction string         `json:"jurisdiction"`
	Splits       []splitRequest `json:"splits"`
}

func (h *DealHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	params, err := createParamsFromRequest(req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	d, err := h.lifecycle.CreateDeal(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "deal creation failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, d)
}

func createParamsFromRequest(req createDealRequest) (orchestrator.CreateDealParams, error) {
	var p orchestrator.CreateDealParams

	vault, err := domain.ParseAddress(req.Vault)
	if err != nil {
		return p, err
	}
	brand, err := domain.ParseAddress(req.Brand)
	if err != nil {
		return p, err
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return p, err
	}
	termsHash, err := domain.ParseTermsHash(req.TermsHash)
	if err != nil {
		return p, err
	}
	jurisdiction, err := domain.ParseJurisdiction(req.Jurisdiction)
	if err != nil {
		return p, err
	}
	splits := make(domain.SplitConfig, 0, len(req.Splits))
	for _, s := range req.Splits {
		payee, err := domain.ParseAddress(s.Payee)
		if err != nil {
			return p, err
		}
		share, err := domain.ParseAmount(s.Share)
		if err != nil {
			return p, err
		}
		splits = append(splits, domain.Split{Payee: payee, Share: share})
	}

	return orchestrator.CreateDealParams{
		Vault:        vault,
		Brand:        brand,
		Amount:       amount,
		TermsHash:    termsHash,
		Jurisdiction: jurisdiction,
		Splits:       splits,
	}, nil
}

func (h *DealHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := dealIDFromPath(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	d, err := h.lifecycle.GetDeal(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

type approveResponse struct {
	Deal       *models.Deal       `json:"deal"`
	Compliance *compliance.Result `json:"compliance"`
}

func (h *DealHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := dealIDFromPath(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	d, result, err := h.lifecycle.Approve(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "approve failed",
			"request_id", middleware.GetRequestID(ctx),
			"deal_id", id.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	// A non-compliant verdict is a successful evaluation, not an error; the
	// deal simply did not move.
	status := http.StatusOK
	if !result.Compliant {
		status = http.StatusUnprocessableEntity
	}
	shared.WriteJSON(w, status, approveResponse{Deal: d, Compliance: result})
}

func (h *DealHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := dealIDFromPath(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	d, err := h.lifecycle.Verify(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "verify failed",
			"request_id", middleware.GetRequestID(ctx),
			"deal_id", id.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

func (h *DealHandler) handlePayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := dealIDFromPath(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := h.lifecycle.RequestPayout(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "payout request failed",
			"request_id", middleware.GetRequestID(ctx),
			"deal_id", id.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, p)
}

type disputeRequest struct {
	Reason string `json:"reason"`
}

func (h *DealHandler) handleDispute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := dealIDFromPath(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req disputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	d, err := h.lifecycle.Dispute(ctx, id, req.Reason)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

func (h *DealHandler) handleComplianceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := dealIDFromPath(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	result, err := h.lifecycle.ComplianceStatus(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *DealHandler) handleGetPayout(w http.ResponseWriter, r *http.Request) {
	id, err := dealIDFromPath(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := h.lifecycle.GetPayout(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

func dealIDFromPath(r *http.Request) (domain.DealID, error) {
	return domain.ParseDealID(chi.URLParam(r, "dealID"))
}
