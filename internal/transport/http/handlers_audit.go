package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nilgate/internal/audit"
	"nilgate/internal/transport/http/shared"
	"nilgate/pkg/domain"
)

// AuditLog is the trail surface the audit endpoint reads.
type AuditLog interface {
	ListByDeal(ctx context.Context, dealID domain.DealID) ([]audit.Entry, error)
}

// AuditHandler serves the per-deal settlement audit trail.
type AuditHandler struct {
	log AuditLog
}

func NewAuditHandler(log AuditLog) *AuditHandler {
	return &AuditHandler{log: log}
}

func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/deals/{dealID}/audit", h.handleList)
}

func (h *AuditHandler) handleList(w http.ResponseWriter, r *http.Request) {
	id, err := dealIDFromPath(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	entries, err := h.log.ListByDeal(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}
