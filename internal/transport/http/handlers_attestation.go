package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nilgate/internal/attestation"
	"nilgate/internal/platform/middleware"
	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"

	"nilgate/internal/transport/http/shared"
)

// AttestationService is the attestation surface the handler calls.
type AttestationService interface {
	Put(ctx context.Context, a *attestation.Attestation, issuerName string) error
	Query(ctx context.Context, subject domain.Subject, typ domain.AttestationType) ([]*attestation.Attestation, error)
}

// AttestationHandler serves attestation submission and lookup. Submission is
// issuer-authenticated; the route is mounted behind RequireIssuerAuth.
type AttestationHandler struct {
	attestations AttestationService
	logger       *slog.Logger
}

func NewAttestationHandler(attestations AttestationService, logger *slog.Logger) *AttestationHandler {
	return &AttestationHandler{attestations: attestations, logger: logger}
}

// RegisterAuthenticated mounts the issuer-authenticated submission route.
func (h *AttestationHandler) RegisterAuthenticated(r chi.Router) {
	r.Put("/attestations", h.handlePut)
}

// Register mounts the unauthenticated lookup route.
func (h *AttestationHandler) Register(r chi.Router) {
	r.Get("/attestations", h.handleQuery)
}

type putAttestationRequest struct {
	SubjectKind string     `json:"subject_kind"`
	SubjectID   string     `json:"subject_id"`
	Type        string     `json:"type"`
	Issuer      string     `json:"issuer"`
	PayloadHash string     `json:"payload_hash"`
	IssuedAt    time.Time  `json:"issued_at"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
}

func (h *AttestationHandler) handlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req putAttestationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	kind, err := domain.ParseSubjectKind(req.SubjectKind)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	typ, err := domain.ParseAttestationType(req.Type)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	a := &attestation.Attestation{
		Subject:     domain.Subject{Kind: kind, ID: req.SubjectID},
		Type:        typ,
		Issuer:      req.Issuer,
		PayloadHash: req.PayloadHash,
		IssuedAt:    req.IssuedAt,
		ValidUntil:  req.ValidUntil,
	}

	issuerName := middleware.GetIssuerName(ctx)
	if err := h.attestations.Put(ctx, a, issuerName); err != nil {
		h.logger.WarnContext(ctx, "attestation submission rejected",
			"request_id", middleware.GetRequestID(ctx),
			"issuer", issuerName,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusNoContent, nil)
}

func (h *AttestationHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseSubjectKind(r.URL.Query().Get("subject_kind"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	subjectID := r.URL.Query().Get("subject_id")
	if subjectID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "subject_id is required"))
		return
	}
	typ, err := domain.ParseAttestationType(r.URL.Query().Get("type"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	records, err := h.attestations.Query(r.Context(), domain.Subject{Kind: kind, ID: subjectID}, typ)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if records == nil {
		records = []*attestation.Attestation{}
	}
	shared.WriteJSON(w, http.StatusOK, records)
}
