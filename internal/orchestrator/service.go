// Package orchestrator sequences the deal lifecycle end to end: mint and
// record on create, evaluate compliance on approve, confirm on chain for
// verify, and execute distribution on payout. It owns no state of its own;
// every fact lives in the ledger, the attestation store, or the payout store,
// and every status change goes through the ledger.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"

	"nilgate/internal/athlete"
	"nilgate/internal/chain"
	"nilgate/internal/compliance"
	"nilgate/internal/deal/models"
	"nilgate/internal/events"
	"nilgate/internal/payout"
	"nilgate/internal/platform/middleware"
	"nilgate/internal/platform/tracing"
	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/sentinel"
)

const tracerName = "orchestrator"

// DealLedger is the ledger surface the orchestrator drives.
type DealLedger interface {
	Create(ctx context.Context, p models.CreateParams) (*models.Deal, error)
	Get(ctx context.Context, id domain.DealID) (*models.Deal, error)
	GetByChainID(ctx context.Context, chainID domain.ChainDealID) (*models.Deal, error)
	Transition(ctx context.Context, id domain.DealID, target domain.DealStatus) (*models.Deal, error)
	Dispute(ctx context.Context, id domain.DealID, reason string) (*models.Deal, error)
}

// ComplianceEvaluator renders compliance verdicts.
type ComplianceEvaluator interface {
	Evaluate(ctx context.Context, in compliance.Input) (*compliance.Result, error)
}

// PayoutExecutor runs distributions for verified deals.
type PayoutExecutor interface {
	Execute(ctx context.Context, dealID domain.DealID) (*payout.Payout, error)
	FindByDeal(ctx context.Context, dealID domain.DealID) (*payout.Payout, error)
}

// AthleteDirectory resolves registered athletes by vault.
type AthleteDirectory interface {
	GetByVault(ctx context.Context, vault domain.Address) (*athlete.Athlete, error)
}

// PayoutNotifier receives the post-payout notification.
type PayoutNotifier interface {
	NotifyPayout(ctx context.Context, p *payout.Payout) error
}

// Service is the lifecycle façade the transport layer calls.
type Service struct {
	ledger        DealLedger
	athletes      AthleteDirectory
	evaluator     ComplianceEvaluator
	engine        PayoutExecutor
	chainClient   chain.Client
	publisher     events.Publisher
	notifier      PayoutNotifier
	chainTimeout  time.Duration
	notifyTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier attaches a payout notification sink.
func WithNotifier(n PayoutNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(
	ledger DealLedger,
	athletes AthleteDirectory,
	evaluator ComplianceEvaluator,
	engine PayoutExecutor,
	chainClient chain.Client,
	publisher events.Publisher,
	chainTimeout time.Duration,
	notifyTimeout time.Duration,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		ledger:        ledger,
		athletes:      athletes,
		evaluator:     evaluator,
		engine:        engine,
		chainClient:   chainClient,
		publisher:     publisher,
		chainTimeout:  chainTimeout,
		notifyTimeout: notifyTimeout,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDealParams is the transport-level request for a new deal. The chain
// deal id is absent: minting assigns it.
type CreateDealParams struct {
	Vault        domain.Address
	Brand        domain.Address
	Amount       domain.Amount
	TermsHash    domain.TermsHash
	Jurisdiction domain.Jurisdiction
	Splits       domain.SplitConfig
}

// CreateDeal mints the on-chain record and opens the deal in CREATED status.
// The vault must belong to a registered athlete. Validation failures are
// rejected before the mint call so a bad request never touches the chain.
func (s *Service) CreateDeal(ctx context.Context, p CreateDealParams) (*models.Deal, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "orchestrator.create_deal")
	defer span.End()

	if !p.Amount.IsPositive() {
		return nil, s.fail(span, dErrors.New(dErrors.CodeValidation, "deal amount must be positive"))
	}
	if err := p.Splits.Validate(p.Amount); err != nil {
		return nil, s.fail(span, err)
	}

	if _, err := s.athletes.GetByVault(ctx, p.Vault); err != nil {
		return nil, s.fail(span, err)
	}

	minted, err := s.mint(ctx, p)
	if err != nil {
		return nil, s.fail(span, err)
	}

	d, err := s.ledger.Create(ctx, models.CreateParams{
		ChainID:      minted.ChainDealID,
		Vault:        p.Vault,
		Brand:        p.Brand,
		Amount:       p.Amount,
		TermsHash:    p.TermsHash,
		Jurisdiction: p.Jurisdiction,
		Splits:       p.Splits,
	})
	if err != nil {
		// The chain record exists but the deal was not opened. The mint is
		// idempotent per terms hash, so a retry reattaches to it.
		return nil, s.fail(span, err)
	}

	span.SetAttributes(
		attribute.String("deal.id", d.ID.String()),
		attribute.String("deal.chain_id", d.ChainID.String()),
	)
	s.emit(ctx, events.TypeDealCreated, d, "")
	return d, nil
}

// Approve runs the compliance gate. A compliant deal moves to APPROVED; a
// non-compliant one stays put and the verdict is returned so the caller can
// see exactly which requirements failed. Re-approving an APPROVED deal is a
// no-op.
func (s *Service) Approve(ctx context.Context, id domain.DealID) (*models.Deal, *compliance.Result, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "orchestrator.approve")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", id.String()))

	d, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, nil, s.fail(span, err)
	}

	result, err := s.evaluator.Evaluate(ctx, compliance.Input{
		Vault:        d.Vault,
		ChainDealID:  d.ChainID,
		Jurisdiction: d.Jurisdiction,
	})
	if err != nil {
		return nil, nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.Bool("compliance.compliant", result.Compliant))

	if !result.Compliant {
		s.emit(ctx, events.TypeDealRejected, d, reasonLine(result))
		return d, result, nil
	}

	updated, err := s.ledger.Transition(ctx, id, domain.StatusApproved)
	if err != nil {
		return nil, nil, s.fail(span, err)
	}
	if updated.Status == domain.StatusApproved && d.Status != domain.StatusApproved {
		s.emit(ctx, events.TypeDealApproved, updated, "")
	}
	return updated, result, nil
}

// Verify asks the chain whether the deal record is confirmed and, if so,
// advances APPROVED → VERIFIED. The chain answer is the only path to VERIFIED;
// an unconfirmed record is NotReady, not an error in the deal itself.
func (s *Service) Verify(ctx context.Context, id domain.DealID) (*models.Deal, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "orchestrator.verify")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", id.String()))

	d, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, s.fail(span, err)
	}

	confirmed, err := s.confirm(ctx, d.ChainID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if !confirmed {
		return nil, s.fail(span, dErrors.New(dErrors.CodeNotReady, "deal record is not confirmed on chain"))
	}

	updated, err := s.ledger.Transition(ctx, id, domain.StatusVerified)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if updated.Status == domain.StatusVerified && d.Status != domain.StatusVerified {
		s.emit(ctx, events.TypeDealVerified, updated, "")
	}
	return updated, nil
}

// RequestPayout executes the distribution for a VERIFIED deal. On success the
// deal is PAID and the payment pipeline is notified asynchronously; a
// notification failure never affects the payout.
func (s *Service) RequestPayout(ctx context.Context, id domain.DealID) (*payout.Payout, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "orchestrator.request_payout")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", id.String()))

	p, err := s.engine.Execute(ctx, id)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.String("payout.id", p.ID.String()))

	if d, err := s.ledger.Get(ctx, id); err == nil {
		s.emit(ctx, events.TypeDealPaid, d, "")
	}
	s.notifyAsync(ctx, p)
	return p, nil
}

// Dispute freezes a deal with a recorded reason. Allowed from any non-terminal
// state; a disputed deal can no longer be approved, verified, or paid.
func (s *Service) Dispute(ctx context.Context, id domain.DealID, reason string) (*models.Deal, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "orchestrator.dispute")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", id.String()))

	d, err := s.ledger.Dispute(ctx, id, reason)
	if err != nil {
		return nil, s.fail(span, err)
	}
	s.emit(ctx, events.TypeDealDisputed, d, reason)
	return d, nil
}

// ComplianceStatus evaluates a deal without touching its status. Callers use
// it to preview what Approve would decide.
func (s *Service) ComplianceStatus(ctx context.Context, id domain.DealID) (*compliance.Result, error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "orchestrator.compliance_status")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", id.String()))

	d, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, s.fail(span, err)
	}
	result, err := s.evaluator.Evaluate(ctx, compliance.Input{
		Vault:        d.Vault,
		ChainDealID:  d.ChainID,
		Jurisdiction: d.Jurisdiction,
	})
	if err != nil {
		return nil, s.fail(span, err)
	}
	return result, nil
}

// GetDeal returns a deal by id.
func (s *Service) GetDeal(ctx context.Context, id domain.DealID) (*models.Deal, error) {
	return s.ledger.Get(ctx, id)
}

// GetPayout returns the payout record for a deal, if one exists.
func (s *Service) GetPayout(ctx context.Context, dealID domain.DealID) (*payout.Payout, error) {
	return s.engine.FindByDeal(ctx, dealID)
}

func (s *Service) mint(ctx context.Context, p CreateDealParams) (*chain.MintResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.chainTimeout)
	defer cancel()

	minted, err := s.chainClient.MintDealRecord(ctx, chain.MintParams{
		Vault:        p.Vault,
		Brand:        p.Brand,
		Amount:       p.Amount,
		TermsHash:    p.TermsHash,
		Jurisdiction: p.Jurisdiction,
	})
	if err != nil {
		return nil, translateChainErr(err, "chain mint")
	}
	return minted, nil
}

func (s *Service) confirm(ctx context.Context, chainID domain.ChainDealID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.chainTimeout)
	defer cancel()

	confirmed, err := s.chainClient.ConfirmOnChain(ctx, chainID)
	if err != nil {
		return false, translateChainErr(err, "chain confirmation")
	}
	return confirmed, nil
}

func translateChainErr(err error, op string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sentinel.ErrTimeout):
		return dErrors.Wrap(dErrors.CodeUpstreamTimeout, op+" timed out", err)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "chain client unavailable", err)
	default:
		return dErrors.Wrap(dErrors.CodeUpstreamUnavailable, op+" failed", err)
	}
}

// emit publishes a lifecycle event; failures are logged, never surfaced.
func (s *Service) emit(ctx context.Context, t events.Type, d *models.Deal, reason string) {
	e := events.Event{
		Type:        t,
		Timestamp:   s.now().UTC(),
		DealID:      d.ID,
		ChainDealID: d.ChainID,
		Status:      d.Status,
		Reason:      reason,
		RequestID:   middleware.GetRequestID(ctx),
	}
	if err := s.publisher.Emit(ctx, e); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "lifecycle event emit failed",
			"type", string(t),
			"deal_id", d.ID.String(),
			"error", err,
		)
	}
}

// notifyAsync hands the payout to the payment pipeline on its own deadline,
// detached from the request context so a slow generator cannot stall the
// response.
func (s *Service) notifyAsync(ctx context.Context, p *payout.Payout) {
	if s.notifier == nil {
		return
	}
	requestID := middleware.GetRequestID(ctx)
	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		nctx = context.WithValue(nctx, middleware.ContextKeyRequestID, requestID)
		if err := s.notifier.NotifyPayout(nctx, p); err != nil && s.logger != nil {
			s.logger.ErrorContext(nctx, "payout notification failed",
				"payout_id", p.ID.String(),
				"deal_id", p.DealID.String(),
				"error", err,
			)
		}
	}()
}

func (s *Service) fail(span otelTrace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func reasonLine(r *compliance.Result) string {
	if len(r.Reasons) == 0 {
		return ""
	}
	return r.Reasons[0]
}
