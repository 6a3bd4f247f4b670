package payout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"nilgate/internal/chain"
	"nilgate/internal/deal/models"
	payoutmetrics "nilgate/internal/payout/metrics"
	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/sentinel"
)

// DealLedger is the slice of the ledger the engine needs: reading deals and
// advancing VERIFIED → PAID. The ledger remains the single status writer.
type DealLedger interface {
	Get(ctx context.Context, id domain.DealID) (*models.Deal, error)
	Transition(ctx context.Context, id domain.DealID, target domain.DealStatus) (*models.Deal, error)
}

// Engine executes distributions. At most one payout per deal: a per-deal
// mutex serializes the check-distribute-record sequence in this process, and
// the store's uniqueness constraint backs the guard across processes, so
// concurrent and retried Execute calls cannot double-spend.
type Engine struct {
	ledger       DealLedger
	store        Store
	chainClient  chain.Client
	chainTimeout time.Duration
	logger       *slog.Logger
	metrics      *payoutmetrics.Metrics
	now          func() time.Time

	mu    sync.Mutex
	locks map[domain.DealID]*sync.Mutex
}

// Option configures the Engine.
type Option func(*Engine)

// WithClock overrides the engine clock for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *payoutmetrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(ledger DealLedger, store Store, chainClient chain.Client, chainTimeout time.Duration, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		ledger:       ledger,
		store:        store,
		chainClient:  chainClient,
		chainTimeout: chainTimeout,
		logger:       logger,
		now:          time.Now,
		locks:        make(map[domain.DealID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute distributes a VERIFIED deal's splits and records the payout.
//
// Failure semantics: on any error before the chain transfer confirms, nothing
// is recorded and the deal stays VERIFIED, so the caller can retry; a repeated
// call after success returns AlreadyPaid. If a crash lands between recording
// the payout and advancing the status, the next Execute call repairs the
// status instead of re-transferring.
func (e *Engine) Execute(ctx context.Context, dealID domain.DealID) (*Payout, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveExecuteLatency(time.Since(start)) }()

	// Serialize per deal before the existence check: the unique index dedupes
	// the record, but only this lock keeps a concurrent call from reaching the
	// chain transfer itself.
	lock := e.lockFor(dealID)
	lock.Lock()
	defer lock.Unlock()

	d, err := e.ledger.Get(ctx, dealID)
	if err != nil {
		return nil, err
	}

	if existing, err := e.store.FindByDeal(ctx, dealID); err == nil {
		return e.repair(ctx, d, existing)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "payout store unavailable", err)
	}

	if d.Status != domain.StatusVerified {
		e.metrics.IncrementFailure("not_ready")
		return nil, dErrors.Newf(dErrors.CodeNotReady,
			"deal is %s; payout requires VERIFIED", d.Status)
	}

	receipt, err := e.distribute(ctx, d)
	if err != nil {
		return nil, err
	}

	p := &Payout{
		ID:          domain.NewPayoutID(),
		DealID:      d.ID,
		Distributor: receipt.Distributor,
		TxRef:       receipt.TxRef,
		Transfers:   transfersFromSplits(d.Splits),
		ExecutedAt:  e.now().UTC(),
	}

	if err := e.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Another engine instance won the unique index between our
			// existence check and here.
			e.metrics.IncrementFailure("already_paid")
			return nil, dErrors.New(dErrors.CodeAlreadyPaid, "payout already recorded for deal")
		}
		// Funds moved but the record write failed. Surface loudly; the repair
		// path cannot run without the record, so this needs an operator.
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "CRITICAL: transfer confirmed but payout record write failed",
				"deal_id", d.ID.String(),
				"tx_ref", receipt.TxRef,
				"error", err,
			)
		}
		return nil, dErrors.Wrap(dErrors.CodePayoutFailed, "payout record write failed after transfer", err)
	}

	if _, err := e.ledger.Transition(ctx, dealID, domain.StatusPaid); err != nil {
		// Record exists; a later Execute call repairs the status.
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "payout recorded but status advance failed",
				"deal_id", d.ID.String(),
				"error", err,
			)
		}
		return nil, err
	}

	e.metrics.IncrementExecuted()
	if e.logger != nil {
		e.logger.InfoContext(ctx, "payout executed",
			"deal_id", d.ID.String(),
			"payout_id", p.ID.String(),
			"tx_ref", p.TxRef,
			"total", p.Total().String(),
			"payees", len(p.Transfers),
		)
	}
	return p, nil
}

// lockFor returns the mutex serializing payout execution for one deal. Locks
// are never evicted; the map grows with the deal count, which is bounded and
// small relative to the records themselves.
func (e *Engine) lockFor(id domain.DealID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.locks[id]; ok {
		return m
	}
	m := &sync.Mutex{}
	e.locks[id] = m
	return m
}

// FindByDeal returns the payout record for a deal, if any.
func (e *Engine) FindByDeal(ctx context.Context, dealID domain.DealID) (*Payout, error) {
	p, err := e.store.FindByDeal(ctx, dealID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no payout for deal")
		}
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "payout store unavailable", err)
	}
	return p, nil
}

// repair finishes an interrupted execution: the payout exists but the deal may
// still read VERIFIED.
func (e *Engine) repair(ctx context.Context, d *models.Deal, existing *Payout) (*Payout, error) {
	if d.Status == domain.StatusVerified {
		if _, err := e.ledger.Transition(ctx, d.ID, domain.StatusPaid); err != nil {
			return nil, err
		}
		if e.logger != nil {
			e.logger.WarnContext(ctx, "repaired deal status from recorded payout",
				"deal_id", d.ID.String(),
				"payout_id", existing.ID.String(),
			)
		}
		return existing, nil
	}
	e.metrics.IncrementFailure("already_paid")
	return nil, dErrors.New(dErrors.CodeAlreadyPaid, "payout already recorded for deal")
}

func (e *Engine) distribute(ctx context.Context, d *models.Deal) (*chain.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, e.chainTimeout)
	defer cancel()

	receipt, err := e.chainClient.Distribute(ctx, d.ChainID, d.Splits)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sentinel.ErrTimeout):
			e.metrics.IncrementFailure("timeout")
			return nil, dErrors.Wrap(dErrors.CodeUpstreamTimeout, "chain distribution timed out", err)
		case errors.Is(err, sentinel.ErrUnavailable):
			e.metrics.IncrementFailure("unavailable")
			return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "chain client unavailable", err)
		default:
			e.metrics.IncrementFailure("transfer")
			return nil, dErrors.Wrap(dErrors.CodePayoutFailed, "chain distribution failed", err)
		}
	}
	return receipt, nil
}

func transfersFromSplits(splits domain.SplitConfig) []Transfer {
	out := make([]Transfer, len(splits))
	for i, s := range splits {
		out[i] = Transfer{Payee: s.Payee, Amount: s.Share}
	}
	return out
}
