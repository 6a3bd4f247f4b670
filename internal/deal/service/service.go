// Package service implements the deal ledger: the single owner of deal records
// and the only component allowed to move a deal's status.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	dealmetrics "nilgate/internal/deal/metrics"
	"nilgate/internal/deal/models"
	"nilgate/internal/deal/store"
	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/sentinel"
)

// Ledger owns deal records and enforces the lifecycle state machine.
//
// Mutations are serialized per deal: a keyed mutex guards the read-check-write
// sequence in Transition, and the store's status check-and-set backs it up for
// multi-process deployments sharing one database.
type Ledger struct {
	store   store.Store
	logger  *slog.Logger
	metrics *dealmetrics.Metrics
	now     func() time.Time

	mu    sync.Mutex
	locks map[domain.DealID]*sync.Mutex
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithClock overrides the ledger clock for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *dealmetrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

func NewLedger(st store.Store, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:  st,
		logger: logger,
		now:    time.Now,
		locks:  make(map[domain.DealID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// lockFor returns the mutex serializing mutations for one deal. Locks are
// never evicted; the map grows with the deal count, which is bounded and
// small relative to the records themselves.
func (l *Ledger) lockFor(id domain.DealID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.locks[id]; ok {
		return m
	}
	m := &sync.Mutex{}
	l.locks[id] = m
	return m
}

// Create validates and persists a new deal in CREATED status. It touches
// neither the attestation store nor the chain; minting happens upstream.
func (l *Ledger) Create(ctx context.Context, p models.CreateParams) (*models.Deal, error) {
	d, err := models.New(p, l.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := l.store.Create(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "chain deal id %s already exists", d.ChainID)
		}
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "deal store unavailable", err)
	}
	l.metrics.IncrementCreated()
	if l.logger != nil {
		l.logger.InfoContext(ctx, "deal created",
			"deal_id", d.ID.String(),
			"chain_deal_id", d.ChainID.String(),
			"amount", d.Amount.String(),
			"jurisdiction", d.Jurisdiction.String(),
			"payees", len(d.Splits),
		)
	}
	return d, nil
}

// Get returns the deal by internal id.
func (l *Ledger) Get(ctx context.Context, id domain.DealID) (*models.Deal, error) {
	d, err := l.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "deal not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "deal store unavailable", err)
	}
	return d, nil
}

// GetByChainID returns the deal by its chain-linked identifier.
func (l *Ledger) GetByChainID(ctx context.Context, chainID domain.ChainDealID) (*models.Deal, error) {
	d, err := l.store.GetByChainID(ctx, chainID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "deal not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "deal store unavailable", err)
	}
	return d, nil
}

// Transition moves a deal to target if the state machine allows it. This is
// the single mutation point for status; approve/verify re-entry on a deal
// already in the target state is a no-op returning the current record.
func (l *Ledger) Transition(ctx context.Context, id domain.DealID, target domain.DealStatus) (*models.Deal, error) {
	return l.transition(ctx, id, target, "")
}

// Dispute moves a deal to DISPUTED with a recorded reason. Allowed from any
// non-terminal state.
func (l *Ledger) Dispute(ctx context.Context, id domain.DealID, reason string) (*models.Deal, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "dispute reason is required")
	}
	return l.transition(ctx, id, domain.StatusDisputed, reason)
}

func (l *Ledger) transition(ctx context.Context, id domain.DealID, target domain.DealStatus, disputeReason string) (*models.Deal, error) {
	lock := l.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	d, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Retried approve/verify requests are tolerated, not punished.
	if d.Status == target && !target.IsTerminal() {
		l.metrics.IncrementTransition(target.String(), "noop")
		return d, nil
	}

	if !d.Status.CanTransitionTo(target) {
		l.metrics.IncrementTransition(target.String(), "invalid")
		return nil, dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot move deal from %s to %s", d.Status, target)
	}

	updated, err := l.store.UpdateStatus(ctx, id, d.Status, target, disputeReason, l.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrStatusConflict):
			// Lost a cross-process race; report against the fresh state.
			l.metrics.IncrementTransition(target.String(), "conflict")
			current, getErr := l.Get(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			if current.Status == target && !target.IsTerminal() {
				return current, nil
			}
			return nil, dErrors.Newf(dErrors.CodeInvalidTransition,
				"cannot move deal from %s to %s", current.Status, target)
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "deal not found")
		default:
			return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "deal store unavailable", err)
		}
	}

	l.metrics.IncrementTransition(target.String(), "ok")
	if l.logger != nil {
		l.logger.InfoContext(ctx, "deal transitioned",
			"deal_id", id.String(),
			"from", d.Status.String(),
			"to", target.String(),
		)
	}
	return updated, nil
}
