package audit

import (
	"context"
	"log/slog"

	"nilgate/internal/events"
	"nilgate/pkg/domain"
)

const defaultInboxSize = 256

// Trail records lifecycle events into the audit store. It satisfies
// events.Publisher so it can sit in the fan-out next to the broker publisher;
// Emit never blocks the caller, entries are written by Run in the background.
// When the inbox is full the event is dropped and logged, not queued: the
// trail is fail-open like every other sink.
type Trail struct {
	store  Store
	inbox  chan Entry
	logger *slog.Logger
}

func NewTrail(store Store, logger *slog.Logger) *Trail {
	return &Trail{
		store:  store,
		inbox:  make(chan Entry, defaultInboxSize),
		logger: logger,
	}
}

func (t *Trail) Emit(ctx context.Context, e events.Event) error {
	entry := Entry{
		Timestamp:   e.Timestamp,
		DealID:      e.DealID,
		ChainDealID: e.ChainDealID,
		Action:      string(e.Type),
		Status:      e.Status,
		Reason:      e.Reason,
		RequestID:   e.RequestID,
	}
	select {
	case t.inbox <- entry:
	default:
		if t.logger != nil {
			t.logger.WarnContext(ctx, "audit inbox full, entry dropped",
				"deal_id", e.DealID.String(),
				"action", string(e.Type),
			)
		}
	}
	return nil
}

func (t *Trail) Close() error { return nil }

// Run drains the inbox into the store until ctx is canceled. A store failure
// is logged and the loop keeps going; the trail must not take the server down.
func (t *Trail) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-t.inbox:
			if err := t.store.Append(ctx, entry); err != nil && t.logger != nil {
				t.logger.ErrorContext(ctx, "audit append failed",
					"deal_id", entry.DealID.String(),
					"action", entry.Action,
					"error", err,
				)
			}
		}
	}
}

// ListByDeal returns the recorded trail for one deal, oldest first.
func (t *Trail) ListByDeal(ctx context.Context, dealID domain.DealID) ([]Entry, error) {
	return t.store.ListByDeal(ctx, dealID)
}
