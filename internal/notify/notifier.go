// Package notify hands completed payouts to the payment-message pipeline. The
// ISO 20022 generator is an external collaborator; this package builds the
// credit-transfer envelope it ingests and delivers it fire-and-forget. A
// notification failure never rolls back a payout.
package notify

import (
	"context"
	"log/slog"
	"time"

	"nilgate/internal/payout"
)

// PayoutNotifier is invoked by the orchestrator only after a deal is PAID.
type PayoutNotifier interface {
	NotifyPayout(ctx context.Context, p *payout.Payout) error
}

// LoggingNotifier is the default sink when no payment pipeline is configured:
// it renders the envelope and logs it.
type LoggingNotifier struct {
	logger *slog.Logger
}

func NewLoggingNotifier(logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

func (n *LoggingNotifier) NotifyPayout(ctx context.Context, p *payout.Payout) error {
	env := BuildCreditTransfer(p, time.Now().UTC())
	if n.logger != nil {
		n.logger.InfoContext(ctx, "payout notification",
			"message_id", env.MessageID,
			"payout_id", p.ID.String(),
			"deal_id", p.DealID.String(),
			"transactions", len(env.Transactions),
			"control_sum", env.ControlSum,
		)
	}
	return nil
}
