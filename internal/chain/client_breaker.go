package chain

import (
	"context"
	"fmt"
	"log/slog"

	"nilgate/pkg/domain"
	"nilgate/pkg/platform/circuit"
	"nilgate/pkg/platform/sentinel"
)

// BreakerClient wraps a Client with a circuit breaker so a flapping chain RPC
// degrades to an immediate ErrUnavailable instead of stacking timeouts.
// Context cancellation counts as a failure: a chain that cannot answer within
// the deadline is down as far as callers care.
type BreakerClient struct {
	inner   Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakerClient(inner Client, breaker *circuit.Breaker, logger *slog.Logger) *BreakerClient {
	return &BreakerClient{inner: inner, breaker: breaker, logger: logger}
}

func (c *BreakerClient) MintDealRecord(ctx context.Context, p MintParams) (*MintResult, error) {
	if c.breaker.IsOpen() {
		return nil, c.openErr()
	}
	res, err := c.inner.MintDealRecord(ctx, p)
	c.record(ctx, err)
	return res, err
}

func (c *BreakerClient) Distribute(ctx context.Context, chainID domain.ChainDealID, splits domain.SplitConfig) (*Receipt, error) {
	if c.breaker.IsOpen() {
		return nil, c.openErr()
	}
	res, err := c.inner.Distribute(ctx, chainID, splits)
	c.record(ctx, err)
	return res, err
}

func (c *BreakerClient) ConfirmOnChain(ctx context.Context, chainID domain.ChainDealID) (bool, error) {
	if c.breaker.IsOpen() {
		return false, c.openErr()
	}
	ok, err := c.inner.ConfirmOnChain(ctx, chainID)
	c.record(ctx, err)
	return ok, err
}

func (c *BreakerClient) openErr() error {
	return fmt.Errorf("chain client circuit %s open: %w", c.breaker.Name(), sentinel.ErrUnavailable)
}

func (c *BreakerClient) record(ctx context.Context, err error) {
	if err == nil {
		c.breaker.RecordSuccess()
		return
	}
	_, change := c.breaker.RecordFailure()
	if change.Opened && c.logger != nil {
		c.logger.WarnContext(ctx, "chain client circuit opened",
			"breaker", c.breaker.Name(),
			"error", err,
		)
	}
}
