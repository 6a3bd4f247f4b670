// Package chain defines the narrow contract the engine requires of the
// on-chain collaborator. The chain is the source of truth for verification:
// VERIFIED is only set after a positive ConfirmOnChain answer, never
// optimistically.
package chain

import (
	"context"

	"nilgate/pkg/domain"
)

//go:generate mockgen -source=client.go -destination=mocks/client_mock.go -package=mocks Client

// MintParams describes the deal record to mint on chain.
type MintParams struct {
	Vault        domain.Address
	Brand        domain.Address
	Amount       domain.Amount
	TermsHash    domain.TermsHash
	Jurisdiction domain.Jurisdiction
}

// MintResult is the chain's handle for a minted deal record.
type MintResult struct {
	ChainDealID domain.ChainDealID
	Contract    domain.Address
}

// Receipt confirms a completed distribution.
type Receipt struct {
	TxRef       string
	Distributor domain.Address
}

// Client is the chain-interaction collaborator. All calls must respect ctx
// deadlines; a deadline hit surfaces as ctx.Err(), which callers translate to
// UpstreamTimeout.
type Client interface {
	// MintDealRecord creates the on-chain deal record and returns its handle.
	MintDealRecord(ctx context.Context, p MintParams) (*MintResult, error)

	// Distribute transfers the exact per-payee shares for a deal. The engine
	// never retries internally; the caller retries through the AlreadyPaid
	// guard.
	Distribute(ctx context.Context, chainID domain.ChainDealID, splits domain.SplitConfig) (*Receipt, error)

	// ConfirmOnChain reports whether the deal record is confirmed on chain.
	ConfirmOnChain(ctx context.Context, chainID domain.ChainDealID) (bool, error)
}
