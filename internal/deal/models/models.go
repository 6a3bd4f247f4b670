// Package models holds the deal aggregate. A deal is the unit everything else
// gates on: compliance approval, on-chain verification, and payout all key off
// its status, and its split configuration is the contract the payout engine
// must honor to the minor unit.
package models

import (
	"time"

	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
)

// Deal is a Name-Image-Likeness agreement between an athlete and a brand.
//
// Invariants:
//   - ChainID is globally unique and immutable once assigned
//   - Amount equals the sum of split shares at all times
//   - Status only changes through the ledger's Transition operation
type Deal struct {
	ID            domain.DealID       `json:"id"`
	ChainID       domain.ChainDealID  `json:"chain_deal_id"`
	Vault         domain.Address      `json:"vault"`
	Brand         domain.Address      `json:"brand"`
	Amount        domain.Amount       `json:"amount"`
	TermsHash     domain.TermsHash    `json:"terms_hash"`
	Jurisdiction  domain.Jurisdiction `json:"jurisdiction"`
	Splits        domain.SplitConfig  `json:"splits"`
	Status        domain.DealStatus   `json:"status"`
	DisputeReason string              `json:"dispute_reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// CreateParams carries everything needed to construct a deal. The chain id
// comes from the chain collaborator's mint call; the ledger never invents it.
type CreateParams struct {
	ChainID      domain.ChainDealID
	Vault        domain.Address
	Brand        domain.Address
	Amount       domain.Amount
	TermsHash    domain.TermsHash
	Jurisdiction domain.Jurisdiction
	Splits       domain.SplitConfig
}

// New validates params and constructs a deal in CREATED status.
func New(p CreateParams, now time.Time) (*Deal, error) {
	if p.ChainID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "chain deal id is required")
	}
	if p.Vault.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "athlete vault is required")
	}
	if p.Brand.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "brand address is required")
	}
	if p.TermsHash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "terms hash is required")
	}
	if p.Jurisdiction == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "jurisdiction is required")
	}
	if !p.Amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "deal amount must be positive")
	}
	if err := p.Splits.Validate(p.Amount); err != nil {
		return nil, err
	}
	return &Deal{
		ID:           domain.NewDealID(),
		ChainID:      p.ChainID,
		Vault:        p.Vault,
		Brand:        p.Brand,
		Amount:       p.Amount,
		TermsHash:    p.TermsHash,
		Jurisdiction: p.Jurisdiction,
		Splits:       p.Splits.Clone(),
		Status:       domain.StatusCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Clone returns an independent copy so stores can hand out snapshots.
func (d *Deal) Clone() *Deal {
	clone := *d
	clone.Splits = d.Splits.Clone()
	return &clone
}
