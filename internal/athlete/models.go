// Package athlete holds the athlete identity registry. An athlete's wallet and
// vault addresses are assigned at registration and never change; the vault is
// the on-chain account deal proceeds flow into and the subject id compliance
// attestations attach to.
package athlete

import (
	"time"

	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
)

// Athlete is an identity record.
//
// Invariants:
//   - Wallet and Vault are unique across all athletes
//   - Identity fields are immutable after registration; the vault is never
//     reassigned
type Athlete struct {
	ID        domain.AthleteID   `json:"id"`
	Wallet    domain.Address     `json:"wallet"`
	Vault     domain.Address     `json:"vault"`
	Country   domain.Jurisdiction `json:"country"`
	CreatedAt time.Time          `json:"created_at"`
}

// New validates and constructs an athlete record.
func New(wallet, vault domain.Address, country domain.Jurisdiction, now time.Time) (*Athlete, error) {
	if wallet.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "wallet address is required")
	}
	if vault.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "vault address is required")
	}
	if wallet == vault {
		return nil, dErrors.New(dErrors.CodeValidation, "wallet and vault must be distinct addresses")
	}
	if country == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "country code is required")
	}
	return &Athlete{
		ID:        domain.NewAthleteID(),
		Wallet:    wallet,
		Vault:     vault,
		Country:   country,
		CreatedAt: now,
	}, nil
}
