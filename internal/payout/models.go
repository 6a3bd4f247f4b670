// Package payout computes and executes deal settlements. A payout happens at
// most once per deal, conserves the deal amount exactly, and is only reachable
// after the compliance gate (deal VERIFIED).
package payout

import (
	"time"

	"nilgate/pkg/domain"
)

// Transfer is one payee's executed amount.
type Transfer struct {
	Payee  domain.Address `json:"payee"`
	Amount domain.Amount  `json:"amount"`
}

// Payout is the immutable record of funds actually transferred for a deal.
// Created exactly once when a deal reaches PAID; per-payee amounts equal the
// deal's split shares and sum to the deal amount.
type Payout struct {
	ID          domain.PayoutID `json:"id"`
	DealID      domain.DealID   `json:"deal_id"`
	Distributor domain.Address  `json:"distributor"`
	TxRef       string          `json:"tx_ref"`
	Transfers   []Transfer      `json:"transfers"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

// Total returns the sum of transferred amounts.
func (p *Payout) Total() domain.Amount {
	sum := domain.ZeroAmount()
	for _, t := range p.Transfers {
		sum = sum.Add(t.Amount)
	}
	return sum
}
