package notify

import (
	"fmt"
	"time"

	"nilgate/internal/payout"
)

// CreditTransferEnvelope is the pacs.008-shaped payload handed to the external
// ISO 20022 message generator. The generator owns XML rendering and scheme
// details; the engine only guarantees the figures: one transaction per payee
// and a control sum equal to the deal amount.
type CreditTransferEnvelope struct {
	MessageID    string              `json:"message_id"`
	CreatedAt    time.Time           `json:"created_at"`
	TxRef        string              `json:"tx_ref"`
	ControlSum   string              `json:"control_sum"`
	Transactions []CreditTransaction `json:"transactions"`
}

// CreditTransaction is one payee's leg of the transfer.
type CreditTransaction struct {
	EndToEndID string `json:"end_to_end_id"`
	Creditor   string `json:"creditor"`
	Amount     string `json:"amount"`
}

// BuildCreditTransfer maps an executed payout onto the envelope.
func BuildCreditTransfer(p *payout.Payout, at time.Time) *CreditTransferEnvelope {
	env := &CreditTransferEnvelope{
		MessageID:    "NILGATE-" + p.ID.String(),
		CreatedAt:    at,
		TxRef:        p.TxRef,
		ControlSum:   p.Total().String(),
		Transactions: make([]CreditTransaction, len(p.Transfers)),
	}
	for i, t := range p.Transfers {
		env.Transactions[i] = CreditTransaction{
			EndToEndID: fmt.Sprintf("%s-%d", p.ID.String(), i),
			Creditor:   t.Payee.String(),
			Amount:     t.Amount.String(),
		}
	}
	return env
}
