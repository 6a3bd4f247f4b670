package compliance

import (
	"time"

	"nilgate/pkg/domain"
)

// Input identifies what to evaluate: the athlete's vault and the deal's chain
// id are both attestation subjects; the jurisdiction selects the policy.
type Input struct {
	Vault        domain.Address
	ChainDealID  domain.ChainDealID
	Jurisdiction domain.Jurisdiction
}

// Result is the evaluator's verdict. Non-compliance is a normal outcome, not
// an error: Missing lists the unsatisfied types and Reasons carries one
// human-readable line per failure.
type Result struct {
	Compliant     bool                     `json:"compliant"`
	Missing       []domain.AttestationType `json:"missing,omitempty"`
	Reasons       []string                 `json:"reasons,omitempty"`
	PolicyVersion string                   `json:"policy_version"`
	EvaluatedAt   time.Time                `json:"evaluated_at"`
}
