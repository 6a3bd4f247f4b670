package domain

import (
	"math/big"

	dErrors "nilgate/pkg/domain-errors"
)

// Amount is a monetary value in minor units (arbitrary-precision integer).
// Amounts are immutable: every operation returns a new value and never mutates
// the receiver's backing integer.
type Amount struct {
	v *big.Int
}

// ZeroAmount is the additive identity.
func ZeroAmount() Amount { return Amount{v: big.NewInt(0)} }

// NewAmount builds an Amount from an int64 of minor units.
func NewAmount(minor int64) Amount { return Amount{v: big.NewInt(minor)} }

// ParseAmount builds an Amount from a base-10 string. Negative values parse
// fine here; validation of sign happens where the business rule lives.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, dErrors.New(dErrors.CodeValidation, "amount cannot be empty")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, dErrors.New(dErrors.CodeValidation, "amount must be a base-10 integer")
	}
	return Amount{v: v}, nil
}

func (a Amount) big() *big.Int {
	if a.v == nil {
		return big.NewInt(0)
	}
	return a.v
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.big(), b.big())}
}

// Cmp returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

// Equal reports numeric equality.
func (a Amount) Equal(b Amount) bool { return a.Cmp(b) == 0 }

// Sign returns -1, 0, or 1 for negative, zero, or positive amounts.
func (a Amount) Sign() int { return a.big().Sign() }

// IsPositive reports a > 0.
func (a Amount) IsPositive() bool { return a.Sign() > 0 }

func (a Amount) String() string { return a.big().String() }

// MarshalJSON renders the amount as a JSON string so callers never lose
// precision to float parsing.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare integer literal.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	a.v = parsed.big()
	return nil
}

// Split is one payee's share of a deal's total amount.
type Split struct {
	Payee Address `json:"payee"`
	Share Amount  `json:"share"`
}

// SplitConfig is the ordered per-payee breakdown of a deal amount.
//
// Invariant: every share is non-negative and the shares sum to the deal amount
// exactly. Rounding or remainder distribution is the caller's problem; a
// mismatched config is rejected outright.
type SplitConfig []Split

// Validate checks the split invariants against the given deal amount.
func (sc SplitConfig) Validate(total Amount) error {
	if len(sc) == 0 {
		return dErrors.New(dErrors.CodeValidation, "split configuration cannot be empty")
	}
	sum := ZeroAmount()
	for i, s := range sc {
		if s.Payee.IsZero() {
			return dErrors.Newf(dErrors.CodeValidation, "split %d is missing a payee", i)
		}
		if s.Share.Sign() < 0 {
			return dErrors.Newf(dErrors.CodeValidation, "split %d has a negative share", i)
		}
		sum = sum.Add(s.Share)
	}
	if !sum.Equal(total) {
		return dErrors.Newf(dErrors.CodeValidation,
			"split shares sum to %s but deal amount is %s", sum, total)
	}
	return nil
}

// Total returns the sum of all shares.
func (sc SplitConfig) Total() Amount {
	sum := ZeroAmount()
	for _, s := range sc {
		sum = sum.Add(s.Share)
	}
	return sum
}

// Clone returns an independent copy so stored configs cannot be mutated by
// callers holding the original slice.
func (sc SplitConfig) Clone() SplitConfig {
	if sc == nil {
		return nil
	}
	out := make(SplitConfig, len(sc))
	copy(out, sc)
	return out
}
