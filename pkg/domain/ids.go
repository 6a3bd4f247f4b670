// Package domain holds typed identifiers and value objects shared across the
// engine. IDs are uuid-backed and constructed via ParseXxx at trust boundaries
// so handlers never pass raw strings into services.
package domain

import (
	"github.com/google/uuid"

	dErrors "nilgate/pkg/domain-errors"
)

// DealID identifies a deal record internally.
type DealID uuid.UUID

// AthleteID identifies a registered athlete.
type AthleteID uuid.UUID

// PayoutID identifies an executed payout record.
type PayoutID uuid.UUID

// IssuerID identifies a registered attestation authority.
type IssuerID uuid.UUID

// NewDealID returns a fresh random deal id.
func NewDealID() DealID { return DealID(uuid.New()) }

// NewAthleteID returns a fresh random athlete id.
func NewAthleteID() AthleteID { return AthleteID(uuid.New()) }

// NewPayoutID returns a fresh random payout id.
func NewPayoutID() PayoutID { return PayoutID(uuid.New()) }

// NewIssuerID returns a fresh random issuer id.
func NewIssuerID() IssuerID { return IssuerID(uuid.New()) }

func (id DealID) String() string    { return uuid.UUID(id).String() }
func (id AthleteID) String() string { return uuid.UUID(id).String() }
func (id PayoutID) String() string  { return uuid.UUID(id).String() }
func (id IssuerID) String() string  { return uuid.UUID(id).String() }

func (id DealID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AthleteID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PayoutID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id IssuerID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// The ids cross JSON boundaries in responses and events, so they marshal as
// canonical uuid strings rather than raw bytes.

func (id DealID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id AthleteID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id PayoutID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id IssuerID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *DealID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = DealID(u)
	return nil
}

func (id *AthleteID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = AthleteID(u)
	return nil
}

func (id *PayoutID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = PayoutID(u)
	return nil
}

func (id *IssuerID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = IssuerID(u)
	return nil
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s id cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "invalid %s id", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeValidation, "%s id cannot be nil", kind)
	}
	return u, nil
}

// ParseDealID constructs a DealID from external input.
func ParseDealID(s string) (DealID, error) {
	u, err := parseUUID(s, "deal")
	return DealID(u), err
}

// ParseAthleteID constructs an AthleteID from external input.
func ParseAthleteID(s string) (AthleteID, error) {
	u, err := parseUUID(s, "athlete")
	return AthleteID(u), err
}

// ParsePayoutID constructs a PayoutID from external input.
func ParsePayoutID(s string) (PayoutID, error) {
	u, err := parseUUID(s, "payout")
	return PayoutID(u), err
}

// ParseIssuerID constructs an IssuerID from external input.
func ParseIssuerID(s string) (IssuerID, error) {
	u, err := parseUUID(s, "issuer")
	return IssuerID(u), err
}
