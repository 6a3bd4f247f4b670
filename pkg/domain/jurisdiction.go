package domain

import (
	"strings"

	dErrors "nilgate/pkg/domain-errors"
)

// Jurisdiction is an ISO 3166-1 alpha-2 style code driving which attestation
// types a deal requires. Which types each code maps to is policy data owned by
// the compliance package, not this type.
type Jurisdiction string

// ParseJurisdiction validates and normalizes a jurisdiction code.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return "", dErrors.New(dErrors.CodeValidation, "jurisdiction must be a two-letter code")
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return "", dErrors.New(dErrors.CodeValidation, "jurisdiction must be alphabetic")
		}
	}
	return Jurisdiction(s), nil
}

func (j Jurisdiction) String() string { return string(j) }
