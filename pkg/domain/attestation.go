package domain

import dErrors "nilgate/pkg/domain-errors"

// AttestationType classifies a compliance fact.
type AttestationType string

const (
	AttestationKYC          AttestationType = "KYC"
	AttestationKYB          AttestationType = "KYB"
	AttestationAML          AttestationType = "AML"
	AttestationSanctions    AttestationType = "SANCTIONS"
	AttestationDeliverables AttestationType = "DELIVERABLES"
	AttestationTax          AttestationType = "TAX"
)

var validAttestationTypes = map[AttestationType]bool{
	AttestationKYC:          true,
	AttestationKYB:          true,
	AttestationAML:          true,
	AttestationSanctions:    true,
	AttestationDeliverables: true,
	AttestationTax:          true,
}

// ParseAttestationType constructs an AttestationType from external input.
func ParseAttestationType(s string) (AttestationType, error) {
	t := AttestationType(s)
	if !validAttestationTypes[t] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown attestation type %q", s)
	}
	return t, nil
}

func (t AttestationType) String() string { return string(t) }

// DealScopedOnly reports whether attestations of this type may only attach to
// a deal subject. Deliverables lapse per deal and never carry over from the
// athlete.
func (t AttestationType) DealScopedOnly() bool {
	return t == AttestationDeliverables
}

// SubjectKind says what an attestation attaches to.
type SubjectKind string

const (
	SubjectAthlete SubjectKind = "ATHLETE"
	SubjectDeal    SubjectKind = "DEAL"
)

// ParseSubjectKind constructs a SubjectKind from external input.
func ParseSubjectKind(s string) (SubjectKind, error) {
	switch SubjectKind(s) {
	case SubjectAthlete:
		return SubjectAthlete, nil
	case SubjectDeal:
		return SubjectDeal, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown subject kind %q", s)
}

func (k SubjectKind) String() string { return string(k) }

// Subject identifies the entity an attestation attaches to: an athlete's vault
// address or a deal's chain-linked id, both kept as opaque strings here.
type Subject struct {
	Kind SubjectKind `json:"kind"`
	ID   string      `json:"id"`
}

// AthleteSubject builds a subject for an athlete vault.
func AthleteSubject(vault Address) Subject {
	return Subject{Kind: SubjectAthlete, ID: vault.String()}
}

// DealSubject builds a subject for a chain-linked deal id.
func DealSubject(chainID ChainDealID) Subject {
	return Subject{Kind: SubjectDeal, ID: chainID.String()}
}

// Validate checks the subject is fully specified.
func (s Subject) Validate() error {
	if _, err := ParseSubjectKind(string(s.Kind)); err != nil {
		return err
	}
	if s.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "attestation subject id cannot be empty")
	}
	return nil
}
