// Package compliance decides whether a deal's attestation set satisfies its
// jurisdiction's requirements. The jurisdiction-to-requirements mapping is
// versioned configuration data, not code: jurisdictions and their requirements
// change independently of releases.
package compliance

import (
	"encoding/json"
	"fmt"
	"os"

	"nilgate/pkg/domain"
	platformstrings "nilgate/pkg/platform/strings"
)

// JurisdictionPolicy names the attestation types a jurisdiction requires and
// the authorities whose attestations it accepts. A "*" entry in TrustedIssuers
// trusts any issuer.
type JurisdictionPolicy struct {
	Required       []domain.AttestationType `json:"required"`
	TrustedIssuers []string                 `json:"trusted_issuers"`
}

// Trusts reports whether the jurisdiction accepts attestations from issuer.
func (p JurisdictionPolicy) Trusts(issuer string) bool {
	for _, t := range p.TrustedIssuers {
		if t == "*" || t == issuer {
			return true
		}
	}
	return false
}

// PolicySet is the full versioned policy document. Unknown jurisdictions fall
// back to Default, which carries the strictest requirement set.
type PolicySet struct {
	Version       string                                     `json:"version"`
	Jurisdictions map[domain.Jurisdiction]JurisdictionPolicy `json:"jurisdictions"`
	Default       JurisdictionPolicy                         `json:"default"`
}

// For returns the policy governing a jurisdiction.
func (ps *PolicySet) For(j domain.Jurisdiction) JurisdictionPolicy {
	if p, ok := ps.Jurisdictions[j]; ok {
		return p
	}
	return ps.Default
}

// DefaultPolicySet is the compiled-in fallback used when no policy file is
// configured. US deals need identity and tax facts; everywhere else adds AML
// and sanctions screening.
func DefaultPolicySet() *PolicySet {
	return &PolicySet{
		Version: "builtin-1",
		Jurisdictions: map[domain.Jurisdiction]JurisdictionPolicy{
			"US": {
				Required:       []domain.AttestationType{domain.AttestationKYC, domain.AttestationTax},
				TrustedIssuers: []string{"*"},
			},
		},
		Default: JurisdictionPolicy{
			Required: []domain.AttestationType{
				domain.AttestationKYC,
				domain.AttestationTax,
				domain.AttestationAML,
				domain.AttestationSanctions,
			},
			TrustedIssuers: []string{"*"},
		},
	}
}

// LoadPolicyFile reads a policy document from disk.
func LoadPolicyFile(path string) (*PolicySet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var ps PolicySet
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if ps.Version == "" {
		return nil, fmt.Errorf("policy file missing version")
	}
	for j, p := range ps.Jurisdictions {
		if len(p.Required) == 0 {
			return nil, fmt.Errorf("policy for %s lists no required attestation types", j)
		}
		p.TrustedIssuers = platformstrings.DedupeAndTrim(p.TrustedIssuers)
		ps.Jurisdictions[j] = p
	}
	if len(ps.Default.Required) == 0 {
		return nil, fmt.Errorf("policy default lists no required attestation types")
	}
	ps.Default.TrustedIssuers = platformstrings.DedupeAndTrim(ps.Default.TrustedIssuers)
	return &ps, nil
}
