// Package issuer manages attestation authorities: registration, credential
// verification, and the bearer tokens attestation submissions authenticate
// with. Which issuers a jurisdiction trusts is separate policy data owned by
// the compliance package.
package issuer

import (
	"time"

	"nilgate/pkg/domain"
)

// Issuer is a registered attestation authority. The API secret is stored only
// as a bcrypt hash.
type Issuer struct {
	ID         domain.IssuerID `json:"id"`
	Name       string          `json:"name"`
	SecretHash []byte          `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}
