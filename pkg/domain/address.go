package domain

import (
	"strings"

	dErrors "nilgate/pkg/domain-errors"
)

// Address is an on-chain account address (athlete wallet, vault, brand
// counterparty, split payee). Stored lowercase-normalized so equality and
// uniqueness checks are byte comparisons.
type Address string

// ParseAddress validates and normalizes an external address string. The engine
// treats addresses as opaque 0x-prefixed hex; it never derives keys from them.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "address cannot be empty")
	}
	if !strings.HasPrefix(s, "0x") || len(s) != 42 {
		return "", dErrors.New(dErrors.CodeValidation, "address must be 0x-prefixed 20-byte hex")
	}
	for _, c := range s[2:] {
		if !isHex(c) {
			return "", dErrors.New(dErrors.CodeValidation, "address contains non-hex characters")
		}
	}
	return Address(strings.ToLower(s)), nil
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (a Address) String() string { return string(a) }

func (a Address) IsZero() bool { return a == "" }

// ChainDealID is the chain-linked deal identifier. It is assigned once at
// mint time, globally unique, and immutable for the life of the deal.
type ChainDealID string

// ParseChainDealID validates an external chain deal identifier.
func ParseChainDealID(s string) (ChainDealID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "chain deal id cannot be empty")
	}
	return ChainDealID(s), nil
}

func (c ChainDealID) String() string { return string(c) }

// TermsHash is the opaque content hash of a deal's terms document. The engine
// stores it for integrity checks and never interprets it.
type TermsHash string

// ParseTermsHash validates an external terms hash. Any non-empty hex string is
// accepted; the hash scheme belongs to the caller.
func ParseTermsHash(s string) (TermsHash, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "terms hash cannot be empty")
	}
	return TermsHash(strings.ToLower(strings.TrimPrefix(s, "0x"))), nil
}

func (t TermsHash) String() string { return string(t) }
