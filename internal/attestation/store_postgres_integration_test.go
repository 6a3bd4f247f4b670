//go:build integration

package attestation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilgate/pkg/domain"
	"nilgate/pkg/testutil/containers"
)

const attestationsSchema = `
CREATE TABLE IF NOT EXISTS attestations (
    subject_kind TEXT NOT NULL,
    subject_id   TEXT NOT NULL,
    type         TEXT NOT NULL,
    issuer       TEXT NOT NULL,
    payload_hash TEXT NOT NULL,
    issued_at    TIMESTAMPTZ NOT NULL,
    valid_until  TIMESTAMPTZ,
    PRIMARY KEY (subject_kind, subject_id, type, issuer)
)`

// =============================================================================
// Attestation Postgres Store Integration Suite
// =============================================================================

type PostgresStoreSuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	store   *PostgresStore
	subject domain.Subject
	now     time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Exec(s.T(), attestationsSchema)
	s.store = NewPostgresStore(s.pg.Pool)
	s.subject = domain.AthleteSubject("0x1111111111111111111111111111111111111111")
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.pg.Pool.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Exec(s.T(), "TRUNCATE attestations")
}

func (s *PostgresStoreSuite) record(issuer, hash string) *Attestation {
	return &Attestation{
		Subject:     s.subject,
		Type:        domain.AttestationKYC,
		Issuer:      issuer,
		PayloadHash: hash,
		IssuedAt:    s.now,
	}
}

func (s *PostgresStoreSuite) TestPut_UpsertSemantics() {
	ctx := context.Background()

	s.Require().NoError(s.store.Put(ctx, s.record("verifier-a", "hash-1")))
	s.Require().NoError(s.store.Put(ctx, s.record("verifier-b", "hash-1")))

	// Re-issuance from the same issuer replaces, never duplicates.
	expiry := s.now.Add(24 * time.Hour)
	updated := s.record("verifier-a", "hash-2")
	updated.ValidUntil = &expiry
	s.Require().NoError(s.store.Put(ctx, updated))

	records, err := s.store.Query(ctx, s.subject, domain.AttestationKYC)
	s.Require().NoError(err)
	s.Require().Len(records, 2)

	byIssuer := make(map[string]*Attestation, len(records))
	for _, r := range records {
		byIssuer[r.Issuer] = r
	}
	s.Equal("hash-2", byIssuer["verifier-a"].PayloadHash)
	s.Require().NotNil(byIssuer["verifier-a"].ValidUntil)
	s.True(byIssuer["verifier-a"].ValidUntil.Equal(expiry))
	s.Equal("hash-1", byIssuer["verifier-b"].PayloadHash)
	s.Nil(byIssuer["verifier-b"].ValidUntil)
}

func (s *PostgresStoreSuite) TestQuery_FiltersBySubjectAndType() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, s.record("verifier-a", "hash-1")))

	tax := s.record("verifier-a", "hash-tax")
	tax.Type = domain.AttestationTax
	s.Require().NoError(s.store.Put(ctx, tax))

	deliverables := &Attestation{
		Subject:     domain.DealSubject("nil-1"),
		Type:        domain.AttestationDeliverables,
		Issuer:      "verifier-a",
		PayloadHash: "hash-d",
		IssuedAt:    s.now,
	}
	s.Require().NoError(s.store.Put(ctx, deliverables))

	kyc, err := s.store.Query(ctx, s.subject, domain.AttestationKYC)
	s.Require().NoError(err)
	s.Len(kyc, 1)

	dealScoped, err := s.store.Query(ctx, domain.DealSubject("nil-1"), domain.AttestationDeliverables)
	s.Require().NoError(err)
	s.Len(dealScoped, 1)

	none, err := s.store.Query(ctx, domain.DealSubject("nil-2"), domain.AttestationDeliverables)
	s.Require().NoError(err)
	s.Empty(none)
}
