package attestation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nilgate/pkg/domain"
)

// PostgresStore persists attestations in PostgreSQL. The composite primary key
// enforces the (subject, type, issuer) uniqueness invariant; re-issuance is an
// upsert.
//
// Schema:
//
//	CREATE TABLE attestations (
//	    subject_kind TEXT NOT NULL,
//	    subject_id   TEXT NOT NULL,
//	    type         TEXT NOT NULL,
//	    issuer       TEXT NOT NULL,
//	    payload_hash TEXT NOT NULL,
//	    issued_at    TIMESTAMPTZ NOT NULL,
//	    valid_until  TIMESTAMPTZ,
//	    PRIMARY KEY (subject_kind, subject_id, type, issuer)
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Put(ctx context.Context, a *Attestation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attestations (subject_kind, subject_id, type, issuer, payload_hash, issued_at, valid_until)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (subject_kind, subject_id, type, issuer)
		 DO UPDATE SET payload_hash = EXCLUDED.payload_hash,
		               issued_at    = EXCLUDED.issued_at,
		               valid_until  = EXCLUDED.valid_until`,
		a.Subject.Kind.String(), a.Subject.ID, a.Type.String(), a.Issuer,
		a.PayloadHash, a.IssuedAt, a.ValidUntil,
	)
	if err != nil {
		return fmt.Errorf("put attestation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, subject domain.Subject, typ domain.AttestationType) ([]*Attestation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT subject_kind, subject_id, type, issuer, payload_hash, issued_at, valid_until
		 FROM attestations
		 WHERE subject_kind = $1 AND subject_id = $2 AND type = $3`,
		subject.Kind.String(), subject.ID, typ.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query attestations: %w", err)
	}
	defer rows.Close()

	var out []*Attestation
	for rows.Next() {
		var (
			a          Attestation
			kind, typS string
			validUntil *time.Time
		)
		if err := rows.Scan(&kind, &a.Subject.ID, &typS, &a.Issuer, &a.PayloadHash, &a.IssuedAt, &validUntil); err != nil {
			return nil, fmt.Errorf("scan attestation: %w", err)
		}
		a.Subject.Kind = domain.SubjectKind(kind)
		a.Type = domain.AttestationType(typS)
		a.ValidUntil = validUntil
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query attestations: %w", err)
	}
	return out, nil
}
