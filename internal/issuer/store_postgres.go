package issuer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nilgate/pkg/domain"
	"nilgate/pkg/platform/sentinel"
)

// PostgresStore persists issuers in PostgreSQL so registrations survive a
// restart alongside the deals they attest for.
//
// Schema:
//
//	CREATE TABLE issuers (
//	    id          UUID PRIMARY KEY,
//	    name        TEXT NOT NULL UNIQUE,
//	    secret_hash BYTEA NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Save(ctx context.Context, i *Issuer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO issuers (id, name, secret_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
		i.ID.String(), i.Name, i.SecretHash, i.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save issuer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (*Issuer, error) {
	return s.scanOne(ctx,
		`SELECT id, name, secret_hash, created_at FROM issuers WHERE name = $1`,
		name)
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.IssuerID) (*Issuer, error) {
	return s.scanOne(ctx,
		`SELECT id, name, secret_hash, created_at FROM issuers WHERE id = $1`,
		id.String())
}

func (s *PostgresStore) scanOne(ctx context.Context, query string, arg any) (*Issuer, error) {
	var (
		i  Issuer
		id string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(&id, &i.Name, &i.SecretHash, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issuer: %w", err)
	}
	issuerID, err := domain.ParseIssuerID(id)
	if err != nil {
		return nil, fmt.Errorf("find issuer: corrupt id %q", id)
	}
	i.ID = issuerID
	return &i, nil
}
