package athlete

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

// PostgresStore persists athletes in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE athletes (
//	    id         UUID PRIMARY KEY,
//	    wallet     TEXT NOT NULL UNIQUE,
//	    vault      TEXT NOT NULL UNIQUE,
//	    country    TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Save(ctx context.Context, a *Athlete) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO athletes (id, wallet, vault, country, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID.String(), a.Wallet.String(), a.Vault.String(), a.Country.String(), a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save athlete: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.AthleteID) (*Athlete, error) {
	return s.scanOne(ctx,
		`SELECT id, wallet, vault, country, created_at FROM athletes WHERE id = $1`,
		id.String())
}

func (s *PostgresStore) FindByVault(ctx context.Context, vault domain.Address) (*Athlete, error) {
	return s.scanOne(ctx,
		`SELECT id, wallet, vault, country, created_at FROM athletes WHERE vault = $1`,
		vault.String())
}

func (s *PostgresStore) scanOne(ctx context.Context, query string, arg any) (*Athlete, error) {
	var (
		a                      Athlete
		id, wallet, vault, cc  string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(&id, &wallet, &vault, &cc, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find athlete: %w", err)
	}
	athleteID, err := domain.ParseAthleteID(id)
	if err != nil {
		return nil, fmt.Errorf("find athlete: corrupt id %q", id)
	}
	a.ID = athleteID
	a.Wallet = domain.Address(wallet)
	a.Vault = domain.Address(vault)
	a.Country = domain.Jurisdiction(cc)
	return &a, nil
}
