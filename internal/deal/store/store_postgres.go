package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nilgate/internal/deal/models"
	"nilgate/pkg/domain"
	"nilgate/pkg/platform/sentinel"
)

// PostgresStore persists deals in PostgreSQL. Status moves via an optimistic
// `UPDATE … WHERE status = $expected` so at most one concurrent transition
// wins; losers see ErrStatusConflict and re-read.
//
// Schema:
//
//	CREATE TABLE deals (
//	    id             UUID PRIMARY KEY,
//	    chain_deal_id  TEXT NOT NULL UNIQUE,
//	    vault          TEXT NOT NULL,
//	    brand          TEXT NOT NULL,
//	    amount         NUMERIC NOT NULL,
//	    terms_hash     TEXT NOT NULL,
//	    jurisdiction   TEXT NOT NULL,
//	    splits         JSONB NOT NULL,
//	    status         TEXT NOT NULL,
//	    dispute_reason TEXT NOT NULL DEFAULT '',
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    updated_at     TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

const dealColumns = `id, chain_deal_id, vault, brand, amount::text, terms_hash, jurisdiction, splits, status, dispute_reason, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, d *models.Deal) error {
	splits, err := json.Marshal(d.Splits)
	if err != nil {
		return fmt.Errorf("encode splits: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO deals (id, chain_deal_id, vault, brand, amount, terms_hash, jurisdiction, splits, status, dispute_reason, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID.String(), d.ChainID.String(), d.Vault.String(), d.Brand.String(),
		d.Amount.String(), d.TermsHash.String(), d.Jurisdiction.String(),
		splits, d.Status.String(), d.DisputeReason, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create deal: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.DealID) (*models.Deal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE id = $1`, id.String())
	return scanDeal(row)
}

func (s *PostgresStore) GetByChainID(ctx context.Context, chainID domain.ChainDealID) (*models.Deal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE chain_deal_id = $1`, chainID.String())
	return scanDeal(row)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.DealID, from, to domain.DealStatus, disputeReason string, at time.Time) (*models.Deal, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE deals
		 SET status = $1, dispute_reason = $2, updated_at = $3
		 WHERE id = $4 AND status = $5
		 RETURNING `+dealColumns,
		to.String(), disputeReason, at, id.String(), from.String(),
	)
	d, err := scanDeal(row)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	// Either the deal is gone or another transition won the race.
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, sentinel.ErrStatusConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (*models.Deal, error) {
	var (
		d                                 models.Deal
		id, chainID, vault, brand, amount string
		termsHash, jurisdiction, status   string
		splits                            []byte
	)
	err := row.Scan(&id, &chainID, &vault, &brand, &amount, &termsHash,
		&jurisdiction, &splits, &status, &d.DisputeReason, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan deal: %w", err)
	}

	dealID, err := domain.ParseDealID(id)
	if err != nil {
		return nil, fmt.Errorf("scan deal: corrupt id %q", id)
	}
	amt, err := domain.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("scan deal: corrupt amount %q", amount)
	}
	if err := json.Unmarshal(splits, &d.Splits); err != nil {
		return nil, fmt.Errorf("scan deal: decode splits: %w", err)
	}

	d.ID = dealID
	d.ChainID = domain.ChainDealID(chainID)
	d.Vault = domain.Address(vault)
	d.Brand = domain.Address(brand)
	d.Amount = amt
	d.TermsHash = domain.TermsHash(termsHash)
	d.Jurisdiction = domain.Jurisdiction(jurisdiction)
	d.Status = domain.DealStatus(status)
	return &d, nil
}
