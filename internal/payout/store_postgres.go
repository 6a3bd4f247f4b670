package payout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nilgate/pkg/domain"
	"nilgate/pkg/platform/sentinel"
)

// PostgresStore persists payouts in PostgreSQL. The unique index on deal_id is
// the database-level at-most-once guard.
//
// Schema:
//
//	CREATE TABLE payouts (
//	    id          UUID PRIMARY KEY,
//	    deal_id     UUID NOT NULL UNIQUE,
//	    distributor TEXT NOT NULL,
//	    tx_ref      TEXT NOT NULL,
//	    transfers   JSONB NOT NULL,
//	    executed_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, p *Payout) error {
	transfers, err := json.Marshal(p.Transfers)
	if err != nil {
		return fmt.Errorf("encode transfers: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO payouts (id, deal_id, distributor, tx_ref, transfers, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID.String(), p.DealID.String(), p.Distributor.String(), p.TxRef, transfers, p.ExecutedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create payout: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByDeal(ctx context.Context, dealID domain.DealID) (*Payout, error) {
	var (
		p         Payout
		id, deal  string
		dist      string
		transfers []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, deal_id, distributor, tx_ref, transfers, executed_at
		 FROM payouts WHERE deal_id = $1`, dealID.String(),
	).Scan(&id, &deal, &dist, &p.TxRef, &transfers, &p.ExecutedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find payout: %w", err)
	}

	payoutID, err := domain.ParsePayoutID(id)
	if err != nil {
		return nil, fmt.Errorf("find payout: corrupt id %q", id)
	}
	dealUUID, err := domain.ParseDealID(deal)
	if err != nil {
		return nil, fmt.Errorf("find payout: corrupt deal id %q", deal)
	}
	if err := json.Unmarshal(transfers, &p.Transfers); err != nil {
		return nil, fmt.Errorf("find payout: decode transfers: %w", err)
	}
	p.ID = payoutID
	p.DealID = dealUUID
	p.Distributor = domain.Address(dist)
	return &p, nil
}
