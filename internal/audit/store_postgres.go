package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"nilgate/pkg/domain"
)

// PostgresStore persists the trail in PostgreSQL. The serial column fixes the
// listing order even when entries share a timestamp.
//
// Schema:
//
//	CREATE TABLE audit_trail (
//	    seq           BIGSERIAL PRIMARY KEY,
//	    ts            TIMESTAMPTZ NOT NULL,
//	    deal_id       UUID NOT NULL,
//	    chain_deal_id TEXT NOT NULL,
//	    action        TEXT NOT NULL,
//	    status        TEXT NOT NULL,
//	    reason        TEXT NOT NULL DEFAULT '',
//	    request_id    TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX audit_trail_deal_idx ON audit_trail (deal_id, seq);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_trail (ts, deal_id, chain_deal_id, action, status, reason, request_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.Timestamp, e.DealID.String(), e.ChainDealID.String(), e.Action, string(e.Status), e.Reason, e.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByDeal(ctx context.Context, dealID domain.DealID) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ts, deal_id, chain_deal_id, action, status, reason, request_id
		 FROM audit_trail WHERE deal_id = $1 ORDER BY seq`,
		dealID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                   Entry
			id, chainID, status string
		)
		if err := rows.Scan(&e.Timestamp, &id, &chainID, &e.Action, &status, &e.Reason, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		parsed, err := domain.ParseDealID(id)
		if err != nil {
			return nil, fmt.Errorf("list audit entries: corrupt deal id %q", id)
		}
		e.DealID = parsed
		e.ChainDealID = domain.ChainDealID(chainID)
		e.Status = domain.DealStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}
