//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilgate/pkg/domain"
	"nilgate/pkg/testutil/containers"
)

const auditTrailSchema = `
CREATE TABLE IF NOT EXISTS audit_trail (
    seq           BIGSERIAL PRIMARY KEY,
    ts            TIMESTAMPTZ NOT NULL,
    deal_id       UUID NOT NULL,
    chain_deal_id TEXT NOT NULL,
    action        TEXT NOT NULL,
    status        TEXT NOT NULL,
    reason        TEXT NOT NULL DEFAULT '',
    request_id    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_trail_deal_idx ON audit_trail (deal_id, seq)`

// =============================================================================
// Audit Trail Postgres Store Integration Suite
// =============================================================================

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Exec(s.T(), auditTrailSchema)
	s.store = NewPostgresStore(s.pg.Pool)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.pg.Pool.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Exec(s.T(), "TRUNCATE audit_trail")
}

func (s *PostgresStoreSuite) entry(dealID domain.DealID, action string, status domain.DealStatus) Entry {
	return Entry{
		Timestamp:   s.now,
		DealID:      dealID,
		ChainDealID: "nil-1",
		Action:      action,
		Status:      status,
	}
}

func (s *PostgresStoreSuite) TestAppendAndList_PreservesOrder() {
	ctx := context.Background()
	dealID := domain.NewDealID()

	// Same timestamp on every entry: only insertion order may decide.
	s.Require().NoError(s.store.Append(ctx, s.entry(dealID, "deal_created", domain.StatusCreated)))
	s.Require().NoError(s.store.Append(ctx, s.entry(dealID, "deal_approved", domain.StatusApproved)))
	s.Require().NoError(s.store.Append(ctx, s.entry(dealID, "deal_verified", domain.StatusVerified)))

	entries, err := s.store.ListByDeal(ctx, dealID)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("deal_created", entries[0].Action)
	s.Equal("deal_approved", entries[1].Action)
	s.Equal("deal_verified", entries[2].Action)
	s.Equal(dealID, entries[0].DealID)
	s.Equal(domain.ChainDealID("nil-1"), entries[0].ChainDealID)
}

func (s *PostgresStoreSuite) TestListByDeal_IsolatesDeals() {
	ctx := context.Background()
	dealA := domain.NewDealID()
	dealB := domain.NewDealID()

	s.Require().NoError(s.store.Append(ctx, s.entry(dealA, "deal_created", domain.StatusCreated)))
	disputed := s.entry(dealB, "deal_disputed", domain.StatusDisputed)
	disputed.Reason = "terms contested"
	s.Require().NoError(s.store.Append(ctx, disputed))

	entries, err := s.store.ListByDeal(ctx, dealB)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("terms contested", entries[0].Reason)

	none, err := s.store.ListByDeal(ctx, domain.NewDealID())
	s.Require().NoError(err)
	s.Empty(none)
}
