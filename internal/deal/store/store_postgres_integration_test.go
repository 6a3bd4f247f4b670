//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilgate/internal/deal/models"
	"nilgate/pkg/domain"
	"nilgate/pkg/platform/sentinel"
	"nilgate/pkg/testutil/containers"
)

const dealsSchema = `
CREATE TABLE IF NOT EXISTS deals (
    id             UUID PRIMARY KEY,
    chain_deal_id  TEXT NOT NULL UNIQUE,
    vault          TEXT NOT NULL,
    brand          TEXT NOT NULL,
    amount         NUMERIC NOT NULL,
    terms_hash     TEXT NOT NULL,
    jurisdiction   TEXT NOT NULL,
    splits         JSONB NOT NULL,
    status         TEXT NOT NULL,
    dispute_reason TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
)`

// =============================================================================
// Deal Postgres Store Integration Suite
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
	s.pg.Exec(s.T(), dealsSchema)
	s.store = NewPostgresStore(s.pg.Pool)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.pg.Pool.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Exec(s.T(), "TRUNCATE deals")
}

func (s *PostgresStoreSuite) deal(chainID string) *models.Deal {
	return &models.Deal{
		ID:           domain.NewDealID(),
		ChainID:      domain.ChainDealID(chainID),
		Vault:        domain.Address("0x1111111111111111111111111111111111111111"),
		Brand:        domain.Address("0x2222222222222222222222222222222222222222"),
		Amount:       domain.NewAmount(1000),
		TermsHash:    "deadbeef",
		Jurisdiction: "US",
		Splits: domain.SplitConfig{
			{Payee: domain.Address("0x3333333333333333333333333333333333333333"), Share: domain.NewAmount(1000)},
		},
		Status:    domain.StatusCreated,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	d := s.deal("nil-1")
	s.Require().NoError(s.store.Create(ctx, d))

	got, err := s.store.Get(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(d.ID, got.ID)
	s.Equal(d.ChainID, got.ChainID)
	s.True(got.Amount.Equal(d.Amount))
	s.Require().Len(got.Splits, 1)
	s.True(got.Splits[0].Share.Equal(domain.NewAmount(1000)))
	s.Equal(domain.StatusCreated, got.Status)

	byChain, err := s.store.GetByChainID(ctx, "nil-1")
	s.Require().NoError(err)
	s.Equal(d.ID, byChain.ID)
}

func (s *PostgresStoreSuite) TestCreate_DuplicateChainID() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.deal("nil-dup")))

	err := s.store.Create(ctx, s.deal("nil-dup"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestGet_Unknown() {
	_, err := s.store.Get(context.Background(), domain.NewDealID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateStatus_CheckAndSet() {
	ctx := context.Background()
	d := s.deal("nil-cas")
	s.Require().NoError(s.store.Create(ctx, d))

	s.Run("expected status wins", func() {
		updated, err := s.store.UpdateStatus(ctx, d.ID, domain.StatusCreated, domain.StatusApproved, "", s.now.Add(time.Minute))
		s.Require().NoError(err)
		s.Equal(domain.StatusApproved, updated.Status)
	})

	s.Run("stale expectation loses", func() {
		_, err := s.store.UpdateStatus(ctx, d.ID, domain.StatusCreated, domain.StatusApproved, "", s.now.Add(time.Minute))
		s.Require().ErrorIs(err, sentinel.ErrStatusConflict)
	})

	s.Run("dispute reason is recorded", func() {
		updated, err := s.store.UpdateStatus(ctx, d.ID, domain.StatusApproved, domain.StatusDisputed, "terms contested", s.now.Add(2*time.Minute))
		s.Require().NoError(err)
		s.Equal(domain.StatusDisputed, updated.Status)
		s.Equal("terms contested", updated.DisputeReason)
	})

	s.Run("unknown deal is not found", func() {
		_, err := s.store.UpdateStatus(ctx, domain.NewDealID(), domain.StatusCreated, domain.StatusApproved, "", s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestUpdateStatus_ConcurrentTransitions() {
	ctx := context.Background()
	d := s.deal("nil-race")
	s.Require().NoError(s.store.Create(ctx, d))

	const workers = 8
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := s.store.UpdateStatus(ctx, d.ID, domain.StatusCreated, domain.StatusApproved, "", s.now.Add(time.Minute))
			results <- err
		}()
	}

	var wins, losses int
	for i := 0; i < workers; i++ {
		if err := <-results; err == nil {
			wins++
		} else {
			s.Require().ErrorIs(err, sentinel.ErrStatusConflict)
			losses++
		}
	}
	s.Equal(1, wins, "exactly one concurrent transition may win")
	s.Equal(workers-1, losses)
}
