package payout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilgate/internal/chain"
	"nilgate/internal/deal/models"
	dealservice "nilgate/internal/deal/service"
	dealstore "nilgate/internal/deal/store"
	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
)

// =============================================================================
// Payout Engine Test Suite
// =============================================================================
// The engine's contract: at most one payout per deal, exact conservation of
// the deal amount across transfers, failed attempts leave the deal VERIFIED
// and retryable, and an interrupted execution is repaired rather than re-run.

type EngineSuite struct {
	suite.Suite
	ledger      *dealservice.Ledger
	payoutStore *InMemoryStore
	chainClient *chain.SimulatedClient
	engine      *Engine
	now         time.Time
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ledger = dealservice.NewLedger(dealstore.NewInMemoryStore(), nil,
		dealservice.WithClock(func() time.Time { return s.now }))
	s.payoutStore = NewInMemoryStore()
	s.chainClient = chain.NewSimulatedClient()
	s.engine = NewEngine(s.ledger, s.payoutStore, s.chainClient, 5*time.Second, nil,
		WithClock(func() time.Time { return s.now }))
}

// mintAndCreate mints a chain record and opens the matching deal, returning it
// in the given status.
func (s *EngineSuite) mintAndCreate(status domain.DealStatus) *models.Deal {
	ctx := context.Background()

	vault, err := domain.ParseAddress("0x1111111111111111111111111111111111111111")
	s.Require().NoError(err)
	brand, err := domain.ParseAddress("0x2222222222222222222222222222222222222222")
	s.Require().NoError(err)
	payeeA, err := domain.ParseAddress("0x3333333333333333333333333333333333333333")
	s.Require().NoError(err)
	payeeB, err := domain.ParseAddress("0x4444444444444444444444444444444444444444")
	s.Require().NoError(err)

	amount := domain.NewAmount(1000)
	minted, err := s.chainClient.MintDealRecord(ctx, chain.MintParams{
		Vault:        vault,
		Brand:        brand,
		Amount:       amount,
		TermsHash:    "deadbeef",
		Jurisdiction: "US",
	})
	s.Require().NoError(err)

	d, err := s.ledger.Create(ctx, models.CreateParams{
		ChainID:      minted.ChainDealID,
		Vault:        vault,
		Brand:        brand,
		Amount:       amount,
		TermsHash:    "deadbeef",
		Jurisdiction: "US",
		Splits: domain.SplitConfig{
			{Payee: payeeA, Share: domain.NewAmount(700)},
			{Payee: payeeB, Share: domain.NewAmount(300)},
		},
	})
	s.Require().NoError(err)

	switch status {
	case domain.StatusApproved:
		d = s.transition(d.ID, domain.StatusApproved)
	case domain.StatusVerified:
		s.transition(d.ID, domain.StatusApproved)
		d = s.transition(d.ID, domain.StatusVerified)
	}
	return d
}

func (s *EngineSuite) transition(id domain.DealID, target domain.DealStatus) *models.Deal {
	d, err := s.ledger.Transition(context.Background(), id, target)
	s.Require().NoError(err)
	return d
}

// =============================================================================
// Readiness Guard Tests
// =============================================================================

func (s *EngineSuite) TestExecute_NotReady() {
	ctx := context.Background()

	s.Run("created deal cannot be paid", func() {
		d := s.mintAndCreate(domain.StatusCreated)
		_, err := s.engine.Execute(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotReady))
	})

	s.Run("approved deal cannot be paid before verification", func() {
		d := s.mintAndCreate(domain.StatusApproved)
		_, err := s.engine.Execute(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotReady))
	})

	s.Run("disputed deal cannot be paid", func() {
		d := s.mintAndCreate(domain.StatusVerified)
		_, err := s.ledger.Dispute(ctx, d.ID, "contested")
		s.Require().NoError(err)

		_, err = s.engine.Execute(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotReady))
	})

	s.Run("unknown deal is not found", func() {
		_, err := s.engine.Execute(ctx, domain.NewDealID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Execution Tests
// =============================================================================

func (s *EngineSuite) TestExecute_Success() {
	ctx := context.Background()
	d := s.mintAndCreate(domain.StatusVerified)

	p, err := s.engine.Execute(ctx, d.ID)
	s.Require().NoError(err)

	s.Run("deal reaches PAID", func() {
		cur, err := s.ledger.Get(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusPaid, cur.Status)
	})

	s.Run("transfers mirror the split configuration exactly", func() {
		s.Require().Len(p.Transfers, 2)
		s.Equal("700", p.Transfers[0].Amount.String())
		s.Equal("300", p.Transfers[1].Amount.String())
	})

	s.Run("payout conserves the deal amount", func() {
		s.True(p.Total().Equal(d.Amount),
			"transfers sum to %s, deal amount is %s", p.Total(), d.Amount)
	})

	s.Run("record carries the chain receipt", func() {
		s.NotEmpty(p.TxRef)
		s.False(p.Distributor.IsZero())
		s.Equal(s.now, p.ExecutedAt)
	})
}

func (s *EngineSuite) TestExecute_AtMostOnce() {
	ctx := context.Background()
	d := s.mintAndCreate(domain.StatusVerified)

	first, err := s.engine.Execute(ctx, d.ID)
	s.Require().NoError(err)

	s.Run("second call reports already paid", func() {
		_, err := s.engine.Execute(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyPaid))
	})

	s.Run("only one payout record exists", func() {
		p, err := s.engine.FindByDeal(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(first.ID, p.ID)
	})
}

// gatedChain stalls the first Distribute call so a second Execute has every
// chance to race past the guards, and counts how many calls reach the chain.
type gatedChain struct {
	chain.Client
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedChain) Distribute(ctx context.Context, id domain.ChainDealID, splits domain.SplitConfig) (*chain.Receipt, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.entered <- struct{}{}
	<-g.release
	return g.Client.Distribute(ctx, id, splits)
}

func (g *gatedChain) distributions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (s *EngineSuite) TestExecute_ConcurrentCallsTransferOnce() {
	ctx := context.Background()
	d := s.mintAndCreate(domain.StatusVerified)

	gated := &gatedChain{
		Client:  s.chainClient,
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	engine := NewEngine(s.ledger, s.payoutStore, gated, 5*time.Second, nil,
		WithClock(func() time.Time { return s.now }))

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := engine.Execute(ctx, d.ID)
			results <- err
		}()
	}

	// One call is inside Distribute; the other must be held at the per-deal
	// lock, not at the chain. Let the transfer finish and collect both.
	<-gated.entered
	close(gated.release)

	var succeeded, alreadyPaid int
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			s.True(dErrors.HasCode(err, dErrors.CodeAlreadyPaid))
			alreadyPaid++
		}
	}

	s.Equal(1, succeeded)
	s.Equal(1, alreadyPaid)
	s.Equal(1, gated.distributions(), "only one call may reach the chain transfer")

	p, err := engine.FindByDeal(ctx, d.ID)
	s.Require().NoError(err)
	s.True(p.Total().Equal(d.Amount))
}

func (s *EngineSuite) TestExecute_TransientFailure() {
	ctx := context.Background()
	d := s.mintAndCreate(domain.StatusVerified)

	s.chainClient.FailNextDistributions(1)

	_, err := s.engine.Execute(ctx, d.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))

	s.Run("failed attempt leaves the deal VERIFIED", func() {
		cur, err := s.ledger.Get(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusVerified, cur.Status)
	})

	s.Run("no payout record was written", func() {
		_, err := s.engine.FindByDeal(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("retry succeeds with exactly one payout", func() {
		p, err := s.engine.Execute(ctx, d.ID)
		s.Require().NoError(err)
		s.True(p.Total().Equal(d.Amount))

		cur, err := s.ledger.Get(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusPaid, cur.Status)
	})
}

// =============================================================================
// Repair Tests
// =============================================================================

func (s *EngineSuite) TestExecute_RepairsInterruptedRun() {
	ctx := context.Background()
	d := s.mintAndCreate(domain.StatusVerified)

	// Simulate a crash after the payout record was written but before the
	// status advanced: seed the record directly.
	stranded := &Payout{
		ID:         domain.NewPayoutID(),
		DealID:     d.ID,
		TxRef:      "0xstranded",
		Transfers:  []Transfer{},
		ExecutedAt: s.now,
	}
	s.Require().NoError(s.payoutStore.Create(ctx, stranded))

	p, err := s.engine.Execute(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(stranded.ID, p.ID, "repair returns the existing payout, never re-transfers")

	cur, err := s.ledger.Get(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPaid, cur.Status)
}
