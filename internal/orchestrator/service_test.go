package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilgate/internal/athlete"
	"nilgate/internal/attestation"
	"nilgate/internal/chain"
	"nilgate/internal/compliance"
	dealservice "nilgate/internal/deal/service"
	dealstore "nilgate/internal/deal/store"
	"nilgate/internal/events"
	"nilgate/internal/payout"
	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
)

// =============================================================================
// Orchestrator Test Suite
// =============================================================================
// End-to-end lifecycle runs against real in-memory collaborators: the ledger,
// the attestation store, the evaluator, the payout engine, and the simulated
// chain. Only the event sink is inspected from the outside.

type ServiceSuite struct {
	suite.Suite
	service      *Service
	ledger       *dealservice.Ledger
	attestations *attestation.InMemoryStore
	chainClient  *chain.SimulatedClient
	sink         *events.MemorySink
	notified     chan *payout.Payout
	now          time.Time

	vault domain.Address
	brand domain.Address
	payee domain.Address
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }

	s.vault = s.addr("0x1111111111111111111111111111111111111111")
	s.brand = s.addr("0x2222222222222222222222222222222222222222")
	s.payee = s.addr("0x3333333333333333333333333333333333333333")

	s.ledger = dealservice.NewLedger(dealstore.NewInMemoryStore(), nil,
		dealservice.WithClock(clock))
	s.attestations = attestation.NewInMemoryStore()
	s.chainClient = chain.NewSimulatedClient()
	s.sink = events.NewMemorySink()
	s.notified = make(chan *payout.Payout, 1)

	athletes := athlete.NewService(athlete.NewInMemoryStore(), nil)
	_, err := athletes.Register(context.Background(),
		s.addr("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), s.vault, "US")
	s.Require().NoError(err)

	policy := &compliance.PolicySet{
		Version: "test-1",
		Jurisdictions: map[domain.Jurisdiction]compliance.JurisdictionPolicy{
			"US": {
				Required:       []domain.AttestationType{domain.AttestationKYC},
				TrustedIssuers: []string{"*"},
			},
		},
		Default: compliance.JurisdictionPolicy{
			Required:       []domain.AttestationType{domain.AttestationKYC},
			TrustedIssuers: []string{"*"},
		},
	}
	evaluator := compliance.NewEvaluator(policy, s.attestations, nil,
		compliance.WithClock(clock))
	engine := payout.NewEngine(s.ledger, payout.NewInMemoryStore(), s.chainClient,
		5*time.Second, nil, payout.WithClock(clock))

	s.service = NewService(
		s.ledger,
		athletes,
		evaluator,
		engine,
		s.chainClient,
		s.sink,
		5*time.Second,
		5*time.Second,
		nil,
		WithClock(clock),
		WithNotifier(notifierFunc(func(_ context.Context, p *payout.Payout) error {
			s.notified <- p
			return nil
		})),
	)
}

type notifierFunc func(ctx context.Context, p *payout.Payout) error

func (f notifierFunc) NotifyPayout(ctx context.Context, p *payout.Payout) error {
	return f(ctx, p)
}

func (s *ServiceSuite) addr(raw string) domain.Address {
	a, err := domain.ParseAddress(raw)
	s.Require().NoError(err)
	return a
}

func (s *ServiceSuite) createParams() CreateDealParams {
	return CreateDealParams{
		Vault:        s.vault,
		Brand:        s.brand,
		Amount:       domain.NewAmount(1000),
		TermsHash:    "deadbeef",
		Jurisdiction: "US",
		Splits: domain.SplitConfig{
			{Payee: s.payee, Share: domain.NewAmount(1000)},
		},
	}
}

func (s *ServiceSuite) attestKYC() {
	err := s.attestations.Put(context.Background(), &attestation.Attestation{
		Subject:     domain.AthleteSubject(s.vault),
		Type:        domain.AttestationKYC,
		Issuer:      "verifier-a",
		PayloadHash: "abc123",
		IssuedAt:    s.now.Add(-time.Hour),
	})
	s.Require().NoError(err)
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *ServiceSuite) TestCreateDeal() {
	ctx := context.Background()

	s.Run("mints and opens the deal", func() {
		d, err := s.service.CreateDeal(ctx, s.createParams())
		s.Require().NoError(err)
		s.Equal(domain.StatusCreated, d.Status)
		s.NotEmpty(d.ChainID.String(), "minting assigns the chain id")

		created := s.sink.OfType(events.TypeDealCreated)
		s.Require().Len(created, 1)
		s.Equal(d.ID, created[0].DealID)
	})

	s.Run("rejects an unregistered vault before minting", func() {
		p := s.createParams()
		p.Vault = s.addr("0x9999999999999999999999999999999999999999")
		_, err := s.service.CreateDeal(ctx, p)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects splits that do not sum to the amount", func() {
		p := s.createParams()
		p.Splits = domain.SplitConfig{
			{Payee: s.payee, Share: domain.NewAmount(999)},
		}
		_, err := s.service.CreateDeal(ctx, p)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects a non-positive amount", func() {
		p := s.createParams()
		p.Amount = domain.NewAmount(0)
		_, err := s.service.CreateDeal(ctx, p)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Approve Tests
// =============================================================================

func (s *ServiceSuite) TestApprove() {
	ctx := context.Background()
	d, err := s.service.CreateDeal(ctx, s.createParams())
	s.Require().NoError(err)

	s.Run("non-compliant deal stays put and is reported", func() {
		cur, result, err := s.service.Approve(ctx, d.ID)
		s.Require().NoError(err, "non-compliance is a verdict, not an error")
		s.Equal(domain.StatusCreated, cur.Status)
		s.False(result.Compliant)
		s.Contains(result.Missing, domain.AttestationKYC)

		s.Len(s.sink.OfType(events.TypeDealRejected), 1)
		s.Empty(s.sink.OfType(events.TypeDealApproved))
	})

	s.Run("compliant deal moves to APPROVED", func() {
		s.attestKYC()

		cur, result, err := s.service.Approve(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusApproved, cur.Status)
		s.True(result.Compliant)
		s.Len(s.sink.OfType(events.TypeDealApproved), 1)
	})

	s.Run("re-approval is a no-op and emits nothing", func() {
		cur, _, err := s.service.Approve(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusApproved, cur.Status)
		s.Len(s.sink.OfType(events.TypeDealApproved), 1, "idempotent re-entry must not re-emit")
	})

	s.Run("unknown deal is not found", func() {
		_, _, err := s.service.Approve(ctx, domain.NewDealID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Verify Tests
// =============================================================================

func (s *ServiceSuite) TestVerify() {
	ctx := context.Background()
	s.attestKYC()
	d, err := s.service.CreateDeal(ctx, s.createParams())
	s.Require().NoError(err)

	s.Run("cannot verify before approval", func() {
		_, err := s.service.Verify(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	_, _, err = s.service.Approve(ctx, d.ID)
	s.Require().NoError(err)

	s.Run("confirmed record advances to VERIFIED", func() {
		cur, err := s.service.Verify(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusVerified, cur.Status)
		s.Len(s.sink.OfType(events.TypeDealVerified), 1)
	})

	s.Run("re-verification is a no-op and emits nothing", func() {
		cur, err := s.service.Verify(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusVerified, cur.Status)
		s.Len(s.sink.OfType(events.TypeDealVerified), 1)
	})
}

func (s *ServiceSuite) TestVerify_UnconfirmedChain() {
	ctx := context.Background()
	s.attestKYC()
	d, err := s.service.CreateDeal(ctx, s.createParams())
	s.Require().NoError(err)
	_, _, err = s.service.Approve(ctx, d.ID)
	s.Require().NoError(err)

	// Swap in a chain that never confirms; the deal must stay APPROVED.
	s.service.chainClient = unconfirmedChain{s.chainClient}

	_, err = s.service.Verify(ctx, d.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotReady))

	cur, err := s.ledger.Get(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, cur.Status)
	s.Empty(s.sink.OfType(events.TypeDealVerified))
}

type unconfirmedChain struct {
	chain.Client
}

func (unconfirmedChain) ConfirmOnChain(context.Context, domain.ChainDealID) (bool, error) {
	return false, nil
}

// =============================================================================
// Payout Tests
// =============================================================================

func (s *ServiceSuite) TestRequestPayout() {
	ctx := context.Background()
	s.attestKYC()
	d, err := s.service.CreateDeal(ctx, s.createParams())
	s.Require().NoError(err)

	s.Run("not payable before verification", func() {
		_, err := s.service.RequestPayout(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotReady))
	})

	_, _, err = s.service.Approve(ctx, d.ID)
	s.Require().NoError(err)
	_, err = s.service.Verify(ctx, d.ID)
	s.Require().NoError(err)

	s.Run("verified deal pays out, emits, and notifies", func() {
		p, err := s.service.RequestPayout(ctx, d.ID)
		s.Require().NoError(err)
		s.True(p.Total().Equal(d.Amount))

		cur, err := s.service.GetDeal(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusPaid, cur.Status)
		s.Len(s.sink.OfType(events.TypeDealPaid), 1)

		select {
		case notified := <-s.notified:
			s.Equal(p.ID, notified.ID)
		case <-time.After(2 * time.Second):
			s.Fail("payout notification never arrived")
		}
	})

	s.Run("second request reports already paid", func() {
		_, err := s.service.RequestPayout(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyPaid))
	})

	s.Run("payout record is retrievable", func() {
		p, err := s.service.GetPayout(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(d.ID, p.DealID)
	})
}

// =============================================================================
// Dispute Tests
// =============================================================================

func (s *ServiceSuite) TestDispute() {
	ctx := context.Background()
	s.attestKYC()
	d, err := s.service.CreateDeal(ctx, s.createParams())
	s.Require().NoError(err)

	s.Run("dispute freezes the deal with its reason", func() {
		cur, err := s.service.Dispute(ctx, d.ID, "terms contested")
		s.Require().NoError(err)
		s.Equal(domain.StatusDisputed, cur.Status)

		disputed := s.sink.OfType(events.TypeDealDisputed)
		s.Require().Len(disputed, 1)
		s.Equal("terms contested", disputed[0].Reason)
	})

	s.Run("disputed deal cannot be approved", func() {
		_, _, err := s.service.Approve(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("disputed deal cannot be paid", func() {
		_, err := s.service.RequestPayout(ctx, d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotReady))
	})
}

// =============================================================================
// Compliance Preview Tests
// =============================================================================

func (s *ServiceSuite) TestComplianceStatus() {
	ctx := context.Background()
	d, err := s.service.CreateDeal(ctx, s.createParams())
	s.Require().NoError(err)

	s.Run("previews the verdict without transitioning", func() {
		result, err := s.service.ComplianceStatus(ctx, d.ID)
		s.Require().NoError(err)
		s.False(result.Compliant)

		cur, err := s.service.GetDeal(ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusCreated, cur.Status)
	})

	s.Run("reflects newly stored attestations", func() {
		s.attestKYC()
		result, err := s.service.ComplianceStatus(ctx, d.ID)
		s.Require().NoError(err)
		s.True(result.Compliant)
	})
}
