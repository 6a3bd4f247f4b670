package issuer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/sentinel"

	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 16

// Service registers attestation authorities and exchanges their credentials
// for bearer tokens.
type Service struct {
	store  Store
	tokens *TokenService
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, tokens *TokenService, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new issuer. The secret is stored only as a bcrypt hash;
// the caller must keep the plaintext.
func (s *Service) Register(ctx context.Context, name, secret string) (*Issuer, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "issuer name is required")
	}
	if len(secret) < minSecretLength {
		return nil, dErrors.Newf(dErrors.CodeValidation, "issuer secret must be at least %d characters", minSecretLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to hash issuer secret", err)
	}

	issuer := &Issuer{
		ID:         domain.NewIssuerID(),
		Name:       name,
		SecretHash: hash,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.Save(ctx, issuer); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "issuer %q already registered", name)
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to save issuer", err)
	}

	s.logger.InfoContext(ctx, "issuer registered",
		"issuer_id", issuer.ID.String(),
		"issuer_name", issuer.Name,
	)
	return issuer, nil
}

// Authenticate verifies the issuer's secret and returns a signed bearer token.
// Unknown names and bad secrets produce the same error.
func (s *Service) Authenticate(ctx context.Context, name, secret string) (string, error) {
	issuer, err := s.store.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid issuer credentials")
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to look up issuer", err)
	}

	if err := bcrypt.CompareHashAndPassword(issuer.SecretHash, []byte(secret)); err != nil {
		s.logger.WarnContext(ctx, "issuer authentication failed",
			"issuer_name", name,
		)
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid issuer credentials")
	}

	token, err := s.tokens.GenerateToken(issuer.ID, issuer.Name)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to sign issuer token", err)
	}
	return token, nil
}

// Get returns a registered issuer by id.
func (s *Service) Get(ctx context.Context, id domain.IssuerID) (*Issuer, error) {
	issuer, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "issuer %s not found", id.String())
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to look up issuer", err)
	}
	return issuer, nil
}
