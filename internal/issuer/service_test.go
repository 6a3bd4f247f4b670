package issuer

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "nilgate/pkg/domain-errors"
)

// =============================================================================
// Issuer Service Test Suite
// =============================================================================

type ServiceSuite struct {
	suite.Suite
	service *Service
	tokens  *TokenService
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.tokens = NewTokenService("test-signing-key", time.Hour)
	s.service = NewService(NewInMemoryStore(), s.tokens, slog.New(slog.DiscardHandler))
}

const testSecret = "a-sufficiently-long-secret"

func (s *ServiceSuite) TestRegister() {
	ctx := context.Background()

	s.Run("registers a new issuer", func() {
		i, err := s.service.Register(ctx, "verifier-a", testSecret)
		s.Require().NoError(err)
		s.False(i.ID.IsNil())
		s.Equal("verifier-a", i.Name)
		s.NotEmpty(i.SecretHash)
		s.NotContains(string(i.SecretHash), testSecret, "secret must never be stored in the clear")
	})

	s.Run("rejects duplicate names", func() {
		_, err := s.service.Register(ctx, "verifier-dup", testSecret)
		s.Require().NoError(err)

		_, err = s.service.Register(ctx, "verifier-dup", testSecret)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects short secrets", func() {
		_, err := s.service.Register(ctx, "verifier-weak", "short")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects empty name", func() {
		_, err := s.service.Register(ctx, "", testSecret)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestAuthenticate() {
	ctx := context.Background()
	registered, err := s.service.Register(ctx, "verifier-a", testSecret)
	s.Require().NoError(err)

	s.Run("valid credentials yield a verifiable token", func() {
		token, err := s.service.Authenticate(ctx, "verifier-a", testSecret)
		s.Require().NoError(err)

		claims, err := s.tokens.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal(registered.ID.String(), claims.IssuerID)
		s.Equal("verifier-a", claims.IssuerName)
	})

	s.Run("wrong secret is unauthorized", func() {
		_, err := s.service.Authenticate(ctx, "verifier-a", "wrong-secret-entirely")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown issuer gets the same error as a bad secret", func() {
		_, err := s.service.Authenticate(ctx, "nobody", testSecret)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestTokenValidation() {
	s.Run("rejects a token signed with another key", func() {
		other := NewTokenService("different-key", time.Hour)
		token, err := other.GenerateToken(s.mustRegister("verifier-x").ID, "verifier-x")
		s.Require().NoError(err)

		_, err = s.tokens.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects an expired token", func() {
		expired := NewTokenService("test-signing-key", -time.Minute)
		token, err := expired.GenerateToken(s.mustRegister("verifier-y").ID, "verifier-y")
		s.Require().NoError(err)

		_, err = s.tokens.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects garbage", func() {
		_, err := s.tokens.ValidateToken("not-a-jwt")
		s.Require().Error(err)
	})
}

func (s *ServiceSuite) mustRegister(name string) *Issuer {
	i, err := s.service.Register(context.Background(), name, testSecret)
	s.Require().NoError(err)
	return i
}
