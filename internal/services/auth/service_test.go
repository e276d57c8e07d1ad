package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/eventledger/internal/dependencies/mocks"
	"github.com/mcoot/eventledger/internal/model"
	"github.com/mcoot/eventledger/internal/storage/memory"
	"github.com/mcoot/eventledger/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger(), Config{
		SessionDuration: time.Hour,
		BcryptCost:      bcrypt.MinCost,
	})
	s.ctx = context.Background()
	s.Require().NoError(s.service.EnsureAdmin(s.ctx, "gom", "hunter22"))
}

// EnsureAdmin tests

func (s *ServiceSuite) TestEnsureAdminHashesPassword() {
	admin, err := s.storage.GetAdminByUsername(s.ctx, "gom")
	s.Require().NoError(err)
	s.NotEmpty(admin.PasswordHash)
	s.NotEqual("hunter22", admin.PasswordHash)
}

func (s *ServiceSuite) TestEnsureAdminIsIdempotent() {
	before, _ := s.storage.GetAdminByUsername(s.ctx, "gom")

	s.Require().NoError(s.service.EnsureAdmin(s.ctx, "gom", "hunter22"))

	after, _ := s.storage.GetAdminByUsername(s.ctx, "gom")
	s.Equal(before.PasswordHash, after.PasswordHash)
}

func (s *ServiceSuite) TestEnsureAdminRotatesPassword() {
	s.Require().NoError(s.service.EnsureAdmin(s.ctx, "gom", "new-password"))

	_, err := s.service.Login(s.ctx, "gom", "hunter22")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.Login(s.ctx, "gom", "new-password")
	s.NoError(err)
}

func (s *ServiceSuite) TestEnsureAdminRequiresCredentials() {
	s.ErrorIs(s.service.EnsureAdmin(s.ctx, " ", "x"), model.ErrValidation)
	s.ErrorIs(s.service.EnsureAdmin(s.ctx, "gom", ""), model.ErrValidation)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	session, err := s.service.Login(s.ctx, "gom", "hunter22")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("gom", session.Username)
	s.Equal(s.clock.Now().Add(time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Login(s.ctx, "gom", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "hunter22")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginCreatesDistinctSessions() {
	a, _ := s.service.Login(s.ctx, "gom", "hunter22")
	b, _ := s.service.Login(s.ctx, "gom", "hunter22")
	s.NotEqual(a.Token, b.Token)
}

// Session tests

func (s *ServiceSuite) TestValidateSession() {
	session, _ := s.service.Login(s.ctx, "gom", "hunter22")

	validated, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal("gom", validated.Username)
}

func (s *ServiceSuite) TestValidateSessionUnknownToken() {
	_, err := s.service.ValidateSession("sess_bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestSessionExpires() {
	session, _ := s.service.Login(s.ctx, "gom", "hunter22")

	s.clock.Advance(time.Hour + time.Second)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, _ := s.service.Login(s.ctx, "gom", "hunter22")

	s.service.InvalidateSession(session.Token)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	old, _ := s.service.Login(s.ctx, "gom", "hunter22")
	s.clock.Advance(45 * time.Minute)
	fresh, _ := s.service.Login(s.ctx, "gom", "hunter22")
	s.clock.Advance(30 * time.Minute)

	s.Equal(1, s.service.CleanExpiredSessions())

	_, err := s.service.ValidateSession(old.Token)
	s.ErrorIs(err, ErrInvalidSession)
	_, err = s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}
