package services_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/core/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/SscSPs/inkpress/internal/platform/emailtmpl"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const strongPassword = "Sup3r$ecret"

type AuthServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	users       *fakeUserRepo
	sessions    *fakeSessionRepo
	revocations *fakeRevocations
	mailer      *MockMailer
	tokens      portssvc.TokenSvcFacade
	authn       portssvc.AuthenticatorSvc
	svc         portssvc.AuthSvcFacade
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	cfg := testConfig()
	s.users = newFakeUserRepo()
	s.sessions = newFakeSessionRepo()
	s.revocations = newFakeRevocations()
	s.mailer = new(MockMailer)
	s.mailer.On("Send", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.tokens = services.NewTokenService(cfg)
	s.authn = services.NewAuthenticator(s.tokens, s.users, s.sessions, s.revocations)
	s.svc = services.NewAuthService(cfg, s.users, s.sessions, s.revocations, s.tokens, s.mailer)
}

func (s *AuthServiceTestSuite) signup() *domain.User {
	user, err := s.svc.Signup(s.ctx, dto.SignupRequest{UserName: "ada_l", Email: " Ada@Example.com ", Password: strongPassword})
	s.Require().NoError(err)
	return user
}

func (s *AuthServiceTestSuite) login() (*domain.User, string) {
	user, token, err := s.svc.Login(s.ctx, dto.LoginRequest{Email: "ada@example.com", Password: strongPassword})
	s.Require().NoError(err)
	return user, token.Token
}

// sentTemplates lists the templates mailed so far.
func (s *AuthServiceTestSuite) sentTemplates() []string {
	var names []string
	for _, c := range s.mailer.Calls {
		names = append(names, c.Arguments.Get(1).(domain.EmailMessage).Tags["template"])
	}
	return names
}

func (s *AuthServiceTestSuite) TestSignup_CreatesLocalUser() {
	user := s.signup()
	s.Equal("ada@example.com", user.Email)
	s.Equal("ada_l", user.GetUsername())
	s.Equal("ada_l", user.Name)
	s.True(user.HasPassword())
	s.NotEqual(strongPassword, *user.PasswordHash)
	s.Contains(s.sentTemplates(), emailtmpl.Welcome)
}

func (s *AuthServiceTestSuite) TestSignup_DuplicateEmail() {
	s.signup()
	_, err := s.svc.Signup(s.ctx, dto.SignupRequest{Email: "ADA@example.com", Password: strongPassword})

	var appErr *apperrors.AppError
	s.Require().True(errors.As(err, &appErr))
	s.Equal(http.StatusConflict, appErr.Code)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Equal(1, s.users.saves)
}

func (s *AuthServiceTestSuite) TestSignup_DuplicateUsername() {
	s.signup()
	_, err := s.svc.Signup(s.ctx, dto.SignupRequest{UserName: "ada_l", Email: "other@example.com", Password: strongPassword})
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *AuthServiceTestSuite) TestLogin() {
	s.signup()
	user, token := s.login()
	s.NotEmpty(token)

	p, err := s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.Require().NoError(err)
	s.Equal(user.UserID, p.UserID())
}

func (s *AuthServiceTestSuite) TestLogin_WrongPasswordOrUnknownEmail() {
	s.signup()
	_, _, err := s.svc.Login(s.ctx, dto.LoginRequest{Email: "ada@example.com", Password: "nope"})
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)

	_, _, err = s.svc.Login(s.ctx, dto.LoginRequest{Email: "who@example.com", Password: strongPassword})
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogin_OAuthOnlyAccount() {
	u := domain.User{UserID: "g-1", Email: "g@example.com"}
	u.LinkAccount(domain.ProviderGoogle, "sub-1", time.Now())
	s.Require().NoError(s.users.SaveUser(s.ctx, u))

	_, _, err := s.svc.Login(s.ctx, dto.LoginRequest{Email: "g@example.com", Password: strongPassword})
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogout_RevokesManualToken() {
	s.signup()
	_, token := s.login()
	p, err := s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Logout(s.ctx, p))

	_, err = s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.ErrorIs(err, apperrors.ErrTokenRevoked)
}

func (s *AuthServiceTestSuite) TestLogout_DeletesOAuthSession() {
	user := s.signup()
	s.Require().NoError(s.sessions.SaveSession(s.ctx, domain.OAuthSessionRecord{
		SessionToken: "oauth-1", UserID: user.UserID, Provider: domain.ProviderGoogle, Expires: time.Now().Add(time.Hour),
	}))
	p, err := s.authn.Authenticate(s.ctx, portssvc.Credentials{OAuthSessionToken: "oauth-1"})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Logout(s.ctx, p))
	s.Equal(0, s.sessions.count())
}

func (s *AuthServiceTestSuite) TestChangePassword_OldCookieRejected() {
	user := s.signup()
	_, token := s.login()
	s.Require().NoError(s.sessions.SaveSession(s.ctx, domain.OAuthSessionRecord{
		SessionToken: "oauth-1", UserID: user.UserID, Provider: domain.ProviderGoogle, Expires: time.Now().Add(time.Hour),
	}))
	p, err := s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.Require().NoError(err)

	err = s.svc.ChangePassword(s.ctx, p, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: "N3w!Passw0rd"})
	s.Require().NoError(err)

	_, err = s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.ErrorIs(err, apperrors.ErrTokenRevoked)
	s.Equal(0, s.sessions.count())
	s.Contains(s.sentTemplates(), emailtmpl.PasswordChanged)

	_, _, err = s.svc.Login(s.ctx, dto.LoginRequest{Email: "ada@example.com", Password: "N3w!Passw0rd"})
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestChangePassword_SurvivesConcurrentProfileUpdate() {
	user := s.signup()
	_, token := s.login()
	p, err := s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.Require().NoError(err)

	profiles := services.NewUserService(s.users)
	s.users.setBeforeWrite(func() {
		s.Require().NoError(s.svc.ChangePassword(s.ctx, p, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: "N3w!Passw0rd"}))
	})
	updated, err := profiles.UpdateProfile(s.ctx, user.UserID, dto.UpdateProfileRequest{Name: ptr("Ada Lovelace")})
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", updated.Name)

	_, err = s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.ErrorIs(err, apperrors.ErrTokenRevoked)

	_, _, err = s.svc.Login(s.ctx, dto.LoginRequest{Email: "ada@example.com", Password: strongPassword})
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)

	stored, err := s.users.FindUserByID(s.ctx, user.UserID)
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", stored.Name)
	s.Equal(user.SessionVersion+1, stored.SessionVersion)
}

func (s *AuthServiceTestSuite) TestChangePassword_StaleVersionConflicts() {
	user := s.signup()
	_, token := s.login()
	p, err := s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.Require().NoError(err)

	s.users.setBeforeWrite(func() {
		stored, err := s.users.FindUserByID(s.ctx, user.UserID)
		s.Require().NoError(err)
		stored.SessionVersion++
		s.users.put(*stored)
	})
	err = s.svc.ChangePassword(s.ctx, p, dto.ChangePasswordRequest{CurrentPassword: strongPassword, NewPassword: "N3w!Passw0rd"})

	var appErr *apperrors.AppError
	s.Require().True(errors.As(err, &appErr))
	s.Equal(http.StatusConflict, appErr.Code)
	s.ErrorIs(err, apperrors.ErrConcurrentUpdate)

	_, _, err = s.svc.Login(s.ctx, dto.LoginRequest{Email: "ada@example.com", Password: strongPassword})
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestChangePassword_WrongCurrent() {
	s.signup()
	_, token := s.login()
	p, err := s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.Require().NoError(err)

	err = s.svc.ChangePassword(s.ctx, p, dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "N3w!Passw0rd"})
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)

	err = s.svc.ChangePassword(s.ctx, p, dto.ChangePasswordRequest{NewPassword: "N3w!Passw0rd"})
	s.ErrorIs(err, apperrors.ErrValidation)

	// The session survives failed attempts.
	_, err = s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: token})
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestForgotPassword_UnknownEmailIsSilent() {
	s.Require().NoError(s.svc.ForgotPassword(s.ctx, dto.ForgotPasswordRequest{Email: "nobody@example.com"}))
	s.Empty(s.sentTemplates())
}

func (s *AuthServiceTestSuite) resetTokenFromMail() string {
	for _, c := range s.mailer.Calls {
		msg := c.Arguments.Get(1).(domain.EmailMessage)
		if msg.Tags["template"] != emailtmpl.PasswordReset {
			continue
		}
		for _, line := range strings.Split(msg.Text, "\n") {
			if u, err := url.Parse(line); err == nil && u.Query().Get("token") != "" {
				return u.Query().Get("token")
			}
		}
	}
	s.FailNow("no reset email sent")
	return ""
}

func (s *AuthServiceTestSuite) TestResetPassword_SingleUse() {
	s.signup()
	_, oldToken := s.login()
	s.Require().NoError(s.svc.ForgotPassword(s.ctx, dto.ForgotPasswordRequest{Email: "ada@example.com"}))
	resetToken := s.resetTokenFromMail()

	// The reset token is not a login session.
	_, err := s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: resetToken})
	s.ErrorIs(err, apperrors.ErrTokenScope)

	s.Require().NoError(s.svc.ResetPassword(s.ctx, dto.ResetPasswordRequest{Token: resetToken, Password: "R3set!Passw0rd"}))

	err = s.svc.ResetPassword(s.ctx, dto.ResetPasswordRequest{Token: resetToken, Password: "An0ther!Pass"})
	s.ErrorIs(err, apperrors.ErrTokenRevoked)

	_, err = s.authn.Authenticate(s.ctx, portssvc.Credentials{ManualToken: oldToken})
	s.ErrorIs(err, apperrors.ErrTokenRevoked)

	_, _, err = s.svc.Login(s.ctx, dto.LoginRequest{Email: "ada@example.com", Password: "R3set!Passw0rd"})
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestResetPassword_RejectsSessionToken() {
	s.signup()
	_, token := s.login()
	err := s.svc.ResetPassword(s.ctx, dto.ResetPasswordRequest{Token: token, Password: "R3set!Passw0rd"})
	s.ErrorIs(err, apperrors.ErrTokenScope)
}

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
