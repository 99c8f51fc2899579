package services

import (
	"context"

	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/SscSPs/inkpress/internal/dto"
)

// Credentials are the raw session credentials carried by a request. Either may be empty.
type Credentials struct {
	// ManualToken is the signed session token from the token cookie or a Bearer header.
	ManualToken string
	// OAuthSessionToken is the opaque value of the OAuth session cookie.
	OAuthSessionToken string
}

// Empty reports whether the request carried no credential at all.
func (c Credentials) Empty() bool {
	return c.ManualToken == "" && c.OAuthSessionToken == ""
}

// TokenSvcFacade issues and verifies signed tokens.
type TokenSvcFacade interface {
	// IssueSessionToken signs a login session token for user.
	IssueSessionToken(ctx context.Context, user *domain.User) (*dto.IssuedToken, error)
	// IssuePasswordResetToken signs a token that is only honoured by ResetPassword.
	IssuePasswordResetToken(ctx context.Context, user *domain.User) (*dto.IssuedToken, error)
	// ParseSessionToken verifies a session token. Reset tokens are rejected with apperrors.ErrTokenScope.
	ParseSessionToken(ctx context.Context, token string) (*domain.ManualSession, error)
	// ParsePasswordResetToken verifies a reset token and returns the user id and session version it was issued for.
	ParsePasswordResetToken(ctx context.Context, token string) (userID string, version int, err error)
}

// AuthenticatorSvc resolves request credentials to a session and a user. It is the
// single authorizer shared by the edge gatekeeper and the handlers.
type AuthenticatorSvc interface {
	// ResolveSession applies the fixed priority: a manual token, when present, decides alone;
	// otherwise the OAuth session cookie is looked up. No credential yields apperrors.ErrUnauthorized.
	ResolveSession(ctx context.Context, creds Credentials) (domain.Session, error)
	// Authenticate resolves the session and loads its user. A session whose user no longer
	// exists yields apperrors.ErrUserNotFound.
	Authenticate(ctx context.Context, creds Credentials) (*domain.Principal, error)
}

// AuthSvcFacade implements credential-based account flows.
type AuthSvcFacade interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*domain.User, error)
	// Login verifies credentials and issues a session token.
	Login(ctx context.Context, req dto.LoginRequest) (*domain.User, *dto.IssuedToken, error)
	// Logout revokes whatever session authenticated the principal.
	Logout(ctx context.Context, principal *domain.Principal) error
	// ChangePassword sets a new password and revokes every existing session of the user.
	ChangePassword(ctx context.Context, principal *domain.Principal, req dto.ChangePasswordRequest) error
	// ForgotPassword mails a reset link when the address is known. Unknown addresses are not reported.
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	// ResetPassword consumes a reset token. A token can be used once.
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
}

// IdentityVerifier validates a provider ID token.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, rawIDToken string) (*domain.ExternalIdentity, error)
}

// GoogleOAuthSvcFacade defines the Google sign-in flow.
type GoogleOAuthSvcFacade interface {
	// Enabled reports whether Google sign-in is configured.
	Enabled() bool
	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string
	// LoginWithCode exchanges an authorization code, verifies the ID token and completes the login.
	LoginWithCode(ctx context.Context, code string) (*domain.User, *domain.OAuthSessionRecord, error)
	// CompleteLogin finds, links or creates the user for identity and opens an OAuth session.
	// The returned record carries the raw session token for the cookie.
	CompleteLogin(ctx context.Context, identity domain.ExternalIdentity) (*domain.User, *domain.OAuthSessionRecord, error)
}
