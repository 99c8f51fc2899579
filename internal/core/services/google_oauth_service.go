package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/platform/config"
	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// googleIDTokenVerifier validates Google ID tokens against the configured client id.
type googleIDTokenVerifier struct {
	clientID string
}

// NewGoogleIDTokenVerifier returns a verifier backed by google.golang.org/api/idtoken.
func NewGoogleIDTokenVerifier(clientID string) portssvc.IdentityVerifier {
	return &googleIDTokenVerifier{clientID: clientID}
}

func (v *googleIDTokenVerifier) VerifyIDToken(ctx context.Context, rawIDToken string) (*domain.ExternalIdentity, error) {
	if v.clientID == "" {
		return nil, errors.New("google client ID is not configured in the application")
	}
	payload, err := idtoken.Validate(ctx, rawIDToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("google ID token validation failed: %w", err)
	}

	identity := &domain.ExternalIdentity{
		Provider:       domain.ProviderGoogle,
		ProviderUserID: payload.Subject,
	}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		identity.Picture = picture
	}
	return identity, nil
}

// googleOAuthService implements the GoogleOAuthSvcFacade.
type googleOAuthService struct {
	BaseService
	cfg *config.Config
	// oauth2Config is configured at initialization time
	oauth2Config *oauth2.Config
	verifier     portssvc.IdentityVerifier
	users        portsrepo.UserRepositoryFacade
	sessions     portsrepo.OAuthSessionRepository
}

// NewGoogleOAuthService creates a new instance of googleOAuthService.
func NewGoogleOAuthService(
	cfg *config.Config,
	verifier portssvc.IdentityVerifier,
	users portsrepo.UserRepositoryFacade,
	sessions portsrepo.OAuthSessionRepository,
) portssvc.GoogleOAuthSvcFacade {
	return &googleOAuthService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		verifier: verifier,
		users:    users,
		sessions: sessions,
	}
}

func (s *googleOAuthService) Enabled() bool {
	return s.cfg.GoogleOAuthEnabled()
}

// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
func (s *googleOAuthService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.NewOpaqueToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
func (s *googleOAuthService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (s *googleOAuthService) LoginWithCode(ctx context.Context, code string) (*domain.User, *domain.OAuthSessionRecord, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		s.LogError(ctx, err, "Failed to exchange Google authorization code")
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, nil, apperrors.NewBadRequestError("Invalid or expired authorization code provided by Google.")
		}
		return nil, nil, apperrors.NewGatewayTimeoutError("Failed to communicate with Google OAuth service.")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, nil, apperrors.NewInternalServerError("Failed to retrieve ID token from Google.")
	}

	identity, err := s.verifier.VerifyIDToken(ctx, rawIDToken)
	if err != nil {
		s.LogWarn(ctx, "Google ID token rejected", slog.String("error", err.Error()))
		return nil, nil, apperrors.NewAppError(http.StatusUnauthorized, "Invalid Google ID token", apperrors.ErrTokenInvalid)
	}
	return s.CompleteLogin(ctx, *identity)
}

func (s *googleOAuthService) CompleteLogin(ctx context.Context, identity domain.ExternalIdentity) (*domain.User, *domain.OAuthSessionRecord, error) {
	if identity.ProviderUserID == "" || identity.Email == "" {
		return nil, nil, apperrors.NewAppError(http.StatusUnauthorized, "Essential user information missing from provider token.", apperrors.ErrTokenInvalid)
	}
	now := s.Now()
	email := normalizeEmail(identity.Email)
	logger := s.GetLogger(ctx).With(slog.String("provider", string(identity.Provider)))

	user, err := s.users.FindUserByProviderDetails(ctx, identity.Provider, identity.ProviderUserID)
	switch {
	case err == nil:
		logger.Info("OAuth login for linked user", slog.String("user_id", user.UserID))
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = s.linkOrCreate(ctx, identity, email, now)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("failed to look up user by provider: %w", err)
	}

	raw, err := utils.NewOpaqueToken(32)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	record := domain.OAuthSessionRecord{
		SessionToken: raw,
		UserID:       user.UserID,
		Provider:     identity.Provider,
		Expires:      now.Add(s.cfg.OAuthSessionDuration),
		CreatedAt:    now,
	}
	if err := s.sessions.SaveSession(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("failed to save oauth session: %w", err)
	}
	return user, &record, nil
}

// linkOrCreate attaches the identity to the account with the same email, or creates a new account.
// Linking requires the provider to have verified the address.
func (s *googleOAuthService) linkOrCreate(ctx context.Context, identity domain.ExternalIdentity, email string, now time.Time) (*domain.User, error) {
	existing, err := s.users.FindUserByEmail(ctx, email)
	if err == nil {
		if !identity.EmailVerified {
			return nil, apperrors.NewConflictError("An account with this email already exists. Sign in with your password first.")
		}
		existing.LinkAccount(identity.Provider, identity.ProviderUserID, now)
		existing.EmailVerified = true
		if existing.Image == "" {
			existing.Image = identity.Picture
		}
		existing.Touch(now)
		if err := s.users.UpdateProfile(ctx, *existing); err != nil {
			return nil, fmt.Errorf("failed to link oauth account: %w", err)
		}
		s.LogInfo(ctx, "Linked OAuth account to existing user", slog.String("user_id", existing.UserID))
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	name := identity.Name
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user := domain.User{
		UserID:        uuid.NewString(),
		Email:         email,
		Name:          name,
		Image:         identity.Picture,
		EmailVerified: identity.EmailVerified,
		AuditFields:   domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	user.LinkAccount(identity.Provider, identity.ProviderUserID, now)
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError("An account with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user from oauth identity: %w", err)
	}
	s.LogInfo(ctx, "Created user from OAuth identity", slog.String("user_id", user.UserID))
	return &user, nil
}
