package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/SscSPs/inkpress/internal/platform/config"
	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenService signs and verifies the session and password-reset tokens.
type tokenService struct {
	BaseService
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

func (s *tokenService) issue(user *domain.User, scope utils.TokenScope) (*dto.IssuedToken, error) {
	now := s.Now()
	expiry := s.cfg.JWTExpiryDuration
	if scope == utils.ScopePasswordReset {
		expiry = s.cfg.ResetTokenExpiry
	}

	claims := utils.TokenClaims{
		UserID:           user.UserID,
		Scope:            scope,
		Version:          user.SessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{ID: uuid.NewString()},
	}
	if scope == utils.ScopeSession {
		claims.Email = user.Email
	}

	token, err := utils.GenerateJWT(claims, s.cfg.JWTSecret, expiry, s.cfg.JWTIssuer, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s token: %w", scope, err)
	}
	return &dto.IssuedToken{Token: token, ExpiresAt: now.Add(expiry)}, nil
}

// IssueSessionToken creates a new JWT session token for the given user.
func (s *tokenService) IssueSessionToken(ctx context.Context, user *domain.User) (*dto.IssuedToken, error) {
	return s.issue(user, utils.ScopeSession)
}

// IssuePasswordResetToken creates a short-lived token scoped to the reset flow.
func (s *tokenService) IssuePasswordResetToken(ctx context.Context, user *domain.User) (*dto.IssuedToken, error) {
	return s.issue(user, utils.ScopePasswordReset)
}

func (s *tokenService) ParseSessionToken(ctx context.Context, token string) (*domain.ManualSession, error) {
	claims, err := utils.ParseAndValidateJWT(token, s.cfg.JWTSecret, s.cfg.JWTIssuer, utils.ScopeSession)
	if err != nil {
		return nil, mapTokenError(err)
	}
	sess := &domain.ManualSession{
		UserID:  claims.UserID,
		Email:   claims.Email,
		TokenID: claims.ID,
		Version: claims.Version,
	}
	if claims.ExpiresAt != nil {
		sess.Expiry = claims.ExpiresAt.Time
	}
	return sess, nil
}

func (s *tokenService) ParsePasswordResetToken(ctx context.Context, token string) (string, int, error) {
	claims, err := utils.ParseAndValidateJWT(token, s.cfg.JWTSecret, s.cfg.JWTIssuer, utils.ScopePasswordReset)
	if err != nil {
		return "", 0, mapTokenError(err)
	}
	return claims.UserID, claims.Version, nil
}

// mapTokenError folds jwt errors into the apperrors taxonomy. Anything that is
// not an expiry or scope problem is reported as an invalid token.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, utils.ErrWrongScope):
		return fmt.Errorf("%w: %v", apperrors.ErrTokenScope, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}
}
