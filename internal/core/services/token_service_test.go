package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/SscSPs/inkpress/internal/core/services"
	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_SessionRoundTrip(t *testing.T) {
	cfg := testConfig()
	svc := services.NewTokenService(cfg)
	user := &domain.User{UserID: "user-1", Email: "a@example.com", SessionVersion: 3}

	issued, err := svc.IssueSessionToken(context.Background(), user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	sess, err := svc.ParseSessionToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, "a@example.com", sess.Email)
	assert.Equal(t, 3, sess.Version)
	assert.NotEmpty(t, sess.TokenID)
	assert.Equal(t, domain.SessionKindManual, sess.Kind())
}

func TestTokenService_ExpiredTokenNeverResolves(t *testing.T) {
	cfg := testConfig()
	svc := services.NewTokenService(cfg)

	token, err := utils.GenerateJWT(utils.TokenClaims{UserID: "user-1", Scope: utils.ScopeSession},
		cfg.JWTSecret, time.Hour, cfg.JWTIssuer, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = svc.ParseSessionToken(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestTokenService_TamperedTokenNeverResolves(t *testing.T) {
	cfg := testConfig()
	svc := services.NewTokenService(cfg)
	issued, err := svc.IssueSessionToken(context.Background(), &domain.User{UserID: "user-1"})
	require.NoError(t, err)

	other := testConfig()
	other.JWTSecret = "a-different-secret"
	forged, err := services.NewTokenService(other).IssueSessionToken(context.Background(), &domain.User{UserID: "user-2"})
	require.NoError(t, err)

	// Keep the original signature but swap in another payload.
	parts := strings.Split(issued.Token, ".")
	forgedParts := strings.Split(forged.Token, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = svc.ParseSessionToken(context.Background(), tampered)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.ParseSessionToken(context.Background(), forged.Token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.ParseSessionToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestTokenService_ScopesAreIsolated(t *testing.T) {
	cfg := testConfig()
	svc := services.NewTokenService(cfg)
	user := &domain.User{UserID: "user-1", Email: "a@example.com", SessionVersion: 1}

	reset, err := svc.IssuePasswordResetToken(context.Background(), user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), reset.ExpiresAt, 5*time.Second)

	_, err = svc.ParseSessionToken(context.Background(), reset.Token)
	assert.ErrorIs(t, err, apperrors.ErrTokenScope)

	userID, version, err := svc.ParsePasswordResetToken(context.Background(), reset.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, 1, version)

	session, err := svc.IssueSessionToken(context.Background(), user)
	require.NoError(t, err)
	_, _, err = svc.ParsePasswordResetToken(context.Background(), session.Token)
	assert.ErrorIs(t, err, apperrors.ErrTokenScope)
}
