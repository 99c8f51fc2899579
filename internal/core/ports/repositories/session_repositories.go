package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

// OAuthSessionRepository persists provider-backed sessions. Implementations store
// only a hash of SessionToken; lookups take the raw token.
type OAuthSessionRepository interface {
	SaveSession(ctx context.Context, session domain.OAuthSessionRecord) error
	FindSessionByToken(ctx context.Context, sessionToken string) (*domain.OAuthSessionRecord, error)
	DeleteSession(ctx context.Context, sessionToken string) error
	DeleteSessionsForUser(ctx context.Context, userID string) error
}

// TokenRevocationStore remembers revoked session token ids until they would have
// expired anyway.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
