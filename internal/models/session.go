package models

import (
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/SscSPs/inkpress/internal/utils"
)

// OAuthSession is a stored OAuth session. Only the hash of the cookie value is kept.
type OAuthSession struct {
	TokenHash string    `bson:"_id" db:"token_hash"`
	UserID    string    `bson:"user_id" db:"user_id"`
	Provider  string    `bson:"provider" db:"provider"`
	Expires   time.Time `bson:"expires" db:"expires"`
	CreatedAt time.Time `bson:"created_at" db:"created_at"`
}

// FromDomainSession hashes the raw session token of r for storage.
func FromDomainSession(r domain.OAuthSessionRecord) OAuthSession {
	return OAuthSession{
		TokenHash: utils.HashOpaqueToken(r.SessionToken),
		UserID:    r.UserID,
		Provider:  string(r.Provider),
		Expires:   r.Expires,
		CreatedAt: r.CreatedAt,
	}
}

// ToDomain rebuilds the record. The raw token is not recoverable from the hash,
// so the caller supplies the value it looked the record up with.
func (m OAuthSession) ToDomain(rawToken string) *domain.OAuthSessionRecord {
	return &domain.OAuthSessionRecord{
		SessionToken: rawToken,
		UserID:       m.UserID,
		Provider:     domain.AuthProvider(m.Provider),
		Expires:      m.Expires.UTC(),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}
