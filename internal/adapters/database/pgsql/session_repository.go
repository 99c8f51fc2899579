package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/SscSPs/inkpress/internal/models"
	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSessionRepository struct {
	BaseRepository
}

func newPgxSessionRepository(db *pgxpool.Pool) portsrepo.OAuthSessionRepository {
	return &PgxSessionRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.OAuthSessionRepository = (*PgxSessionRepository)(nil)

func (r *PgxSessionRepository) SaveSession(ctx context.Context, session domain.OAuthSessionRecord) error {
	m := models.FromDomainSession(session)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO oauth_sessions (token_hash, user_id, provider, expires, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`, m.TokenHash, m.UserID, m.Provider, m.Expires, m.CreatedAt)
	if err != nil {
		return mapWriteError("failed to save oauth session", err)
	}
	return nil
}

func (r *PgxSessionRepository) FindSessionByToken(ctx context.Context, sessionToken string) (*domain.OAuthSessionRecord, error) {
	var m models.OAuthSession
	err := r.Pool.QueryRow(ctx, `
		SELECT token_hash, user_id, provider, expires, created_at
		FROM oauth_sessions
		WHERE token_hash = $1;
	`, utils.HashOpaqueToken(sessionToken)).Scan(&m.TokenHash, &m.UserID, &m.Provider, &m.Expires, &m.CreatedAt)
	if err != nil {
		return nil, mapFindError("failed to find oauth session", err)
	}
	return m.ToDomain(sessionToken), nil
}

func (r *PgxSessionRepository) DeleteSession(ctx context.Context, sessionToken string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM oauth_sessions WHERE token_hash = $1;`, utils.HashOpaqueToken(sessionToken))
	if err != nil {
		return fmt.Errorf("failed to delete oauth session: %w", err)
	}
	return nil
}

// DeleteSessionsForUser also reaps any expired sessions, which Postgres has no TTL for.
func (r *PgxSessionRepository) DeleteSessionsForUser(ctx context.Context, userID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM oauth_sessions WHERE user_id = $1 OR expires < NOW();`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete oauth sessions for user %s: %w", userID, err)
	}
	return nil
}
