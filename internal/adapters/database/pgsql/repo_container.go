package pgsql

import (
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	contentRepo := newPgxContentRepository(dbPool)
	sessionRepo := newPgxSessionRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:         userRepo,
		ContentRepo:      contentRepo,
		OAuthSessionRepo: sessionRepo,
	}
}
