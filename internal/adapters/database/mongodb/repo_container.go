package mongodb

import (
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

func NewRepositoryProvider(db *mongo.Database) portsrepo.RepositoryProvider {
	userRepo := newMongoUserRepository(db)
	contentRepo := newMongoContentRepository(db)
	sessionRepo := newMongoSessionRepository(db)

	return portsrepo.RepositoryProvider{
		UserRepo:         userRepo,
		ContentRepo:      contentRepo,
		OAuthSessionRepo: sessionRepo,
	}
}
