package mongodb

import (
	"context"
	"fmt"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/SscSPs/inkpress/internal/models"
	"github.com/SscSPs/inkpress/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSessionRepository stores OAuth sessions keyed by the hash of their token.
// Expired documents are reaped by the TTL index on expires.
type MongoSessionRepository struct {
	BaseRepository
}

func newMongoSessionRepository(db *mongo.Database) portsrepo.OAuthSessionRepository {
	return &MongoSessionRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.OAuthSessionRepository = (*MongoSessionRepository)(nil)

func (r *MongoSessionRepository) sessions() *mongo.Collection {
	return r.DB.Collection(sessionsCollection)
}

func (r *MongoSessionRepository) SaveSession(ctx context.Context, session domain.OAuthSessionRecord) error {
	if _, err := r.sessions().InsertOne(ctx, models.FromDomainSession(session)); err != nil {
		return mapWriteError("failed to save oauth session", err)
	}
	return nil
}

func (r *MongoSessionRepository) FindSessionByToken(ctx context.Context, sessionToken string) (*domain.OAuthSessionRecord, error) {
	var m models.OAuthSession
	err := r.sessions().FindOne(ctx, bson.M{"_id": utils.HashOpaqueToken(sessionToken)}).Decode(&m)
	if err != nil {
		return nil, mapFindError("failed to find oauth session", err)
	}
	return m.ToDomain(sessionToken), nil
}

func (r *MongoSessionRepository) DeleteSession(ctx context.Context, sessionToken string) error {
	if _, err := r.sessions().DeleteOne(ctx, bson.M{"_id": utils.HashOpaqueToken(sessionToken)}); err != nil {
		return fmt.Errorf("failed to delete oauth session: %w", err)
	}
	return nil
}

func (r *MongoSessionRepository) DeleteSessionsForUser(ctx context.Context, userID string) error {
	if _, err := r.sessions().DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete oauth sessions for user %s: %w", userID, err)
	}
	return nil
}
