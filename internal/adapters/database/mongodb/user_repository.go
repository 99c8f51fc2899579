package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/SscSPs/inkpress/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUserRepository struct {
	BaseRepository
}

func newMongoUserRepository(db *mongo.Database) portsrepo.UserRepositoryFacade {
	return &MongoUserRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.UserRepositoryFacade = (*MongoUserRepository)(nil)

func (r *MongoUserRepository) users() *mongo.Collection {
	return r.DB.Collection(usersCollection)
}

func (r *MongoUserRepository) findOne(ctx context.Context, op string, filter bson.M) (*domain.User, error) {
	var m models.User
	if err := r.users().FindOne(ctx, filter).Decode(&m); err != nil {
		return nil, mapFindError(op, err)
	}
	return m.ToDomain(), nil
}

func (r *MongoUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, "failed to find user by ID", bson.M{"_id": userID})
}

func (r *MongoUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "failed to find user by email", bson.M{"email": email})
}

func (r *MongoUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "failed to find user by username", bson.M{"username": username})
}

func (r *MongoUserRepository) FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	return r.findOne(ctx, "failed to find user by provider", bson.M{
		"accounts": bson.M{"$elemMatch": bson.M{
			"provider":         string(provider),
			"provider_user_id": providerUserID,
		}},
	})
}

func (r *MongoUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if _, err := r.users().InsertOne(ctx, models.FromDomainUser(user)); err != nil {
		return mapWriteError("failed to save user", err)
	}
	return nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, user domain.User) error {
	res, err := r.users().UpdateOne(ctx, bson.M{"_id": user.UserID}, profileUpdate(models.FromDomainUser(user)))
	if err != nil {
		return mapWriteError("failed to update user profile", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s not found: %w", user.UserID, apperrors.ErrNotFound)
	}
	return nil
}

// profileUpdate builds the $set for the profile columns. A cleared username is
// unset so the sparse unique index ignores the document.
func profileUpdate(m models.User) bson.M {
	set := bson.M{
		"name":           m.Name,
		"image":          m.Image,
		"email_verified": m.EmailVerified,
		"accounts":       m.Accounts,
		"updated_at":     m.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if m.Username != nil {
		set["username"] = *m.Username
	} else {
		update["$unset"] = bson.M{"username": ""}
	}
	return update
}

func (r *MongoUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, expectedVersion int, updatedAt time.Time) error {
	res, err := r.users().UpdateOne(ctx,
		bson.M{"_id": userID, "session_version": expectedVersion},
		bson.M{
			"$set": bson.M{"password_hash": passwordHash, "updated_at": updatedAt},
			"$inc": bson.M{"session_version": 1},
		})
	if err != nil {
		return mapWriteError("failed to update password", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := r.users().CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("failed to check user %s: %w", userID, err)
	}
	if n == 0 {
		return fmt.Errorf("user %s not found: %w", userID, apperrors.ErrNotFound)
	}
	return fmt.Errorf("session version of user %s moved past %d: %w", userID, expectedVersion, apperrors.ErrConcurrentUpdate)
}
