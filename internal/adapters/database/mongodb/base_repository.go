package mongodb

import (
	"errors"
	"fmt"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names.
const (
	usersCollection    = "users"
	blogsCollection    = "blogs"
	postsCollection    = "posts"
	sessionsCollection = "oauth_sessions"
)

// BaseRepository provides the database handle shared by every repository.
type BaseRepository struct {
	DB *mongo.Database
}

// contentCollection maps a content kind to the collection holding it.
func (r *BaseRepository) contentCollection(kind domain.ContentKind) (*mongo.Collection, error) {
	switch kind {
	case domain.KindBlog:
		return r.DB.Collection(blogsCollection), nil
	case domain.KindPost:
		return r.DB.Collection(postsCollection), nil
	default:
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
}

// mapWriteError turns duplicate key failures into apperrors.ErrDuplicate.
func mapWriteError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapFindError turns mongo.ErrNoDocuments into apperrors.ErrNotFound.
func mapFindError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
