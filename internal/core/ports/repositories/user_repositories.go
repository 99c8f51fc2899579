package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

// UserReader defines read operations for user data. Lookups that find nothing
// return apperrors.ErrNotFound.
type UserReader interface {
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
}

// UserWriter defines write operations for user data. Unique key violations
// (email, username, provider identity) return apperrors.ErrDuplicate.
type UserWriter interface {
	SaveUser(ctx context.Context, user domain.User) error
	// UpdateProfile writes the profile fields (name, username, image), email
	// verification, linked accounts and updated_at. It never touches the
	// password hash or the session version.
	UpdateProfile(ctx context.Context, user domain.User) error
	// UpdatePassword stores passwordHash and moves the session version from
	// expectedVersion to expectedVersion+1. It returns apperrors.ErrConcurrentUpdate
	// when the stored version is no longer expectedVersion.
	UpdatePassword(ctx context.Context, userID, passwordHash string, expectedVersion int, updatedAt time.Time) error
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
