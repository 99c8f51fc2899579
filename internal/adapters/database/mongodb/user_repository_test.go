package mongodb

import (
	"testing"
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/SscSPs/inkpress/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestProfileUpdate_NeverWritesCredentials(t *testing.T) {
	hash := "$2a$10$hash"
	name := "ada"
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	user := domain.User{
		UserID: "u1", Email: "ada@example.com", UserName: &name, Name: "Ada",
		PasswordHash: &hash, SessionVersion: 3, EmailVerified: true,
		AuditFields: domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	user.LinkAccount(domain.ProviderGoogle, "g-1", now)

	update := profileUpdate(models.FromDomainUser(user))

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "ada", set["username"])
	assert.Equal(t, "Ada", set["name"])
	assert.Equal(t, true, set["email_verified"])
	assert.Equal(t, now, set["updated_at"])
	assert.Len(t, set["accounts"], 1)
	for _, field := range []string{"password_hash", "session_version", "email", "created_at", "_id"} {
		assert.NotContains(t, set, field)
	}
	assert.NotContains(t, update, "$unset")
}

func TestProfileUpdate_ClearedUsernameIsUnset(t *testing.T) {
	update := profileUpdate(models.FromDomainUser(domain.User{UserID: "u1", Name: "Ada"}))

	set := update["$set"].(bson.M)
	assert.NotContains(t, set, "username")
	assert.Equal(t, bson.M{"username": ""}, update["$unset"])
}
