package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestUser_Validate(t *testing.T) {
	hash := "$2a$10$hash"
	empty := ""

	tests := []struct {
		name    string
		user    domain.User
		wantErr error
	}{
		{name: "password only", user: domain.User{PasswordHash: &hash}},
		{name: "oauth only", user: domain.User{Accounts: []domain.OAuthAccount{{Provider: domain.ProviderGoogle, ProviderUserID: "g-1"}}}},
		{name: "no method", user: domain.User{}, wantErr: domain.ErrNoAuthMethod},
		{name: "empty hash counts as no password", user: domain.User{PasswordHash: &empty}, wantErr: domain.ErrNoAuthMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUser_SetPasswordBumpsSessionVersion(t *testing.T) {
	u := domain.User{SessionVersion: 3}
	u.SetPassword("new-hash")
	assert.True(t, u.HasPassword())
	assert.Equal(t, 4, u.SessionVersion)
}

func TestUser_LinkAccount(t *testing.T) {
	now := time.Now()
	u := domain.User{}
	u.LinkAccount(domain.ProviderGoogle, "g-1", now)
	u.LinkAccount(domain.ProviderGoogle, "g-2", now)

	assert.Len(t, u.Accounts, 1)
	acct, ok := u.Account(domain.ProviderGoogle)
	assert.True(t, ok)
	assert.Equal(t, "g-2", acct.ProviderUserID)
	_, ok = u.Account(domain.ProviderLocal)
	assert.False(t, ok)
}
