package domain

import (
	"errors"
	"time"
)

// AuthProvider identifies where a user's credential comes from.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// ErrNoAuthMethod is returned when a user record has neither a password nor a linked account.
var ErrNoAuthMethod = errors.New("user must have a password or a linked OAuth account")

// OAuthAccount links a user to an identity at an external provider.
type OAuthAccount struct {
	Provider       AuthProvider `json:"provider"`
	ProviderUserID string       `json:"providerUserID"`
	LinkedAt       time.Time    `json:"linkedAt"`
}

// User represents a user of the application in the domain.
type User struct {
	UserID        string         `json:"userID"`
	Email         string         `json:"email"`
	UserName      *string        `json:"userName,omitempty"`
	Name          string         `json:"name"`
	Image         string         `json:"image,omitempty"`
	PasswordHash  *string        `json:"-"`
	EmailVerified bool           `json:"emailVerified"`
	Accounts      []OAuthAccount `json:"accounts,omitempty"`
	// SessionVersion is embedded in issued session tokens; bumping it revokes them all.
	SessionVersion int `json:"-"`
	AuditFields
}

func (u *User) GetUserID() string { return u.UserID }

func (u *User) GetUsername() string {
	if u.UserName == nil {
		return ""
	}
	return *u.UserName
}

func (u *User) GetName() string { return u.Name }

func (u *User) GetEmail() string { return u.Email }

// HasPassword reports whether the user can sign in with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Account returns the linked account for provider, if any.
func (u *User) Account(provider AuthProvider) (OAuthAccount, bool) {
	for _, a := range u.Accounts {
		if a.Provider == provider {
			return a, true
		}
	}
	return OAuthAccount{}, false
}

// LinkAccount attaches an external identity, replacing an existing link for the same provider.
func (u *User) LinkAccount(provider AuthProvider, providerUserID string, now time.Time) {
	for i := range u.Accounts {
		if u.Accounts[i].Provider == provider {
			u.Accounts[i].ProviderUserID = providerUserID
			return
		}
	}
	u.Accounts = append(u.Accounts, OAuthAccount{Provider: provider, ProviderUserID: providerUserID, LinkedAt: now})
}

// SetPassword stores a new hash and revokes every outstanding session token.
func (u *User) SetPassword(hash string) {
	u.PasswordHash = &hash
	u.SessionVersion++
}

// Validate enforces the at-least-one-auth-method invariant.
func (u *User) Validate() error {
	if !u.HasPassword() && len(u.Accounts) == 0 {
		return ErrNoAuthMethod
	}
	return nil
}

// ExternalIdentity is a verified identity asserted by an OAuth provider.
type ExternalIdentity struct {
	Provider       AuthProvider
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	Picture        string
}
