package models

import (
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

// AccountRecord is a linked OAuth identity as stored alongside its user.
type AccountRecord struct {
	Provider       string    `bson:"provider" json:"provider" db:"provider"`
	ProviderUserID string    `bson:"provider_user_id" json:"providerUserID" db:"provider_user_id"`
	LinkedAt       time.Time `bson:"linked_at" json:"linkedAt" db:"linked_at"`
}

// User is the persisted shape of domain.User.
type User struct {
	UserID         string          `bson:"_id" db:"user_id"`
	Email          string          `bson:"email" db:"email"`
	Username       *string         `bson:"username,omitempty" db:"username"`
	Name           string          `bson:"name" db:"name"`
	Image          string          `bson:"image,omitempty" db:"image"`
	PasswordHash   *string         `bson:"password_hash,omitempty" db:"password_hash"`
	EmailVerified  bool            `bson:"email_verified" db:"email_verified"`
	Accounts       []AccountRecord `bson:"accounts,omitempty" db:"accounts"`
	SessionVersion int             `bson:"session_version" db:"session_version"`
	AuditFields    `bson:",inline"`
}

// AuditFields are the timestamps every persisted record carries.
type AuditFields struct {
	CreatedAt time.Time `bson:"created_at" db:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" db:"updated_at"`
}

// FromDomainUser converts a domain user into its persisted form.
func FromDomainUser(u domain.User) User {
	accounts := make([]AccountRecord, 0, len(u.Accounts))
	for _, a := range u.Accounts {
		accounts = append(accounts, AccountRecord{
			Provider:       string(a.Provider),
			ProviderUserID: a.ProviderUserID,
			LinkedAt:       a.LinkedAt,
		})
	}
	return User{
		UserID:         u.UserID,
		Email:          u.Email,
		Username:       u.UserName,
		Name:           u.Name,
		Image:          u.Image,
		PasswordHash:   u.PasswordHash,
		EmailVerified:  u.EmailVerified,
		Accounts:       accounts,
		SessionVersion: u.SessionVersion,
		AuditFields:    AuditFields{CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt},
	}
}

// ToDomain converts the stored record back to a domain user.
func (m User) ToDomain() *domain.User {
	accounts := make([]domain.OAuthAccount, 0, len(m.Accounts))
	for _, a := range m.Accounts {
		accounts = append(accounts, domain.OAuthAccount{
			Provider:       domain.AuthProvider(a.Provider),
			ProviderUserID: a.ProviderUserID,
			LinkedAt:       a.LinkedAt.UTC(),
		})
	}
	return &domain.User{
		UserID:         m.UserID,
		Email:          m.Email,
		UserName:       m.Username,
		Name:           m.Name,
		Image:          m.Image,
		PasswordHash:   m.PasswordHash,
		EmailVerified:  m.EmailVerified,
		Accounts:       accounts,
		SessionVersion: m.SessionVersion,
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
		},
	}
}
