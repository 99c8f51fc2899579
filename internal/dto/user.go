package dto

import (
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

type UserResponse struct {
	UserID        string                `json:"userID"`
	Username      string                `json:"username,omitempty"`
	Name          string                `json:"name"`
	Email         string                `json:"email"`
	Image         string                `json:"image,omitempty"`
	EmailVerified bool                  `json:"emailVerified"`
	HasPassword   bool                  `json:"hasPassword"`
	Providers     []domain.AuthProvider `json:"providers,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func ToUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		UserID:        user.GetUserID(),
		Username:      user.GetUsername(),
		Name:          user.GetName(),
		Email:         user.GetEmail(),
		Image:         user.Image,
		EmailVerified: user.EmailVerified,
		HasPassword:   user.HasPassword(),
		CreatedAt:     user.CreatedAt,
	}
	for _, a := range user.Accounts {
		resp.Providers = append(resp.Providers, a.Provider)
	}
	return resp
}
