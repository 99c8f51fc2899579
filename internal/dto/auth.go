package dto

import (
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

// SignupRequest is the payload of POST /api/auth/signup.
type SignupRequest struct {
	UserName string `json:"userName" binding:"omitempty,username"`
	Name     string `json:"name" binding:"omitempty,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpwd"`
}

// LoginRequest is the payload of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the payload of POST /api/auth/change-password.
// CurrentPassword may be omitted only by accounts without a password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required,strongpwd"`
}

// ForgotPasswordRequest is the payload of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the payload of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,strongpwd"`
}

// ExchangeCodeRequest is the payload of POST /api/auth/google/exchange-code.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// UpdateProfileRequest uses pointers to differentiate between omitted fields and zero values.
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	UserName *string `json:"userName" binding:"omitempty,username"`
	Image    *string `json:"image" binding:"omitempty,url"`
}

// IssuedToken is a freshly signed session token.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Message   string       `json:"message"`
	User      UserResponse `json:"user"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

// MessageResponse is the generic success envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the generic failure envelope.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// SessionResponse describes the session that authenticated the request.
type SessionResponse struct {
	Kind      domain.SessionKind `json:"kind"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
}

// ToMeResponse builds the /me payload from a resolved principal.
func ToMeResponse(p *domain.Principal) MeResponse {
	return MeResponse{
		User: ToUserResponse(p.User),
		Session: SessionResponse{
			Kind:      p.Session.Kind(),
			ExpiresAt: p.Session.ExpiresAt(),
		},
	}
}
