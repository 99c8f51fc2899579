package middleware

import (
	"context"

	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// principalKey is the key used to store the resolved caller in the request context.
const principalKey = contextKey("principal")

// authErrorKey remembers why resolution failed so page redirects can explain it.
const authErrorKey = contextKey("authError")

// WithPrincipal returns a copy of ctx carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx returns the principal stored by the auth middleware, if any.
func PrincipalFromCtx(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok && p != nil
}

// GetPrincipalFromContext retrieves the authenticated principal from the Gin context.
func GetPrincipalFromContext(c *gin.Context) (*domain.Principal, bool) {
	return PrincipalFromCtx(c.Request.Context())
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	p, ok := GetPrincipalFromContext(c)
	if !ok || p.UserID() == "" {
		return "", false
	}
	return p.UserID(), true
}
