package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// CookieNames names the two session cookies.
type CookieNames struct {
	Token        string
	OAuthSession string
}

// ExtractCredentials reads session credentials from the request. The token cookie
// wins over an Authorization header.
func ExtractCredentials(c *gin.Context, names CookieNames) portssvc.Credentials {
	var creds portssvc.Credentials
	if v, err := c.Cookie(names.Token); err == nil && v != "" {
		creds.ManualToken = v
	} else if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			creds.ManualToken = strings.TrimSpace(parts[1])
		}
	}
	if v, err := c.Cookie(names.OAuthSession); err == nil && v != "" {
		creds.OAuthSessionToken = v
	}
	return creds
}

// resolvePrincipal authenticates the request once. The outcome is cached on the
// request so the gatekeeper and route middleware share it.
func resolvePrincipal(c *gin.Context, auth portssvc.AuthenticatorSvc, names CookieNames) (*domain.Principal, error) {
	if p, ok := GetPrincipalFromContext(c); ok {
		return p, nil
	}
	if v, ok := c.Get(string(authErrorKey)); ok {
		if err, ok := v.(error); ok {
			return nil, err
		}
	}

	creds := ExtractCredentials(c, names)
	if creds.Empty() {
		c.Set(string(authErrorKey), apperrors.ErrUnauthorized)
		return nil, apperrors.ErrUnauthorized
	}

	principal, err := auth.Authenticate(c.Request.Context(), creds)
	if err != nil {
		c.Set(string(authErrorKey), err)
		return nil, err
	}

	logger := GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("user_id", principal.UserID()),
		slog.String("session_kind", string(principal.Session.Kind())),
	)
	ctx := WithPrincipal(c.Request.Context(), principal)
	c.Request = c.Request.WithContext(WithLogger(ctx, logger))
	return principal, nil
}

// AuthMiddleware rejects requests without a valid session with a JSON 401.
func AuthMiddleware(auth portssvc.AuthenticatorSvc, names CookieNames) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolvePrincipal(c, auth, names); err != nil {
			abortUnauthenticated(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller when credentials are present and
// otherwise lets the request through anonymously.
func OptionalAuthMiddleware(auth portssvc.AuthenticatorSvc, names CookieNames) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolvePrincipal(c, auth, names); err != nil && !errors.Is(err, apperrors.ErrUnauthorized) {
			GetLoggerFromCtx(c.Request.Context()).Debug("Ignoring unusable credentials", slog.String("error", err.Error()))
		}
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, err error) {
	logger := GetLoggerFromCtx(c.Request.Context())
	if !apperrors.IsAuthError(err) {
		logger.Error("Failed to resolve session", slog.String("error", err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}
	logger.Warn("Unauthenticated request", slog.String("reason", AuthFailureReason(err)))
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": authErrorMessage(err)})
}

// AuthFailureReason is a short machine-readable code for a resolution failure.
func AuthFailureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired), errors.Is(err, apperrors.ErrSessionExpired):
		return "expired"
	case errors.Is(err, apperrors.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, apperrors.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenScope):
		return "invalid"
	default:
		return "unauthenticated"
	}
}

func authErrorMessage(err error) string {
	switch AuthFailureReason(err) {
	case "expired":
		return "Session has expired"
	case "revoked":
		return "Session has been revoked"
	case "invalid":
		return "Invalid token"
	default:
		return "Authentication required"
	}
}
