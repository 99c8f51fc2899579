package middleware_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var names = middleware.CookieNames{Token: "token", OAuthSession: "session_token"}

// countingAuthenticator accepts a single token and counts lookups.
type countingAuthenticator struct {
	calls int
	err   error
}

func (a *countingAuthenticator) ResolveSession(ctx context.Context, creds portssvc.Credentials) (domain.Session, error) {
	p, err := a.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	return p.Session, nil
}

func (a *countingAuthenticator) Authenticate(_ context.Context, creds portssvc.Credentials) (*domain.Principal, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	if creds.ManualToken != "good" {
		return nil, apperrors.ErrTokenInvalid
	}
	return &domain.Principal{
		Session: &domain.ManualSession{UserID: "u1", Expiry: time.Now().Add(time.Hour)},
		User:    &domain.User{UserID: "u1"},
	}, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestClassify(t *testing.T) {
	cfg := middleware.GatekeeperConfig{Rules: middleware.DefaultGateRules()}

	tests := []struct {
		path string
		want middleware.RouteClass
	}{
		{"/login", middleware.RoutePublicOnly},
		{"/signup", middleware.RoutePublicOnly},
		{"/dashboard", middleware.RouteProtectedPage},
		{"/dashboard/posts/new", middleware.RouteProtectedPage},
		{"/dashboards", middleware.RoutePassThrough},
		{"/api/auth/me", middleware.RouteProtectedAPI},
		{"/api/auth/dashboard/stats", middleware.RouteProtectedAPI},
		{"/api/auth/login", middleware.RoutePassThrough},
		{"/api/blogs", middleware.RoutePassThrough},
		{"/", middleware.RoutePassThrough},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Classify(tt.path))
		})
	}
}

func TestClassify_LongestPrefixWins(t *testing.T) {
	cfg := middleware.GatekeeperConfig{Rules: []middleware.GateRule{
		{Prefix: "/api", Class: middleware.RouteProtectedAPI},
		{Prefix: "/api/public", Class: middleware.RoutePassThrough},
	}}
	assert.Equal(t, middleware.RoutePassThrough, cfg.Classify("/api/public/feed"))
	assert.Equal(t, middleware.RouteProtectedAPI, cfg.Classify("/api/private"))
}

func TestAuthFailureReason(t *testing.T) {
	assert.Equal(t, "expired", middleware.AuthFailureReason(apperrors.ErrTokenExpired))
	assert.Equal(t, "expired", middleware.AuthFailureReason(fmt.Errorf("oauth: %w", apperrors.ErrSessionExpired)))
	assert.Equal(t, "revoked", middleware.AuthFailureReason(apperrors.ErrTokenRevoked))
	assert.Equal(t, "invalid", middleware.AuthFailureReason(apperrors.ErrTokenScope))
	assert.Equal(t, "user_not_found", middleware.AuthFailureReason(apperrors.ErrUserNotFound))
	assert.Equal(t, "unauthenticated", middleware.AuthFailureReason(apperrors.ErrUnauthorized))
}

func TestExtractCredentials(t *testing.T) {
	newCtx := func(req *http.Request) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		return c
	}

	t.Run("cookie wins over header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
		req.Header.Set("Authorization", "Bearer from-header")
		assert.Equal(t, "from-cookie", middleware.ExtractCredentials(newCtx(req), names).ManualToken)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer  abc ")
		assert.Equal(t, "abc", middleware.ExtractCredentials(newCtx(req), names).ManualToken)
	})

	t.Run("both credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "t"})
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "s"})
		creds := middleware.ExtractCredentials(newCtx(req), names)
		assert.Equal(t, portssvc.Credentials{ManualToken: "t", OAuthSessionToken: "s"}, creds)
	})

	t.Run("non bearer scheme ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		assert.True(t, middleware.ExtractCredentials(newCtx(req), names).Empty())
	})
}

func TestGatekeeperAndAuthMiddlewareShareResolution(t *testing.T) {
	auth := &countingAuthenticator{}
	r := gin.New()
	r.Use(middleware.Gatekeeper(auth, middleware.GatekeeperConfig{Rules: middleware.DefaultGateRules(), Cookies: names}))
	r.GET("/api/auth/me", middleware.AuthMiddleware(auth, names), func(c *gin.Context) {
		id, ok := middleware.GetUserIDFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "good"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
	assert.Equal(t, 1, auth.calls)
}

func TestAuthMiddleware_InfrastructureFailureIs500(t *testing.T) {
	auth := &countingAuthenticator{err: fmt.Errorf("find user: %w", context.DeadlineExceeded)}
	r := gin.New()
	r.GET("/private", middleware.AuthMiddleware(auth, names), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "good"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOptionalAuthMiddleware_IgnoresBadCredentials(t *testing.T) {
	auth := &countingAuthenticator{}
	r := gin.New()
	r.GET("/feed", middleware.OptionalAuthMiddleware(auth, names), func(c *gin.Context) {
		_, ok := middleware.GetPrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "tampered"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestStructuredLoggingMiddleware_EchoesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/ping", func(c *gin.Context) {
		assert.NotNil(t, middleware.GetLoggerFromCtx(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "6f1c2a8e-3b9d-4c57-9e0f-2a7b4d8c1e55")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "6f1c2a8e-3b9d-4c57-9e0f-2a7b4d8c1e55", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Request-ID"))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}
