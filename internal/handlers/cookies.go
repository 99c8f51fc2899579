package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/inkpress/internal/middleware"
	"github.com/SscSPs/inkpress/internal/platform/config"
	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStatePath   = "/api/auth/google"
	oauthStateTTL    = 10 * time.Minute
)

// cookieManager writes the session cookies. All of them are HttpOnly and
// SameSite=Lax, and Secure in production.
type cookieManager struct {
	names  middleware.CookieNames
	domain string
	secure bool
	now    func() time.Time
}

func newCookieManager(cfg *config.Config) *cookieManager {
	return &cookieManager{
		names:  cookieNames(cfg),
		domain: cfg.CookieDomain,
		secure: cfg.IsProduction,
		now:    time.Now,
	}
}

// cookieNames reads the configured session cookie names.
func cookieNames(cfg *config.Config) middleware.CookieNames {
	return middleware.CookieNames{Token: cfg.TokenCookieName, OAuthSession: cfg.OAuthSessionCookieName}
}

func (m *cookieManager) set(c *gin.Context, name, value, path string, expires time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, m.maxAgeFrom(expires), path, m.domain, m.secure, true)
}

func (m *cookieManager) clear(c *gin.Context, name, path string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, path, m.domain, m.secure, true)
}

// maxAgeFrom converts an absolute expiry into a Max-Age. A past expiry deletes the cookie.
func (m *cookieManager) maxAgeFrom(expires time.Time) int {
	sec := int(expires.Sub(m.now()).Seconds())
	if sec <= 0 {
		return -1
	}
	return sec
}

// setSessionToken stores a manual session token. Any OAuth session cookie is
// dropped so the browser holds a single session.
func (m *cookieManager) setSessionToken(c *gin.Context, token string, expires time.Time) {
	m.set(c, m.names.Token, token, "/", expires)
	m.clear(c, m.names.OAuthSession, "/")
}

// setOAuthSession stores an OAuth session cookie. The manual token cookie is
// dropped because it would otherwise take priority.
func (m *cookieManager) setOAuthSession(c *gin.Context, token string, expires time.Time) {
	m.set(c, m.names.OAuthSession, token, "/", expires)
	m.clear(c, m.names.Token, "/")
}

func (m *cookieManager) clearSessions(c *gin.Context) {
	m.clear(c, m.names.Token, "/")
	m.clear(c, m.names.OAuthSession, "/")
}

func (m *cookieManager) setOAuthState(c *gin.Context, value string) {
	m.set(c, oauthStateCookie, value, oauthStatePath, m.now().Add(oauthStateTTL))
}

func (m *cookieManager) clearOAuthState(c *gin.Context) {
	m.clear(c, oauthStateCookie, oauthStatePath)
}
