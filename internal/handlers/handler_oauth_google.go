package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/SscSPs/inkpress/internal/apperrors"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/SscSPs/inkpress/internal/middleware"
	"github.com/SscSPs/inkpress/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// googleOAuthHandler handles the Google sign-in flow. A successful login opens a
// persisted OAuth session referenced by the session cookie.
type googleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthSvcFacade
	cookies            *cookieManager
	loginPath          string
	dashboardPath      string
}

func newGoogleOAuthHandler(gs portssvc.GoogleOAuthSvcFacade, cookies *cookieManager) *googleOAuthHandler {
	return &googleOAuthHandler{
		googleOAuthService: gs,
		cookies:            cookies,
		loginPath:          "/login",
		dashboardPath:      "/dashboard",
	}
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(auth *gin.RouterGroup, gs portssvc.GoogleOAuthSvcFacade, cookies *cookieManager) {
	h := newGoogleOAuthHandler(gs, cookies)
	googleRoutes := auth.Group("/google")
	{
		googleRoutes.GET("/login", h.login)
		googleRoutes.GET("/callback", h.callback)
		googleRoutes.POST("/exchange-code", h.exchangeCode)
	}
}

// safeNext keeps post-login redirects on this site.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

func (h *googleOAuthHandler) loginRedirect(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.loginPath+"?"+url.Values{"error": {reason}}.Encode())
}

// login godoc
// @Summary Start Google sign-in
// @Description Sets a state cookie and redirects to Google's consent screen.
// @Tags oauth
// @Param next query string false "Path to return to after login"
// @Success 307
// @Failure 503 {object} dto.ErrorResponse "Google sign-in not configured"
// @Router /auth/google/login [get]
func (h *googleOAuthHandler) login(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.googleOAuthService.Enabled() {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Google sign-in is not configured"})
		return
	}

	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		handleServiceError(c, err, "Failed to start Google sign-in")
		return
	}

	next := safeNext(c.Query("next"), h.dashboardPath)
	h.cookies.setOAuthState(c, pagination.EncodeMultiFieldToken(state, next))
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuthService.GetGoogleLoginURL(ctx, state))
}

// callback godoc
// @Summary Google sign-in callback
// @Description Verifies state, completes the login, sets the OAuth session cookie and redirects.
// @Tags oauth
// @Param state query string true "State echoed by Google"
// @Param code query string true "Authorization code"
// @Success 302
// @Router /auth/google/callback [get]
func (h *googleOAuthHandler) callback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	raw, _ := c.Cookie(oauthStateCookie)
	h.cookies.clearOAuthState(c)

	if e := c.Query("error"); e != "" {
		logger.Info("Google sign-in cancelled", slog.String("google_error", e))
		h.loginRedirect(c, "oauth_denied")
		return
	}

	fields, err := pagination.DecodeMultiFieldToken(raw)
	state := c.Query("state")
	if raw == "" || err != nil || len(fields) != 2 || state == "" ||
		subtle.ConstantTimeCompare([]byte(fields[0]), []byte(state)) != 1 {
		logger.Warn("OAuth state mismatch")
		h.loginRedirect(c, "oauth_state")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.loginRedirect(c, "oauth_failed")
		return
	}

	user, session, err := h.googleOAuthService.LoginWithCode(ctx, code)
	if err != nil {
		logger.Warn("Google sign-in failed", slog.String("error", err.Error()))
		reason := "oauth_failed"
		if errors.Is(err, apperrors.ErrDuplicate) {
			reason = "account_exists"
		}
		h.loginRedirect(c, reason)
		return
	}

	h.cookies.setOAuthSession(c, session.SessionToken, session.Expires)
	logger.Info("User signed in with Google", slog.String("user_id", user.UserID))
	c.Redirect(http.StatusFound, safeNext(fields[1], h.dashboardPath))
}

// exchangeCode godoc
// @Summary Exchange authorization code
// @Description JSON variant of the callback for clients that run the consent step themselves.
// @Tags oauth
// @Accept json
// @Produce json
// @Param code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 401 {object} dto.ErrorResponse "Invalid Google ID token"
// @Failure 409 {object} dto.ErrorResponse "Email belongs to another account"
// @Failure 504 {object} dto.ErrorResponse "Google unreachable"
// @Router /auth/google/exchange-code [post]
func (h *googleOAuthHandler) exchangeCode(c *gin.Context) {
	if !h.googleOAuthService.Enabled() {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Google sign-in is not configured"})
		return
	}
	var req dto.ExchangeCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	user, session, err := h.googleOAuthService.LoginWithCode(c.Request.Context(), req.Code)
	if err != nil {
		handleServiceError(c, err, "Google sign-in failed")
		return
	}

	h.cookies.setOAuthSession(c, session.SessionToken, session.Expires)
	c.JSON(http.StatusOK, dto.AuthResponse{
		Message:   "Login successful",
		User:      dto.ToUserResponse(user),
		ExpiresAt: &session.Expires,
	})
}
