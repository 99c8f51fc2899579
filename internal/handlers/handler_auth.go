package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/SscSPs/inkpress/internal/middleware"
	"github.com/gin-gonic/gin"
)

// authHandler handles credential based authentication requests.
type authHandler struct {
	authService portssvc.AuthSvcFacade
	cookies     *cookieManager
}

func newAuthHandler(as portssvc.AuthSvcFacade, cookies *cookieManager) *authHandler {
	return &authHandler{authService: as, cookies: cookies}
}

// registerAuthRoutes sets up the credential routes under /api/auth.
// limited is applied to the endpoints that accept a password or send mail.
func registerAuthRoutes(auth *gin.RouterGroup, as portssvc.AuthSvcFacade, cookies *cookieManager, requireAuth, optionalAuth, limited gin.HandlerFunc) {
	h := newAuthHandler(as, cookies)

	auth.POST("/signup", limited, h.signup)
	auth.POST("/login", limited, h.login)
	auth.POST("/logout", optionalAuth, h.logout)
	auth.POST("/change-password", requireAuth, h.changePassword)
	auth.POST("/forgot-password", limited, h.forgotPassword)
	auth.POST("/reset-password", limited, h.resetPassword)
}

// signup godoc
// @Summary Register a new user
// @Description Creates a local account. Validation failures return per-field details.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.SignupRequest true "Signup details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed JSON"
// @Failure 409 {object} dto.ErrorResponse "Email or username taken"
// @Failure 422 {object} dto.ErrorResponse "Validation failed"
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/signup [post]
func (h *authHandler) signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "Failed to register user")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("User registered", slog.String("user_id", user.UserID))
	c.JSON(http.StatusCreated, dto.AuthResponse{Message: "User created successfully", User: dto.ToUserResponse(user)})
}

// login godoc
// @Summary User login
// @Description Verifies credentials and sets the HttpOnly session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "Login failed")
		return
	}

	h.cookies.setSessionToken(c, token.Token, token.ExpiresAt)
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("User logged in", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, dto.AuthResponse{
		Message:   "Login successful",
		User:      dto.ToUserResponse(user),
		ExpiresAt: &token.ExpiresAt,
	})
}

// logout godoc
// @Summary Log out
// @Description Revokes the current session, if any, and clears both session cookies.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	if p, ok := middleware.GetPrincipalFromContext(c); ok {
		if err := h.authService.Logout(c.Request.Context(), p); err != nil {
			h.cookies.clearSessions(c)
			handleServiceError(c, err, "Failed to revoke session")
			return
		}
	}
	h.cookies.clearSessions(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// changePassword godoc
// @Summary Change password
// @Description Sets a new password and signs out every session of the user.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ChangePasswordRequest true "Passwords"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /auth/change-password [post]
func (h *authHandler) changePassword(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), p, req); err != nil {
		handleServiceError(c, err, "Failed to change password")
		return
	}

	h.cookies.clearSessions(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password changed. Please log in again."})
}

// forgotPassword godoc
// @Summary Request a password reset
// @Description Always answers 200 so callers cannot enumerate registered addresses.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ForgotPasswordRequest true "Email"
// @Success 200 {object} dto.MessageResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *authHandler) forgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req); err != nil {
		handleServiceError(c, err, "Failed to process password reset request")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "If an account exists for that email, a reset link has been sent."})
}

// resetPassword godoc
// @Summary Reset password
// @Description Consumes an emailed reset token and sets a new password.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse "Token invalid, expired or already used"
// @Failure 422 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/reset-password [post]
func (h *authHandler) resetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		handleServiceError(c, err, "Failed to reset password")
		return
	}
	h.cookies.clearSessions(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been reset. Please log in."})
}
