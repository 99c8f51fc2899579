package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/gin-gonic/gin"
)

type userHandler struct {
	userService portssvc.UserSvcFacade
}

func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{userService: us}
}

// registerUserRoutes registers the current-user routes. The group is already authenticated.
func registerUserRoutes(rg *gin.RouterGroup, us portssvc.UserSvcFacade) {
	h := newUserHandler(us)
	rg.GET("/me", h.getMe)
	rg.PUT("/profile", h.updateProfile)
}

// getMe godoc
// @Summary Current user
// @Description Returns the authenticated user and the session that authenticated the request.
// @Tags users
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /auth/me [get]
func (h *userHandler) getMe(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToMeResponse(p))
}

// updateProfile godoc
// @Summary Update profile
// @Description Updates name, username and image of the authenticated user. Omitted fields are kept.
// @Tags users
// @Accept json
// @Produce json
// @Param profile body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Username taken"
// @Failure 422 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /auth/profile [put]
func (h *userHandler) updateProfile(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), p.UserID(), req)
	if err != nil {
		handleServiceError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}
