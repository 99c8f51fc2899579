package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/gin-gonic/gin"
)

type dashboardHandler struct {
	dashboardService portssvc.DashboardSvc
}

func registerDashboardRoutes(rg *gin.RouterGroup, ds portssvc.DashboardSvc) {
	h := &dashboardHandler{dashboardService: ds}
	rg.GET("/dashboard/stats", h.getStats)
}

// getStats godoc
// @Summary Dashboard analytics
// @Description Per-kind totals, views, top items and recent items of the authenticated author.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardStatsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /auth/dashboard/stats [get]
func (h *dashboardHandler) getStats(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	stats, err := h.dashboardService.GetStats(c.Request.Context(), p.UserID())
	if err != nil {
		handleServiceError(c, err, "Failed to load dashboard stats")
		return
	}
	c.JSON(http.StatusOK, dto.ToDashboardStatsResponse(stats))
}
