package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/SscSPs/inkpress/internal/middleware"
	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/gin-gonic/gin"
)

// contentHandler serves one content kind. Blogs and posts share the handler and
// differ only in kind.
type contentHandler struct {
	kind           domain.ContentKind
	contentService portssvc.ContentSvcFacade
	posthog        *utils.PosthogClientWrapper
}

func newContentHandler(kind domain.ContentKind, cs portssvc.ContentSvcFacade, ph *utils.PosthogClientWrapper) *contentHandler {
	return &contentHandler{kind: kind, contentService: cs, posthog: ph}
}

// registerContentRoutes registers CRUD routes for kind under rg (e.g. /api/blogs).
func registerContentRoutes(rg *gin.RouterGroup, kind domain.ContentKind, cs portssvc.ContentSvcFacade, ph *utils.PosthogClientWrapper, requireAuth, optionalAuth gin.HandlerFunc) {
	h := newContentHandler(kind, cs, ph)

	rg.GET("", optionalAuth, h.listContent)
	rg.GET("/:id", optionalAuth, h.getContent)
	rg.POST("", requireAuth, h.createContent)
	rg.PUT("/:id", requireAuth, h.updateContent)
	rg.DELETE("/:id", requireAuth, h.deleteContent)
	rg.POST("/:id/view", h.recordView)
}

// viewerID is the caller's id, or "" for anonymous requests.
func viewerID(c *gin.Context) string {
	id, _ := middleware.GetUserIDFromContext(c)
	return id
}

// listContent godoc
// @Summary List blogs or posts
// @Description Paginated listing. Anonymous callers see published items; mine=true lists the caller's items of any status.
// @Tags content
// @Produce json
// @Param kind path string true "blogs or posts"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 50)" default(10)
// @Param tag query string false "Tag filter"
// @Param category query string false "Category filter"
// @Param author query string false "Author id or username"
// @Param q query string false "Search text"
// @Param sort query string false "newest or popular" default(newest)
// @Param status query string false "draft or published (with mine=true)"
// @Param mine query bool false "Only the caller's items"
// @Success 200 {object} dto.ListContentResponse
// @Failure 401 {object} dto.ErrorResponse "mine=true without a session"
// @Failure 422 {object} dto.ErrorResponse
// @Router /{kind} [get]
func (h *contentHandler) listContent(c *gin.Context) {
	var params dto.ListContentParams
	if !bindQuery(c, &params) {
		return
	}

	resp, err := h.contentService.ListContent(c.Request.Context(), h.kind, params, viewerID(c))
	if err != nil {
		handleServiceError(c, err, "Failed to list content")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getContent godoc
// @Summary Get a blog or post
// @Description Looks an item up by id or slug. Drafts are only visible to their author.
// @Tags content
// @Produce json
// @Param kind path string true "blogs or posts"
// @Param id path string true "ID or slug"
// @Success 200 {object} dto.ContentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /{kind}/{id} [get]
func (h *contentHandler) getContent(c *gin.Context) {
	item, err := h.contentService.GetContent(c.Request.Context(), h.kind, c.Param("id"), viewerID(c))
	if err != nil {
		handleServiceError(c, err, "Failed to get content")
		return
	}
	c.JSON(http.StatusOK, dto.ToContentResponse(item))
}

// createContent godoc
// @Summary Create a blog or post
// @Tags content
// @Accept json
// @Produce json
// @Param kind path string true "blogs or posts"
// @Param content body dto.CreateContentRequest true "Content"
// @Success 201 {object} dto.ContentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Title already used"
// @Failure 422 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /{kind} [post]
func (h *contentHandler) createContent(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.contentService.CreateContent(c.Request.Context(), h.kind, req, p.UserID())
	if err != nil {
		handleServiceError(c, err, "Failed to create content")
		return
	}
	if item.IsPublished() {
		h.trackPublished(c, item)
	}
	c.JSON(http.StatusCreated, dto.ToContentResponse(item))
}

// updateContent godoc
// @Summary Update a blog or post
// @Description Only the author may update. Omitted fields are kept.
// @Tags content
// @Accept json
// @Produce json
// @Param kind path string true "blogs or posts"
// @Param id path string true "ID"
// @Param content body dto.UpdateContentRequest true "Fields to change"
// @Success 200 {object} dto.ContentResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /{kind}/{id} [put]
func (h *contentHandler) updateContent(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.UpdateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.contentService.UpdateContent(c.Request.Context(), h.kind, c.Param("id"), req, p.UserID())
	if err != nil {
		handleServiceError(c, err, "Failed to update content")
		return
	}
	if req.Status != nil && item.IsPublished() {
		h.trackPublished(c, item)
	}
	c.JSON(http.StatusOK, dto.ToContentResponse(item))
}

// deleteContent godoc
// @Summary Delete a blog or post
// @Tags content
// @Param kind path string true "blogs or posts"
// @Param id path string true "ID"
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /{kind}/{id} [delete]
func (h *contentHandler) deleteContent(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if err := h.contentService.DeleteContent(c.Request.Context(), h.kind, c.Param("id"), p.UserID()); err != nil {
		handleServiceError(c, err, "Failed to delete content")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Content deleted", slog.String("content_id", c.Param("id")), slog.String("kind", string(h.kind)))
	c.Status(http.StatusNoContent)
}

// recordView godoc
// @Summary Record a view
// @Description Increments the view counter of a published item.
// @Tags content
// @Produce json
// @Param kind path string true "blogs or posts"
// @Param id path string true "ID"
// @Success 200 {object} dto.ViewResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /{kind}/{id}/view [post]
func (h *contentHandler) recordView(c *gin.Context) {
	views, err := h.contentService.RecordView(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to record view")
		return
	}
	c.JSON(http.StatusOK, dto.ViewResponse{Views: views})
}

func (h *contentHandler) trackPublished(c *gin.Context, item *domain.Content) {
	middleware.PosthogEvent(c, h.posthog, "content_published", map[string]any{
		"kind":         string(item.Kind),
		"content_id":   item.ID,
		"reading_time": item.ReadingTime,
		"tags":         item.Tags,
	})
}
