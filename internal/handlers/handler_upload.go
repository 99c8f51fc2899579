package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/SscSPs/inkpress/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxUploadRequestBytes caps the multipart body; the service enforces the per-file limit.
const maxUploadRequestBytes = 6 << 20

type uploadHandler struct {
	uploadService portssvc.UploadSvc
}

func registerUploadRoutes(rg *gin.RouterGroup, us portssvc.UploadSvc) {
	h := &uploadHandler{uploadService: us}
	rg.POST("/uploads", h.uploadImage)
}

// uploadImage godoc
// @Summary Upload an image
// @Description Stores an image (max 5 MiB) and returns its public URL.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse "Not an image"
// @Failure 503 {object} dto.ErrorResponse "Storage not configured"
// @Security CookieAuth
// @Router /auth/uploads [post]
func (h *uploadHandler) uploadImage(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !h.uploadService.Enabled() {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "File uploads are not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadRequestBytes)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "File is too large"})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Missing upload file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "A file field is required"})
		return
	}
	defer file.Close()

	resp, err := h.uploadService.UploadImage(c.Request.Context(), p.UserID(),
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		handleServiceError(c, err, "Failed to upload image")
		return
	}
	c.JSON(http.StatusCreated, resp)
}
