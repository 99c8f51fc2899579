package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/SscSPs/inkpress/internal/middleware"
	"github.com/SscSPs/inkpress/internal/platform/validation"
	"github.com/gin-gonic/gin"
)

// handleServiceError writes the response for an error returned by a service.
// AppErrors carry their own status and message. Bare sentinels map to a status
// with a fixed message, and anything else is a 500. The cause is only logged.
func handleServiceError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error(fallback, slog.String("error", err.Error()))
		} else {
			logger.Warn(fallback, slog.Int("status", appErr.Code), slog.String("error", err.Error()))
		}
		c.JSON(appErr.Code, dto.ErrorResponse{Error: appErr.Message, Details: appErr.Details})
		return
	}

	status, message := http.StatusInternalServerError, "An unexpected error occurred"
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrDuplicate):
		status, message = http.StatusConflict, "Resource already exists"
	case errors.Is(err, apperrors.ErrConcurrentUpdate):
		status, message = http.StatusConflict, "Resource was modified by another request"
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, "Invalid request"
	case apperrors.IsAuthError(err):
		status, message = http.StatusUnauthorized, "Invalid or expired credentials"
	}

	if status == http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
	} else {
		logger.Warn(fallback, slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, dto.ErrorResponse{Error: message})
}

// bindJSON decodes the body into req. Malformed JSON is a 400; payloads that
// decode but fail validation are a 422 with per-field details.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings.
func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if validation.IsValidationError(err) {
		logger.Warn("Request failed validation", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: validation.ToDetails(err),
		})
		return
	}
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
}

// requirePrincipal returns the authenticated caller or writes a 401.
func requirePrincipal(c *gin.Context) (*domain.Principal, bool) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required"})
		return nil, false
	}
	return p, true
}
