package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/inkpress/internal/apperrors"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/dto"
	"github.com/google/uuid"
)

// MaxUploadBytes bounds a single image upload.
const MaxUploadBytes = 5 << 20

// imageExtensions maps the sniffed types accepted for upload to the stored extension.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type uploadService struct {
	BaseService
	storage portssvc.ObjectStorage
}

// NewUploadService creates the upload service. storage may be nil when uploads are not configured.
func NewUploadService(storage portssvc.ObjectStorage) portssvc.UploadSvc {
	return &uploadService{storage: storage}
}

func (s *uploadService) Enabled() bool {
	return s.storage != nil
}

func (s *uploadService) UploadImage(ctx context.Context, userID string, filename string, declared string, size int64, r io.Reader) (*dto.UploadResponse, error) {
	if s.storage == nil {
		return nil, apperrors.NewServiceUnavailableError("File uploads are not configured")
	}
	if size > MaxUploadBytes {
		return nil, apperrors.NewAppError(http.StatusRequestEntityTooLarge, "File must be at most 5 MiB", apperrors.ErrValidation)
	}

	// Trust the bytes, not the client's header.
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	detected := http.DetectContentType(head)
	ext, ok := imageExtensions[detected]
	if !ok {
		return nil, apperrors.NewValidationError("Validation failed", map[string]string{"file": "must be a JPEG, PNG, GIF or WebP image"})
	}
	if declared != detected {
		s.LogWarn(ctx, "Upload content type differs from its bytes",
			slog.String("filename", filename), slog.String("declared", declared), slog.String("detected", detected))
	}
	objectName := fmt.Sprintf("uploads/%s/%s%s", userID, uuid.NewString(), ext)

	url, err := s.storage.Put(ctx, objectName, detected, io.LimitReader(br, MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	s.LogInfo(ctx, "Image uploaded", slog.String("object", objectName), slog.Int64("size", size))
	return &dto.UploadResponse{URL: url, Name: objectName}, nil
}
