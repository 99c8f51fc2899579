package services

import (
	"context"
	"io"

	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/SscSPs/inkpress/internal/dto"
)

// ContentReaderSvc defines read operations for blogs and posts. viewerID is empty for anonymous callers.
type ContentReaderSvc interface {
	// ListContent returns one page of items. Anonymous listings only see published items.
	ListContent(ctx context.Context, kind domain.ContentKind, params dto.ListContentParams, viewerID string) (*dto.ListContentResponse, error)
	// GetContent finds an item by id or slug. Drafts are only visible to their author.
	GetContent(ctx context.Context, kind domain.ContentKind, idOrSlug string, viewerID string) (*domain.Content, error)
}

// ContentWriterSvc defines write operations. Only the author may change an item.
type ContentWriterSvc interface {
	CreateContent(ctx context.Context, kind domain.ContentKind, req dto.CreateContentRequest, authorID string) (*domain.Content, error)
	UpdateContent(ctx context.Context, kind domain.ContentKind, id string, req dto.UpdateContentRequest, userID string) (*domain.Content, error)
	DeleteContent(ctx context.Context, kind domain.ContentKind, id string, userID string) error
	// RecordView increments the view counter of a published item.
	RecordView(ctx context.Context, kind domain.ContentKind, id string) (int64, error)
}

// ContentSvcFacade combines all content-related service interfaces
type ContentSvcFacade interface {
	ContentReaderSvc
	ContentWriterSvc
}

// DashboardSvc aggregates author analytics.
type DashboardSvc interface {
	GetStats(ctx context.Context, userID string) (*domain.DashboardStats, error)
}

// UploadSvc stores user images.
type UploadSvc interface {
	// Enabled reports whether object storage is configured.
	Enabled() bool
	UploadImage(ctx context.Context, userID string, filename string, contentType string, size int64, r io.Reader) (*dto.UploadResponse, error)
}
