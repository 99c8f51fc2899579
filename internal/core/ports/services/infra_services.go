package services

import (
	"context"
	"io"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

// Mailer delivers an email, directly or through a queue.
type Mailer interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

// ContentSearcher is an optional full-text index over published content.
type ContentSearcher interface {
	Index(ctx context.Context, content domain.Content) error
	Remove(ctx context.Context, kind domain.ContentKind, id string) error
	// Search returns the ids of matching items, best match first.
	Search(ctx context.Context, kind domain.ContentKind, query string, limit int) ([]string, error)
}

// ObjectStorage stores uploaded files.
type ObjectStorage interface {
	// Put writes r under objectName and returns its public URL.
	Put(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error)
}
