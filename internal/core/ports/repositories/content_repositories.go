package repositories

import (
	"context"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

// ContentSort selects the ordering of a listing.
type ContentSort string

const (
	SortNewest  ContentSort = "newest"
	SortPopular ContentSort = "popular"
)

// ContentQuery filters a content listing. Zero values mean "no filter".
type ContentQuery struct {
	Kind     domain.ContentKind
	AuthorID string
	Status   domain.ContentStatus
	Tag      string
	Category string
	// Search matches title, excerpt and tags when no search index is configured.
	Search string
	// IDs restricts the listing to the given ids (used with an external search index).
	IDs    []string
	Sort   ContentSort
	Offset int
	Limit  int
}

// ContentReader defines read operations for blogs and posts.
type ContentReader interface {
	FindContentByID(ctx context.Context, kind domain.ContentKind, id string) (*domain.Content, error)
	FindContentBySlug(ctx context.Context, kind domain.ContentKind, slug string) (*domain.Content, error)
	// ListContent returns one page of matching items and the total number of matches.
	ListContent(ctx context.Context, q ContentQuery) ([]domain.Content, int64, error)
}

// ContentWriter defines write operations. A slug clash within a kind returns apperrors.ErrDuplicate.
type ContentWriter interface {
	SaveContent(ctx context.Context, content domain.Content) error
	UpdateContent(ctx context.Context, content domain.Content) error
	DeleteContent(ctx context.Context, kind domain.ContentKind, id string) error
	// IncrementViews bumps the counter of a published item and returns the new value.
	IncrementViews(ctx context.Context, kind domain.ContentKind, id string) (int64, error)
}

// ContentStatsReader feeds the dashboard.
type ContentStatsReader interface {
	AuthorStats(ctx context.Context, kind domain.ContentKind, authorID string, topN int) (*domain.KindStats, error)
}

// ContentRepositoryFacade combines all content-related repository interfaces.
type ContentRepositoryFacade interface {
	ContentReader
	ContentWriter
	ContentStatsReader
}
