package models

import (
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

// Content is the persisted shape of a blog or post. Both kinds share it; Mongo
// keeps them in separate collections, Postgres in one table keyed by kind.
type Content struct {
	ID          string     `bson:"_id" db:"content_id"`
	Kind        string     `bson:"kind" db:"kind"`
	Title       string     `bson:"title" db:"title"`
	Slug        string     `bson:"slug" db:"slug"`
	Body        string     `bson:"body" db:"body"`
	Excerpt     string     `bson:"excerpt" db:"excerpt"`
	CoverImage  string     `bson:"cover_image,omitempty" db:"cover_image"`
	AuthorID    string     `bson:"author_id" db:"author_id"`
	Tags        []string   `bson:"tags" db:"tags"`
	Category    string     `bson:"category" db:"category"`
	Status      string     `bson:"status" db:"status"`
	Views       int64      `bson:"views" db:"views"`
	ReadingTime int        `bson:"reading_time" db:"reading_time"`
	PublishedAt *time.Time `bson:"published_at" db:"published_at"`
	AuditFields `bson:",inline"`
}

// FromDomainContent converts a domain content item into its persisted form.
func FromDomainContent(c domain.Content) Content {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return Content{
		ID:          c.ID,
		Kind:        string(c.Kind),
		Title:       c.Title,
		Slug:        c.Slug,
		Body:        c.Body,
		Excerpt:     c.Excerpt,
		CoverImage:  c.CoverImage,
		AuthorID:    c.AuthorID,
		Tags:        tags,
		Category:    c.Category,
		Status:      string(c.Status),
		Views:       c.Views,
		ReadingTime: c.ReadingTime,
		PublishedAt: c.PublishedAt,
		AuditFields: AuditFields{CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
	}
}

// ToDomain converts the stored record back to domain content.
func (m Content) ToDomain() domain.Content {
	var publishedAt *time.Time
	if m.PublishedAt != nil {
		t := m.PublishedAt.UTC()
		publishedAt = &t
	}
	return domain.Content{
		ID:          m.ID,
		Kind:        domain.ContentKind(m.Kind),
		Title:       m.Title,
		Slug:        m.Slug,
		Body:        m.Body,
		Excerpt:     m.Excerpt,
		CoverImage:  m.CoverImage,
		AuthorID:    m.AuthorID,
		Tags:        m.Tags,
		Category:    m.Category,
		Status:      domain.ContentStatus(m.Status),
		Views:       m.Views,
		ReadingTime: m.ReadingTime,
		PublishedAt: publishedAt,
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
		},
	}
}

// ToDomainContentSlice converts a page of stored records.
func ToDomainContentSlice(ms []Content) []domain.Content {
	ds := make([]domain.Content, len(ms))
	for i, m := range ms {
		ds[i] = m.ToDomain()
	}
	return ds
}
