package dto

import (
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
)

// CreateContentRequest is the payload for creating a blog or post.
type CreateContentRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=200"`
	Body       string   `json:"body" binding:"required"`
	Excerpt    string   `json:"excerpt" binding:"omitempty,max=500"`
	CoverImage string   `json:"coverImage" binding:"omitempty,url"`
	Tags       []string `json:"tags" binding:"omitempty,max=10,dive,max=40"`
	Category   string   `json:"category" binding:"omitempty,max=60"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published"`
}

// UpdateContentRequest uses pointers to differentiate between omitted fields and zero values.
type UpdateContentRequest struct {
	Title      *string   `json:"title" binding:"omitempty,min=3,max=200"`
	Body       *string   `json:"body" binding:"omitempty,min=1"`
	Excerpt    *string   `json:"excerpt" binding:"omitempty,max=500"`
	CoverImage *string   `json:"coverImage" binding:"omitempty,url"`
	Tags       *[]string `json:"tags" binding:"omitempty,max=10,dive,max=40"`
	Category   *string   `json:"category" binding:"omitempty,max=60"`
	Status     *string   `json:"status" binding:"omitempty,oneof=draft published"`
}

// ListContentParams defines query parameters for listing blogs or posts.
type ListContentParams struct {
	Page     int    `form:"page,default=1" binding:"min=1,max=10000"`
	Limit    int    `form:"limit,default=10" binding:"min=1,max=50"`
	Tag      string `form:"tag"`
	Category string `form:"category"`
	Author   string `form:"author"`
	Q        string `form:"q" binding:"max=200"`
	Sort     string `form:"sort,default=newest" binding:"oneof=newest popular"`
	Status   string `form:"status" binding:"omitempty,oneof=draft published"`
	Mine     bool   `form:"mine"`
}

// ContentResponse defines the data returned for a blog or post.
type ContentResponse struct {
	ID          string               `json:"id"`
	Kind        domain.ContentKind   `json:"kind"`
	Title       string               `json:"title"`
	Slug        string               `json:"slug"`
	Body        string               `json:"body,omitempty"`
	Excerpt     string               `json:"excerpt"`
	CoverImage  string               `json:"coverImage,omitempty"`
	AuthorID    string               `json:"authorID"`
	Tags        []string             `json:"tags"`
	Category    string               `json:"category"`
	Status      domain.ContentStatus `json:"status"`
	Views       int64                `json:"views"`
	ReadingTime int                  `json:"readingTime"`
	PublishedAt *time.Time           `json:"publishedAt"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ListContentResponse wraps one page of content.
type ListContentResponse struct {
	Items      []ContentResponse `json:"items"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"totalPages"`
}

// ViewResponse is returned after a view is recorded.
type ViewResponse struct {
	Views int64 `json:"views"`
}

// ToContentResponse converts a domain.Content to ContentResponse DTO.
func ToContentResponse(c *domain.Content) ContentResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return ContentResponse{
		ID:          c.ID,
		Kind:        c.Kind,
		Title:       c.Title,
		Slug:        c.Slug,
		Body:        c.Body,
		Excerpt:     c.Excerpt,
		CoverImage:  c.CoverImage,
		AuthorID:    c.AuthorID,
		Tags:        tags,
		Category:    c.Category,
		Status:      c.Status,
		Views:       c.Views,
		ReadingTime: c.ReadingTime,
		PublishedAt: c.PublishedAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToContentSummaries converts items for listings; bodies are omitted.
func ToContentSummaries(items []domain.Content) []ContentResponse {
	out := make([]ContentResponse, len(items))
	for i := range items {
		out[i] = ToContentResponse(&items[i])
		out[i].Body = ""
	}
	return out
}
