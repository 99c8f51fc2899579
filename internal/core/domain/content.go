package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// ContentKind distinguishes the two parallel content types.
type ContentKind string

const (
	KindBlog ContentKind = "blog"
	KindPost ContentKind = "post"
)

// Valid reports whether k is a known kind.
func (k ContentKind) Valid() bool {
	return k == KindBlog || k == KindPost
}

// ContentStatus is the publication state of a content item.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
)

// Valid reports whether s is a known status.
func (s ContentStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// BlogCategories is the closed category set for blogs. Posts take free-form categories.
var BlogCategories = []string{"technology", "programming", "design", "business", "lifestyle", "other"}

// WordsPerMinute drives the reading time estimate.
const WordsPerMinute = 200

// MaxTags bounds the tag set of a single item.
const MaxTags = 10

// Content is a blog or post.
type Content struct {
	ID          string        `json:"id"`
	Kind        ContentKind   `json:"kind"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Body        string        `json:"body"`
	Excerpt     string        `json:"excerpt"`
	CoverImage  string        `json:"coverImage,omitempty"`
	AuthorID    string        `json:"authorID"`
	Tags        []string      `json:"tags"`
	Category    string        `json:"category"`
	Status      ContentStatus `json:"status"`
	Views       int64         `json:"views"`
	ReadingTime int           `json:"readingTime"`
	PublishedAt *time.Time    `json:"publishedAt"`
	AuditFields
}

// IsPublished reports whether the item is publicly visible.
func (c *Content) IsPublished() bool {
	return c.Status == StatusPublished
}

// SetStatus moves the item to status, maintaining PublishedAt: it is set when the
// item first enters published, left untouched while it stays published and
// cleared when it goes back to draft.
func (c *Content) SetStatus(status ContentStatus, now time.Time) {
	switch status {
	case StatusPublished:
		if c.Status != StatusPublished || c.PublishedAt == nil {
			t := now
			c.PublishedAt = &t
		}
	case StatusDraft:
		c.PublishedAt = nil
	}
	c.Status = status
}

// NormalizeCategory applies the per-kind category policy.
func NormalizeCategory(kind ContentKind, category string) (string, error) {
	category = strings.TrimSpace(category)
	if kind != KindBlog {
		return category, nil
	}
	lc := strings.ToLower(category)
	if lc == "" {
		return "other", nil
	}
	if !slices.Contains(BlogCategories, lc) {
		return "", fmt.Errorf("category must be one of: %s", strings.Join(BlogCategories, ", "))
	}
	return lc, nil
}

// NormalizeTags lower-cases, trims and de-duplicates tags, preserving first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ReadingTimeMinutes estimates minutes to read wordCount words; never less than one.
func ReadingTimeMinutes(wordCount int) int {
	if wordCount <= 0 {
		return 1
	}
	return int(math.Ceil(float64(wordCount) / WordsPerMinute))
}
