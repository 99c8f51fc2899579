package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_SetStatus_PublishedAtLifecycle(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)
	t3 := t0.Add(3 * time.Hour)

	c := domain.Content{Status: domain.StatusDraft}
	c.SetStatus(domain.StatusDraft, t0)
	assert.Nil(t, c.PublishedAt, "draft must not carry a publish timestamp")

	c.SetStatus(domain.StatusPublished, t1)
	require.NotNil(t, c.PublishedAt)
	assert.Equal(t, t1, *c.PublishedAt)

	// Staying published keeps the original timestamp.
	c.SetStatus(domain.StatusPublished, t2)
	require.NotNil(t, c.PublishedAt)
	assert.Equal(t, t1, *c.PublishedAt)

	c.SetStatus(domain.StatusDraft, t2)
	assert.Nil(t, c.PublishedAt, "reverting to draft clears publishedAt")
	assert.Equal(t, domain.StatusDraft, c.Status)

	c.SetStatus(domain.StatusPublished, t3)
	require.NotNil(t, c.PublishedAt)
	assert.Equal(t, t3, *c.PublishedAt)
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name     string
		kind     domain.ContentKind
		category string
		want     string
		wantErr  bool
	}{
		{name: "blog known category is lower-cased", kind: domain.KindBlog, category: "Technology", want: "technology"},
		{name: "blog empty category defaults to other", kind: domain.KindBlog, category: "", want: "other"},
		{name: "blog unknown category rejected", kind: domain.KindBlog, category: "cooking", wantErr: true},
		{name: "post category is free-form", kind: domain.KindPost, category: " Cooking Tips ", want: "Cooking Tips"},
		{name: "post empty category allowed", kind: domain.KindPost, category: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NormalizeCategory(tt.kind, tt.category)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := domain.NormalizeTags([]string{" Go ", "go", "", "Web", "web ", "api"})
	assert.Equal(t, []string{"go", "web", "api"}, got)
	assert.Empty(t, domain.NormalizeTags(nil))
}

func TestReadingTimeMinutes(t *testing.T) {
	assert.Equal(t, 1, domain.ReadingTimeMinutes(0))
	assert.Equal(t, 1, domain.ReadingTimeMinutes(1))
	assert.Equal(t, 1, domain.ReadingTimeMinutes(200))
	assert.Equal(t, 2, domain.ReadingTimeMinutes(201))
	assert.Equal(t, 5, domain.ReadingTimeMinutes(1000))
}
