package mongodb

import (
	"testing"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/SscSPs/inkpress/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilter_Empty(t *testing.T) {
	assert.Empty(t, buildFilter(portsrepo.ContentQuery{Kind: domain.KindBlog}))
}

func TestBuildFilter_AllFields(t *testing.T) {
	f := buildFilter(portsrepo.ContentQuery{
		Kind:     domain.KindPost,
		AuthorID: "u1",
		Status:   domain.StatusPublished,
		Tag:      "Go",
		Category: "Tech.News",
		IDs:      []string{"a", "b"},
		Search:   "hello (world)",
	})

	assert.Equal(t, "u1", f["author_id"])
	assert.Equal(t, "published", f["status"])
	assert.Equal(t, "go", f["tags"])
	assert.Equal(t, primitive.Regex{Pattern: `^Tech\.News$`, Options: "i"}, f["category"])
	assert.Equal(t, bson.M{"$in": []string{"a", "b"}}, f["_id"])

	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)
	assert.Equal(t, bson.M{"title": primitive.Regex{Pattern: `hello \(world\)`, Options: "i"}}, or[0])
	assert.Equal(t, bson.M{"tags": "hello (world)"}, or[2])
}

func TestBuildFilter_EmptyIDsStillRestricts(t *testing.T) {
	f := buildFilter(portsrepo.ContentQuery{IDs: []string{}})
	assert.Equal(t, bson.M{"$in": []string{}}, f["_id"])
}

func TestSortFor(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortFor(portsrepo.SortNewest))
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortFor(""))
	assert.Equal(t, bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: -1}}, sortFor(portsrepo.SortPopular))
}

func TestContentCollection_UnknownKind(t *testing.T) {
	r := &BaseRepository{}
	_, err := r.contentCollection("video")
	assert.Error(t, err)
}

func TestContentUpdate_LeavesViewsToIncrements(t *testing.T) {
	update := contentUpdate(models.FromDomainContent(domain.Content{
		ID: "c1", Kind: domain.KindBlog, Title: "Hello", Slug: "hello", AuthorID: "u1", Views: 5,
		Status: domain.StatusPublished,
	}))

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Len(t, update, 1)
	assert.Equal(t, "Hello", set["title"])
	assert.Equal(t, "published", set["status"])
	assert.Equal(t, []string{}, set["tags"])
	for _, field := range []string{"views", "author_id", "created_at", "_id", "kind"} {
		assert.NotContains(t, set, field)
	}
}
