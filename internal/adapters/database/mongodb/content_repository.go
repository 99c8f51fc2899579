package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/SscSPs/inkpress/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoContentRepository struct {
	BaseRepository
}

func newMongoContentRepository(db *mongo.Database) portsrepo.ContentRepositoryFacade {
	return &MongoContentRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.ContentRepositoryFacade = (*MongoContentRepository)(nil)

// summaryProjection leaves out the body for listings and dashboard widgets.
var summaryProjection = bson.M{"body": 0}

func (r *MongoContentRepository) findOne(ctx context.Context, kind domain.ContentKind, filter bson.M) (*domain.Content, error) {
	coll, err := r.contentCollection(kind)
	if err != nil {
		return nil, err
	}
	var m models.Content
	if err := coll.FindOne(ctx, filter).Decode(&m); err != nil {
		return nil, mapFindError(fmt.Sprintf("failed to find %s", kind), err)
	}
	c := m.ToDomain()
	return &c, nil
}

func (r *MongoContentRepository) FindContentByID(ctx context.Context, kind domain.ContentKind, id string) (*domain.Content, error) {
	return r.findOne(ctx, kind, bson.M{"_id": id})
}

func (r *MongoContentRepository) FindContentBySlug(ctx context.Context, kind domain.ContentKind, slug string) (*domain.Content, error) {
	return r.findOne(ctx, kind, bson.M{"slug": slug})
}

// buildFilter translates a ContentQuery into a Mongo filter document.
func buildFilter(q portsrepo.ContentQuery) bson.M {
	filter := bson.M{}
	if q.AuthorID != "" {
		filter["author_id"] = q.AuthorID
	}
	if q.Status != "" {
		filter["status"] = string(q.Status)
	}
	if q.Tag != "" {
		filter["tags"] = strings.ToLower(q.Tag)
	}
	if q.Category != "" {
		filter["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(q.Category) + "$", Options: "i"}
	}
	if q.IDs != nil {
		filter["_id"] = bson.M{"$in": q.IDs}
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"excerpt": pattern},
			bson.M{"tags": strings.ToLower(q.Search)},
		}
	}
	return filter
}

func sortFor(s portsrepo.ContentSort) bson.D {
	if s == portsrepo.SortPopular {
		return bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: -1}}
	}
	return bson.D{{Key: "created_at", Value: -1}}
}

func (r *MongoContentRepository) find(ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]domain.Content, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer cursor.Close(ctx)

	var ms []models.Content
	if err := cursor.All(ctx, &ms); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	return models.ToDomainContentSlice(ms), nil
}

func (r *MongoContentRepository) ListContent(ctx context.Context, q portsrepo.ContentQuery) ([]domain.Content, int64, error) {
	coll, err := r.contentCollection(q.Kind)
	if err != nil {
		return nil, 0, err
	}
	filter := buildFilter(q)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count content: %w", err)
	}

	opts := options.Find().SetSort(sortFor(q.Sort)).SetSkip(int64(q.Offset))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	items, err := r.find(ctx, coll, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MongoContentRepository) SaveContent(ctx context.Context, content domain.Content) error {
	coll, err := r.contentCollection(content.Kind)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, models.FromDomainContent(content)); err != nil {
		return mapWriteError("failed to save content", err)
	}
	return nil
}

func (r *MongoContentRepository) UpdateContent(ctx context.Context, content domain.Content) error {
	coll, err := r.contentCollection(content.Kind)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": content.ID}, contentUpdate(models.FromDomainContent(content)))
	if err != nil {
		return mapWriteError("failed to update content", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s not found: %w", content.Kind, content.ID, apperrors.ErrNotFound)
	}
	return nil
}

// contentUpdate sets the editable fields. Views, author and creation time are
// left to their own writers.
func contentUpdate(m models.Content) bson.M {
	return bson.M{"$set": bson.M{
		"title":        m.Title,
		"slug":         m.Slug,
		"body":         m.Body,
		"excerpt":      m.Excerpt,
		"cover_image":  m.CoverImage,
		"tags":         m.Tags,
		"category":     m.Category,
		"status":       m.Status,
		"reading_time": m.ReadingTime,
		"published_at": m.PublishedAt,
		"updated_at":   m.UpdatedAt,
	}}
}

func (r *MongoContentRepository) DeleteContent(ctx context.Context, kind domain.ContentKind, id string) error {
	coll, err := r.contentCollection(kind)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoContentRepository) IncrementViews(ctx context.Context, kind domain.ContentKind, id string) (int64, error) {
	coll, err := r.contentCollection(kind)
	if err != nil {
		return 0, err
	}
	var m models.Content
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": string(domain.StatusPublished)},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"views": 1}),
	).Decode(&m)
	if err != nil {
		return 0, mapFindError("failed to increment views", err)
	}
	return m.Views, nil
}

type statsRow struct {
	Total     int64 `bson:"total"`
	Drafts    int64 `bson:"drafts"`
	Published int64 `bson:"published"`
	Views     int64 `bson:"views"`
}

func countIf(status domain.ContentStatus) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(status)}}, 1, 0}}}
}

func (r *MongoContentRepository) AuthorStats(ctx context.Context, kind domain.ContentKind, authorID string, topN int) (*domain.KindStats, error) {
	coll, err := r.contentCollection(kind)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"author_id": authorID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"total":     bson.M{"$sum": 1},
			"drafts":    countIf(domain.StatusDraft),
			"published": countIf(domain.StatusPublished),
			"views":     bson.M{"$sum": "$views"},
		}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s stats: %w", kind, err)
	}
	var rows []statsRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s stats: %w", kind, err)
	}

	stats := &domain.KindStats{Kind: kind, TopByViews: []domain.Content{}, Recent: []domain.Content{}}
	if len(rows) == 0 {
		return stats, nil
	}
	stats.Total = rows[0].Total
	stats.Drafts = rows[0].Drafts
	stats.Published = rows[0].Published
	stats.TotalViews = rows[0].Views

	byAuthor := bson.M{"author_id": authorID}
	top, err := r.find(ctx, coll, byAuthor, options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(topN)).SetProjection(summaryProjection))
	if err != nil {
		return nil, err
	}
	recent, err := r.find(ctx, coll, byAuthor, options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(topN)).SetProjection(summaryProjection))
	if err != nil {
		return nil, err
	}
	stats.TopByViews = top
	stats.Recent = recent
	return stats, nil
}
