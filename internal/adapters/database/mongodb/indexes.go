package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and TTL indexes the repositories rely on.
// Creating an index that already exists is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{
				Keys: bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_username").
					SetPartialFilterExpression(bson.M{"username": bson.M{"$type": "string"}}),
			},
			{
				Keys: bson.D{{Key: "accounts.provider", Value: 1}, {Key: "accounts.provider_user_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_provider_account").
					SetPartialFilterExpression(bson.M{"accounts.provider_user_id": bson.M{"$exists": true}}),
			},
		},
		sessionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetName("idx_user")},
			{Keys: bson.D{{Key: "expires", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires")},
		},
	}
	for _, coll := range []string{blogsCollection, postsCollection} {
		specs[coll] = []mongo.IndexModel{
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_slug")},
			{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "updated_at", Value: -1}}, Options: options.Index().SetName("idx_author_updated")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_status_created")},
			{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("idx_tags")},
		}
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
