package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes every repository relies on. Index creation
// is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		PostsCollection: {
			{Keys: bson.D{{Key: "edition", Value: 1}, {Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "edition", Value: 1}, {Key: "publishedAt", Value: -1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
			{Keys: bson.D{{Key: "sectionId", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		SectionsCollection: {
			{Keys: bson.D{{Key: "pageId", Value: 1}, {Key: "position", Value: 1}}},
			{Keys: bson.D{{Key: "postIds", Value: 1}}},
		},
		PagesCollection: {
			{Keys: bson.D{{Key: "edition", Value: 1}, {Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		AuthorsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "providerSub", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		AdsCollection: {
			{Keys: bson.D{{Key: "placement", Value: 1}, {Key: "edition", Value: 1}, {Key: "active", Value: 1}}},
		},
		SubscribersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		SessionsCollection: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		RevokedCollection: {
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}
