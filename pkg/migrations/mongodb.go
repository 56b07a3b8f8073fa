package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"beacon/internal/constants"
)

// EnsureMongoCollection creates the indexes the template config queries rely
// on. The hot path filters on trigger_id, scope_id, and enabled together.
func EnsureMongoCollection(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(constants.TemplateCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "trigger_id", Value: 1},
				{Key: "scope_id", Value: 1},
				{Key: "enabled", Value: 1},
			},
			Options: options.Index().SetName("idx_template_configs_trigger_scope_enabled"),
		},
		{
			Keys:    bson.D{{Key: "trigger_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_template_configs_trigger_created"),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_template_configs_updated_at"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
