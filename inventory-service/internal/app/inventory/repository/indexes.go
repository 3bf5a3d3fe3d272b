package repository

import (
	"context"
	"fmt"

	"inventory/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func productIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// sku is unique only among populated values
			Keys: bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().
				SetName("sku_unique_idx").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"sku": bson.M{"$gt": ""}}),
		},
		{Keys: bson.D{{Key: "brand", Value: 1}}, Options: options.Index().SetName("brand_idx")},
		{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category_idx")},
		{Keys: bson.D{{Key: "inventory", Value: 1}}, Options: options.Index().SetName("inventory_idx")},
		{Keys: bson.D{{Key: "price", Value: 1}}, Options: options.Index().SetName("price_idx")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at_idx")},
		{Keys: bson.D{{Key: "brand", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("brand_created_at_idx")},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "inventory", Value: 1}}, Options: options.Index().SetName("category_inventory_idx")},
		{Keys: bson.D{{Key: "brand", Value: 1}, {Key: "category", Value: 1}}, Options: options.Index().SetName("brand_category_idx")},
	}
}

func activityLogIndexes() []mongo.IndexModel {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at_idx")},
	}
	for _, field := range []string{"brand", "sku", "actionType", "adminId"} {
		models = append(models,
			mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}, Options: options.Index().SetName(field + "_idx")},
			mongo.IndexModel{
				Keys:    bson.D{{Key: field, Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName(field + "_created_at_idx"),
			},
		)
	}
	return models
}

// EnsureIndexes creates the indexes of every collection.
// A failure on the unique sku index is returned: without it sku uniqueness is not enforced.
// Other failures are logged, the index may already exist with different options.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	products := db.Collection(productsCollection)
	for _, model := range productIndexes() {
		if _, err := products.Indexes().CreateOne(ctx, model); err != nil {
			name := ""
			if model.Options != nil && model.Options.Name != nil {
				name = *model.Options.Name
			}
			if name == "sku_unique_idx" {
				return fmt.Errorf("failed to create unique sku index: %w", err)
			}
			logger.Warn().Err(err).Str("index", name).Msg("Failed to create products index")
		}
	}

	if _, err := db.Collection(activityLogsCollection).Indexes().CreateMany(ctx, activityLogIndexes()); err != nil {
		logger.Warn().Err(err).Msg("Failed to create activity log indexes")
	}

	return nil
}
