package repository

import (
	"context"
	"fmt"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const statsCollection = "dashboard_stats"

type statsRepository struct {
	collection *mongo.Collection
}

func NewStatsRepository(db *mongo.Database) StatsRepository {
	return &statsRepository{
		collection: db.Collection(statsCollection),
	}
}

// GetOrCreate returns the singleton, inserting a zeroed one when absent.
// The fixed _id makes concurrent first reads converge on one document.
func (r *statsRepository) GetOrCreate(ctx context.Context) (*entity.StatsSnapshot, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpFind, statsCollection)
	defer timer.ObserveDuration()

	now := time.Now().UTC()
	update := bson.M{"$setOnInsert": bson.M{
		"totalProducts":   int64(0),
		"totalStock":      int64(0),
		"totalStoreValue": float64(0),
		"outOfStockCount": int64(0),
		"createdAt":       now,
		"updatedAt":       now,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var snapshot entity.StatsSnapshot
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": entity.StatsSnapshotID}, update, opts).Decode(&snapshot)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// lost the upsert race; the winner's document is there now
		err = r.collection.FindOne(ctx, bson.M{"_id": entity.StatsSnapshotID}).Decode(&snapshot)
	}
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get stats snapshot: %w", err)
	}

	return &snapshot, nil
}

// Save overwrites the counters of the singleton in a single upsert.
func (r *statsRepository) Save(ctx context.Context, snapshot *entity.StatsSnapshot) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, statsCollection)
	defer timer.ObserveDuration()

	now := time.Now().UTC()
	snapshot.ID = entity.StatsSnapshotID
	snapshot.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"totalProducts":   snapshot.TotalProducts,
			"totalStock":      snapshot.TotalStock,
			"totalStoreValue": snapshot.TotalStoreValue,
			"outOfStockCount": snapshot.OutOfStockCount,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}

	filter := bson.M{"_id": entity.StatsSnapshotID}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		_, err = r.collection.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpUpdate)
		return fmt.Errorf("failed to save stats snapshot: %w", err)
	}

	return nil
}
