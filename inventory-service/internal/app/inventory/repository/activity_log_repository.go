package repository

import (
	"context"
	"fmt"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activityLogsCollection = "activity_logs"

var activitySortFields = map[string]string{
	"createdAt":  "createdAt",
	"brand":      "brand",
	"sku":        "sku",
	"actionType": "actionType",
	"adminId":    "adminId",
	"actorId":    "adminId",
}

type activityLogRepository struct {
	collection *mongo.Collection
}

func NewActivityLogRepository(db *mongo.Database) ActivityLogRepository {
	return &activityLogRepository{
		collection: db.Collection(activityLogsCollection),
	}
}

// Create appends an entry. Entries are never updated afterwards.
func (r *activityLogRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, activityLogsCollection)
	defer timer.ObserveDuration()

	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	if log.EntityType == "" {
		log.EntityType = entity.EntityTypeProduct
	}
	if len(log.Changes) == 0 {
		log.Changes = nil
	}
	log.Thumbnail = nil

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpInsert)
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		log.ID = oid
	}

	return nil
}

type activityFacet struct {
	Data  []entity.ActivityLog `bson:"data"`
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
}

// List runs one aggregation: match, sort, then a facet with the page
// (joined with the product thumbnail) and the total count.
func (r *activityLogRepository) List(ctx context.Context, filter entity.ActivityFilter) ([]entity.ActivityLog, int64, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpAggregate, activityLogsCollection)
	defer timer.ObserveDuration()

	cursor, err := r.collection.Aggregate(ctx, buildActivityPipeline(filter))
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpAggregate)
		return nil, 0, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []activityFacet
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, 0, fmt.Errorf("failed to decode activity logs: %w", err)
	}

	logs := []entity.ActivityLog{}
	var total int64
	if len(facets) > 0 {
		if facets[0].Data != nil {
			logs = facets[0].Data
		}
		if len(facets[0].Total) > 0 {
			total = facets[0].Total[0].Count
		}
	}

	return logs, total, nil
}

// Actors returns every distinct author with the most recent name and email seen.
func (r *activityLogRepository) Actors(ctx context.Context) ([]entity.Actor, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpAggregate, activityLogsCollection)
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$adminId",
			"name":  bson.M{"$first": "$adminName"},
			"email": bson.M{"$first": "$adminEmail"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpAggregate)
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}
	defer cursor.Close(ctx)

	actors := []entity.Actor{}
	if err := cursor.All(ctx, &actors); err != nil {
		return nil, fmt.Errorf("failed to decode actors: %w", err)
	}

	return actors, nil
}

// Stream walks every matching entry in sort order, ignoring pagination.
func (r *activityLogRepository) Stream(ctx context.Context, filter entity.ActivityFilter, fn func(*entity.ActivityLog) error) error {
	opts := options.Find().
		SetSort(activitySort(filter)).
		SetBatchSize(500)

	cursor, err := r.collection.Find(ctx, buildActivityMatch(filter), opts)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return fmt.Errorf("failed to stream activity logs: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var log entity.ActivityLog
		if err := cursor.Decode(&log); err != nil {
			return fmt.Errorf("failed to decode activity log: %w", err)
		}
		if err := fn(&log); err != nil {
			return err
		}
	}

	if err := cursor.Err(); err != nil {
		return fmt.Errorf("activity log cursor failed: %w", err)
	}
	return nil
}

func buildActivityMatch(f entity.ActivityFilter) bson.M {
	match := bson.M{}

	if f.Brand != "" {
		match["brand"] = exactInsensitive(f.Brand)
	}
	if f.ActionType != "" {
		match["actionType"] = f.ActionType
	}
	if f.ActorID != "" {
		match["adminId"] = actorIDMatch(f.ActorID)
	}
	if f.Search != "" {
		re := containsInsensitive(f.Search)
		match["$or"] = bson.A{
			bson.M{"brand": re},
			bson.M{"sku": re},
		}
	}
	if f.From != nil || f.To != nil {
		created := bson.M{}
		if f.From != nil {
			created["$gte"] = *f.From
		}
		if f.To != nil {
			created["$lte"] = *f.To
		}
		match["createdAt"] = created
	}

	return match
}

// actorIDMatch accepts entries written with either a string or an ObjectID actor id.
func actorIDMatch(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$in": bson.A{id, oid}}
	}
	return id
}

func activitySort(f entity.ActivityFilter) bson.D {
	field, ok := activitySortFields[f.SortBy]
	if !ok {
		field = "createdAt"
	}
	dir := 1
	if f.SortDesc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

// thumbnailExpr yields the first image of the joined product, or null.
var thumbnailExpr = bson.M{
	"$let": bson.M{
		"vars": bson.M{"p": bson.M{"$arrayElemAt": bson.A{"$product", 0}}},
		"in": bson.M{
			"$let": bson.M{
				"vars": bson.M{"imgs": bson.M{"$ifNull": bson.A{"$$p.images", bson.A{}}}},
				"in": bson.M{
					"$cond": bson.A{
						bson.M{"$and": bson.A{
							bson.M{"$isArray": "$$imgs"},
							bson.M{"$gt": bson.A{bson.M{"$size": "$$imgs"}, 0}},
						}},
						bson.M{"$arrayElemAt": bson.A{"$$imgs", 0}},
						nil,
					},
				},
			},
		},
	},
}

func buildActivityPipeline(f entity.ActivityFilter) mongo.Pipeline {
	skip := int64((f.Page - 1) * f.Limit)

	return mongo.Pipeline{
		{{Key: "$match", Value: buildActivityMatch(f)}},
		{{Key: "$sort", Value: activitySort(f)}},
		{{Key: "$facet", Value: bson.M{
			"data": bson.A{
				bson.M{"$skip": skip},
				bson.M{"$limit": int64(f.Limit)},
				bson.M{"$lookup": bson.M{
					"from":         productsCollection,
					"localField":   "productId",
					"foreignField": "_id",
					"as":           "product",
				}},
				bson.M{"$addFields": bson.M{"thumbnail": thumbnailExpr}},
				bson.M{"$project": bson.M{"product": 0}},
			},
			"total": bson.A{
				bson.M{"$count": "count"},
			},
		}}},
	}
}
