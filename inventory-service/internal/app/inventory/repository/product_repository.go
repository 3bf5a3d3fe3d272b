package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	metricsService = "inventory"

	productsCollection = "products"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("sku already exists")
)

// sortable product fields; anything else falls back to createdAt
var productSortFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"brand":     true,
	"sku":       true,
	"category":  true,
	"inventory": true,
	"price":     true,
	"oldPrice":  true,
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{
		collection: db.Collection(productsCollection),
	}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, productsCollection)
	defer timer.ObserveDuration()

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []string{}
	}

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		metrics.RecordDbError(metricsService, metrics.DbOpInsert)
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}

	return nil
}

// GetByID treats a malformed id the same as a missing product.
func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	timer := metrics.NewDbTimer(metricsService, metrics.DbOpFind, productsCollection)
	defer timer.ObserveDuration()

	var product entity.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// listProjection keeps list payloads small; legacy image fields stay for normalization.
var listProjection = bson.M{
	"brand":     1,
	"title":     1,
	"sku":       1,
	"category":  1,
	"inventory": 1,
	"price":     1,
	"oldPrice":  1,
	"images":    1,
	"imageUrl":  1,
	"image.url": 1,
	"createdAt": 1,
	"updatedAt": 1,
}

func (r *productRepository) List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, int64, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpFind, productsCollection)
	defer timer.ObserveDuration()

	query := buildProductFilter(filter)
	opts := options.Find().
		SetProjection(listProjection).
		SetSort(productSort(filter)).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return nil, 0, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []entity.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpCount)
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, productsCollection)
	defer timer.ObserveDuration()

	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product entity.Product
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateSKU
		}
		metrics.RecordDbError(metricsService, metrics.DbOpUpdate)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	timer := metrics.NewDbTimer(metricsService, metrics.DbOpDelete, productsCollection)
	defer timer.ObserveDuration()

	var product entity.Product
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDbError(metricsService, metrics.DbOpDelete)
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return &product, nil
}

// Brands returns the sorted distinct non-empty brands.
func (r *productRepository) Brands(ctx context.Context) ([]string, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpFind, productsCollection)
	defer timer.ObserveDuration()

	values, err := r.collection.Distinct(ctx, "brand", bson.M{"brand": bson.M{"$ne": ""}})
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	brands := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			brands = append(brands, s)
		}
	}
	sort.Strings(brands)

	return brands, nil
}

func (r *productRepository) SetImages(ctx context.Context, id primitive.ObjectID, images []string) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, productsCollection)
	defer timer.ObserveDuration()

	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"images": bson.M{"$exists": false}},
			bson.M{"images": bson.M{"$size": 0}},
			bson.M{"images": nil},
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"images": images}})
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpUpdate)
		return fmt.Errorf("failed to migrate product images: %w", err)
	}

	return nil
}

// Stream walks every product matching filter in sort order, ignoring pagination.
func (r *productRepository) Stream(ctx context.Context, filter entity.ProductFilter, fn func(*entity.Product) error) error {
	opts := options.Find().
		SetSort(productSort(filter)).
		SetBatchSize(500)

	cursor, err := r.collection.Find(ctx, buildProductFilter(filter), opts)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return fmt.Errorf("failed to stream products: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var product entity.Product
		if err := cursor.Decode(&product); err != nil {
			return fmt.Errorf("failed to decode product: %w", err)
		}
		if err := fn(&product); err != nil {
			return err
		}
	}

	if err := cursor.Err(); err != nil {
		return fmt.Errorf("product cursor failed: %w", err)
	}
	return nil
}

func (r *productRepository) EstimatedCount(ctx context.Context) (int64, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpCount, productsCollection)
	defer timer.ObserveDuration()

	n, err := r.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpCount)
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// ScanStockFigures reads raw inventory and price values so malformed legacy
// documents are coerced instead of failing the decode.
func (r *productRepository) ScanStockFigures(ctx context.Context, fn func(inventory, price float64)) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpAggregate, productsCollection)
	defer timer.ObserveDuration()

	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "inventory": 1, "price": 1}).
		SetBatchSize(1000)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpAggregate)
		return fmt.Errorf("failed to scan products: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		fn(
			entity.CoerceNumber(cursor.Current.Lookup("inventory")),
			entity.CoerceNumber(cursor.Current.Lookup("price")),
		)
	}

	if err := cursor.Err(); err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpAggregate)
		return fmt.Errorf("product scan failed: %w", err)
	}
	return nil
}

// buildProductFilter: brand and category match exactly ignoring case,
// search is a case-insensitive substring over brand, sku, category and description.
func buildProductFilter(f entity.ProductFilter) bson.M {
	filter := bson.M{}

	if f.Brand != "" {
		filter["brand"] = exactInsensitive(f.Brand)
	}
	if f.Category != "" {
		filter["category"] = exactInsensitive(f.Category)
	}
	if f.Search != "" {
		re := containsInsensitive(f.Search)
		filter["$or"] = bson.A{
			bson.M{"brand": re},
			bson.M{"sku": re},
			bson.M{"category": re},
			bson.M{"description": re},
		}
	}

	return filter
}

func productSort(f entity.ProductFilter) bson.D {
	field := f.SortBy
	if !productSortFields[field] {
		field = "createdAt"
	}
	dir := 1
	if f.SortDesc {
		dir = -1
	}
	// _id as tiebreaker keeps skip/limit pages stable
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func exactInsensitive(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

func containsInsensitive(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}
