package repository

import (
	"context"

	"inventory/inventory-service/internal/app/inventory/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductRepository is the Product Store boundary over the products collection.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, int64, error)
	// Update applies fields with $set and returns the document after the update.
	Update(ctx context.Context, id string, fields map[string]interface{}) (*entity.Product, error)
	// Delete removes the product and returns the deleted document.
	Delete(ctx context.Context, id string) (*entity.Product, error)
	Brands(ctx context.Context) ([]string, error)
	// SetImages writes a migrated images list unless the product already has one.
	SetImages(ctx context.Context, id primitive.ObjectID, images []string) error
	Stream(ctx context.Context, filter entity.ProductFilter, fn func(*entity.Product) error) error
	EstimatedCount(ctx context.Context) (int64, error)
	// ScanStockFigures calls fn with the coerced inventory and price of every product.
	ScanStockFigures(ctx context.Context, fn func(inventory, price float64)) error
}

// ActivityLogRepository is the append-only audit store.
type ActivityLogRepository interface {
	Create(ctx context.Context, log *entity.ActivityLog) error
	List(ctx context.Context, filter entity.ActivityFilter) ([]entity.ActivityLog, int64, error)
	Actors(ctx context.Context) ([]entity.Actor, error)
	Stream(ctx context.Context, filter entity.ActivityFilter, fn func(*entity.ActivityLog) error) error
}

// StatsRepository persists the dashboard_stats singleton.
type StatsRepository interface {
	GetOrCreate(ctx context.Context) (*entity.StatsSnapshot, error)
	Save(ctx context.Context, snapshot *entity.StatsSnapshot) error
}
