package service

import (
	"context"
	"io"

	"inventory/inventory-service/internal/app/inventory/entity"
)

// TaskDispatcher schedules fire-and-forget work. Dispatch never blocks and
// returns false when the task was dropped.
type TaskDispatcher interface {
	Dispatch(name string, task func(ctx context.Context) error) bool
}

// BrandCache caches the distinct brand list.
type BrandCache interface {
	Get(ctx context.Context, load func(ctx context.Context) ([]string, error)) ([]string, error)
	Invalidate(ctx context.Context)
}

// ActivityRecorder appends audit entries in the background.
type ActivityRecorder interface {
	Record(entry entity.ActivityEntry) error
}

// StatsRefresher schedules a background stats recomputation.
type StatsRefresher interface {
	RequestRecompute() bool
}

type ProductServiceInterface interface {
	List(ctx context.Context, query entity.ProductListQuery) (*entity.ProductListResponse, error)
	Get(ctx context.Context, id string) (*entity.Product, error)
	Create(ctx context.Context, actor entity.RequestActor, req *entity.CreateProductRequest) (*entity.Product, error)
	Replace(ctx context.Context, actor entity.RequestActor, id string, req *entity.UpdateProductRequest) (*entity.Product, error)
	Patch(ctx context.Context, actor entity.RequestActor, id string, req *entity.UpdateProductRequest) (*entity.Product, error)
	Delete(ctx context.Context, actor entity.RequestActor, id string) error
	Brands(ctx context.Context) ([]string, error)
}

type StatsServiceInterface interface {
	GetStats(ctx context.Context) (*entity.StatsSnapshot, error)
	Recompute(ctx context.Context) (*entity.StatsSnapshot, error)
}

type ActivityServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateActivityLogRequest) (*entity.ActivityLog, error)
	List(ctx context.Context, query entity.ActivityLogQuery) (*entity.ActivityLogPage, error)
	Actors(ctx context.Context) ([]entity.Actor, error)
}

type ExportServiceInterface interface {
	ProductsCSV(ctx context.Context, query entity.ProductListQuery, w io.Writer) error
	ProductsXLSX(ctx context.Context, query entity.ProductListQuery, w io.Writer) error
	ActivityLogsCSV(ctx context.Context, query entity.ActivityLogQuery, w io.Writer) error
}
