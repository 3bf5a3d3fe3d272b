package handler

import (
	"context"
	"io"

	"inventory/inventory-service/internal/app/inventory/entity"

	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, query entity.ProductListQuery) (*entity.ProductListResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductListResponse), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, actor entity.RequestActor, req *entity.CreateProductRequest) (*entity.Product, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Replace(ctx context.Context, actor entity.RequestActor, id string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Patch(ctx context.Context, actor entity.RequestActor, id string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, actor entity.RequestActor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockProductService) Brands(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetStats(ctx context.Context) (*entity.StatsSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StatsSnapshot), args.Error(1)
}

func (m *MockStatsService) Recompute(ctx context.Context) (*entity.StatsSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StatsSnapshot), args.Error(1)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Create(ctx context.Context, req *entity.CreateActivityLogRequest) (*entity.ActivityLog, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ActivityLog), args.Error(1)
}

func (m *MockActivityService) List(ctx context.Context, query entity.ActivityLogQuery) (*entity.ActivityLogPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ActivityLogPage), args.Error(1)
}

func (m *MockActivityService) Actors(ctx context.Context) ([]entity.Actor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Actor), args.Error(1)
}

// MockExportService writes the string given to Return before returning the error.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) write(w io.Writer, args mock.Arguments) error {
	if body, ok := args.Get(0).(string); ok && body != "" {
		if _, err := io.WriteString(w, body); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockExportService) ProductsCSV(ctx context.Context, query entity.ProductListQuery, w io.Writer) error {
	return m.write(w, m.Called(ctx, query, w))
}

func (m *MockExportService) ProductsXLSX(ctx context.Context, query entity.ProductListQuery, w io.Writer) error {
	return m.write(w, m.Called(ctx, query, w))
}

func (m *MockExportService) ActivityLogsCSV(ctx context.Context, query entity.ActivityLogQuery, w io.Writer) error {
	return m.write(w, m.Called(ctx, query, w))
}
