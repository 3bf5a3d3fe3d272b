package mocks

import (
	"context"

	"inventory/inventory-service/internal/app/inventory/entity"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockProductRepository mocks ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*entity.Product, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Brands(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) SetImages(ctx context.Context, id primitive.ObjectID, images []string) error {
	args := m.Called(ctx, id, images)
	return args.Error(0)
}

// Stream feeds the products given to Return through fn.
func (m *MockProductRepository) Stream(ctx context.Context, filter entity.ProductFilter, fn func(*entity.Product) error) error {
	args := m.Called(ctx, filter, fn)
	if products, ok := args.Get(0).([]entity.Product); ok {
		for i := range products {
			if err := fn(&products[i]); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

func (m *MockProductRepository) EstimatedCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// ScanStockFigures feeds the [2]float64{inventory, price} pairs given to Return through fn.
func (m *MockProductRepository) ScanStockFigures(ctx context.Context, fn func(inventory, price float64)) error {
	args := m.Called(ctx, fn)
	if rows, ok := args.Get(0).([][2]float64); ok {
		for _, row := range rows {
			fn(row[0], row[1])
		}
	}
	return args.Error(1)
}

// MockActivityLogRepository mocks ActivityLogRepository
type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockActivityLogRepository) List(ctx context.Context, filter entity.ActivityFilter) ([]entity.ActivityLog, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.ActivityLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityLogRepository) Actors(ctx context.Context) ([]entity.Actor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Actor), args.Error(1)
}

func (m *MockActivityLogRepository) Stream(ctx context.Context, filter entity.ActivityFilter, fn func(*entity.ActivityLog) error) error {
	args := m.Called(ctx, filter, fn)
	if logs, ok := args.Get(0).([]entity.ActivityLog); ok {
		for i := range logs {
			if err := fn(&logs[i]); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

// MockStatsRepository mocks StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) GetOrCreate(ctx context.Context) (*entity.StatsSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StatsSnapshot), args.Error(1)
}

func (m *MockStatsRepository) Save(ctx context.Context, snapshot *entity.StatsSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// MockMessagePublisher mocks the Kafka producer
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
