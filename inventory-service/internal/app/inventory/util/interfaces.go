package util

import (
	"context"
	"time"
)

// BrandStore is the Redis side of the brand cache.
type BrandStore interface {
	SetBrands(ctx context.Context, brands []string, ttl time.Duration) error
	// GetBrands returns nil, nil on a cache miss.
	GetBrands(ctx context.Context) ([]string, error)
	DeleteBrands(ctx context.Context) error
}

// MessagePublisher sends messages to Kafka.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
