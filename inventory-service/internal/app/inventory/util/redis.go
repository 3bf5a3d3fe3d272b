package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"inventory/pkg/logger"
	"inventory/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	brandsCacheKey  = "brands:all"
	brandsKeyPrefix = "brands"
	metricsService  = "inventory"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientFromClient wraps an existing client.
func NewRedisClientFromClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

func (r *RedisClient) SetBrands(ctx context.Context, brands []string, ttl time.Duration) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if brands == nil {
		brands = []string{}
	}
	data, err := json.Marshal(brands)
	if err != nil {
		return fmt.Errorf("failed to marshal brands: %w", err)
	}

	if err := r.client.Set(ctx, brandsCacheKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSet)
		return fmt.Errorf("failed to set brands in cache: %w", err)
	}

	return nil
}

func (r *RedisClient) GetBrands(ctx context.Context) ([]string, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, brandsCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get brands from cache: %w", err)
	}

	brands := []string{}
	if err := json.Unmarshal(data, &brands); err != nil {
		return nil, fmt.Errorf("failed to unmarshal brands: %w", err)
	}

	return brands, nil
}

func (r *RedisClient) DeleteBrands(ctx context.Context) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, brandsCacheKey).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete brands from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// BrandCache serves the distinct brand list with TTL expiry and explicit invalidation.
// Redis failures never fail a read: the loader result is served instead.
type BrandCache struct {
	store BrandStore
	ttl   time.Duration

	// bumped by Invalidate; a load that overlapped one is not cached
	generation atomic.Uint64
}

func NewBrandCache(store BrandStore, ttl time.Duration) *BrandCache {
	return &BrandCache{store: store, ttl: ttl}
}

// Get returns the cached list or calls load and caches its result.
func (c *BrandCache) Get(ctx context.Context, load func(ctx context.Context) ([]string, error)) ([]string, error) {
	brands, err := c.store.GetBrands(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Brand cache read failed, loading from store")
	} else if brands != nil {
		metrics.RecordCacheHit(metricsService, brandsKeyPrefix)
		return brands, nil
	}
	metrics.RecordCacheMiss(metricsService, brandsKeyPrefix)

	generation := c.generation.Load()
	brands, err = load(ctx)
	if err != nil {
		return nil, err
	}

	// Invalidations from other processes or after this check are bounded by the TTL.
	if c.generation.Load() != generation {
		return brands, nil
	}
	if err := c.store.SetBrands(ctx, brands, c.ttl); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache brands")
	}

	return brands, nil
}

// Invalidate drops the cached list so the next Get reloads it.
func (c *BrandCache) Invalidate(ctx context.Context) {
	c.generation.Add(1)
	if err := c.store.DeleteBrands(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate brand cache")
	}
}
