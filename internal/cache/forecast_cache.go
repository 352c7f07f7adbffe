package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stockwise/backend-go/internal/config"
	"github.com/stockwise/backend-go/internal/domain"
)

const (
	forecastKeyPrefix     = "forecast:product"
	forecastScanBatchSize = 100
)

// ForecastCache keeps recently computed horizon forecasts so repeated
// dashboard reads don't retrain models. New sales data invalidates the
// product's entries.
type ForecastCache interface {
	Get(ctx context.Context, productID int64, horizonDays int) ([]domain.ForecastResult, bool, error)
	Set(ctx context.Context, productID int64, horizonDays int, results []domain.ForecastResult) error
	Invalidate(ctx context.Context, productID int64) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) Get(ctx context.Context, productID int64, horizonDays int) ([]domain.ForecastResult, bool, error) {
	key := buildForecastKey(productID, horizonDays)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var results []domain.ForecastResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}

	return results, true, nil
}

func (c *redisForecastCache) Set(ctx context.Context, productID int64, horizonDays int, results []domain.ForecastResult) error {
	key := buildForecastKey(productID, horizonDays)
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) Invalidate(ctx context.Context, productID int64) error {
	prefix := fmt.Sprintf("%s:%d:", forecastKeyPrefix, productID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, forecastScanBatchSize)
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatchSize)
}

func (n *noopForecastCache) Get(ctx context.Context, productID int64, horizonDays int) ([]domain.ForecastResult, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) Set(ctx context.Context, productID int64, horizonDays int, results []domain.ForecastResult) error {
	return nil
}

func (n *noopForecastCache) Invalidate(ctx context.Context, productID int64) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastKey(productID int64, horizonDays int) string {
	return fmt.Sprintf("%s:%d:h%d", forecastKeyPrefix, productID, horizonDays)
}
