// internal/cache/forecast_cache.go
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix     = "forecast:result"
	forecastScanBatchSize = 100
)

// ForecastCache memoizes forecast results. The key hashes the input series
// and parameters, so a stale entry can never be served for changed history.
type ForecastCache interface {
	Get(ctx context.Context, series *domain.TimeSeries, horizon int) (*domain.ForecastResult, bool, error)
	Set(ctx context.Context, series *domain.TimeSeries, horizon int, result *domain.ForecastResult) error
	InvalidateItem(ctx context.Context, itemID string) error
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

func (c *redisForecastCache) Get(ctx context.Context, series *domain.TimeSeries, horizon int) (*domain.ForecastResult, bool, error) {
	key := buildForecastKey(series, horizon)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.ForecastResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisForecastCache) Set(ctx context.Context, series *domain.TimeSeries, horizon int, result *domain.ForecastResult) error {
	key := buildForecastKey(series, horizon)
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateItem(ctx context.Context, itemID string) error {
	prefix := fmt.Sprintf("%s:%s:", forecastKeyPrefix, itemID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, forecastScanBatchSize)
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatchSize)
}

func (n *noopForecastCache) Get(ctx context.Context, series *domain.TimeSeries, horizon int) (*domain.ForecastResult, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) Set(ctx context.Context, series *domain.TimeSeries, horizon int, result *domain.ForecastResult) error {
	return nil
}

func (n *noopForecastCache) InvalidateItem(ctx context.Context, itemID string) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastKey(series *domain.TimeSeries, horizon int) string {
	return fmt.Sprintf("%s:%s:%s", forecastKeyPrefix, series.ItemID, seriesHash(series, horizon))
}

// seriesHash digests the series values, granularity and horizon so the key
// changes whenever any forecasting input changes.
func seriesHash(series *domain.TimeSeries, horizon int) string {
	parts := make([]string, 0, len(series.Points)+2)
	parts = append(parts, "granularity="+string(series.Granularity))
	parts = append(parts, "horizon="+strconv.Itoa(horizon))
	for _, p := range series.Points {
		parts = append(parts, fmt.Sprintf("%d=%.4f", p.Period.Unix(), p.Quantity))
	}

	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
