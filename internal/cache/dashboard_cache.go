// internal/cache/dashboard_cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/report"
)

const (
	dashboardKeyPrefix    = "dashboard:timeframe"
	dashboardScanBatchLen = 100
)

// DashboardCache caches assembled timeframe summaries per (shop, timeframe).
// Purely a latency optimization in front of the reporting aggregator; the
// metric store remains the source of truth.
type DashboardCache interface {
	GetTimeframe(ctx context.Context, shop string, tf domain.Timeframe) (*report.TimeframeSummary, bool, error)
	SetTimeframe(ctx context.Context, shop string, tf domain.Timeframe, summary report.TimeframeSummary) error
	InvalidateShop(ctx context.Context, shop string) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDashboardCache{client: client, ttl: ttl}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetTimeframe(ctx context.Context, shop string, tf domain.Timeframe) (*report.TimeframeSummary, bool, error) {
	payload, err := c.client.Get(ctx, dashboardKey(shop, tf)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary report.TimeframeSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode dashboard cache: %w", err)
	}
	return &summary, true, nil
}

func (c *redisDashboardCache) SetTimeframe(ctx context.Context, shop string, tf domain.Timeframe, summary report.TimeframeSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode dashboard cache: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey(shop, tf), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) InvalidateShop(ctx context.Context, shop string) error {
	return deleteKeysWithPrefix(ctx, c.client, fmt.Sprintf("%s:%s", dashboardKeyPrefix, shop), dashboardScanBatchLen)
}

func (n *noopDashboardCache) GetTimeframe(ctx context.Context, shop string, tf domain.Timeframe) (*report.TimeframeSummary, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetTimeframe(ctx context.Context, shop string, tf domain.Timeframe, summary report.TimeframeSummary) error {
	return nil
}

func (n *noopDashboardCache) InvalidateShop(ctx context.Context, shop string) error {
	return nil
}

func dashboardKey(shop string, tf domain.Timeframe) string {
	return fmt.Sprintf("%s:%s:%s", dashboardKeyPrefix, shop, tf)
}
