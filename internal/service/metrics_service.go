// internal/service/metrics_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/stockpilot/backend-go/internal/allocator"
	"github.com/stockpilot/backend-go/internal/cache"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/forecast"
	"github.com/stockpilot/backend-go/internal/report"
	"github.com/stockpilot/backend-go/internal/repository"
	syncpkg "github.com/stockpilot/backend-go/internal/sync"
)

// MetricsService is the facade the presentation layer talks to. It wires the
// sync orchestrator to the pure engines and the dashboard cache; all business
// rules live below it.
type MetricsService struct {
	orchestrator *syncpkg.Orchestrator
	settings     repository.SettingsStore
	logs         repository.SyncLogStore
	cache        cache.DashboardCache
}

func NewMetricsService(orchestrator *syncpkg.Orchestrator, settings repository.SettingsStore, logs repository.SyncLogStore, cacheImpl cache.DashboardCache) *MetricsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &MetricsService{
		orchestrator: orchestrator,
		settings:     settings,
		logs:         logs,
		cache:        cacheImpl,
	}
}

// GetVariantMetrics returns the current metric set for a shop; never an
// error on this path, per the fallback chain.
func (s *MetricsService) GetVariantMetrics(ctx context.Context, shop string) []domain.VariantMetric {
	return s.orchestrator.GetVariantMetrics(ctx, shop)
}

// GetDashboard assembles the timeframe summary, serving from the dashboard
// cache when possible.
func (s *MetricsService) GetDashboard(ctx context.Context, shop string, tf domain.Timeframe) report.TimeframeSummary {
	if summary, ok, err := s.cache.GetTimeframe(ctx, shop, tf); err == nil && ok {
		return *summary
	} else if err != nil {
		log.Warn().Err(err).Str("shop", shop).Msg("dashboard cache get failed")
	}

	settings := s.Settings(ctx, shop)
	metrics := s.orchestrator.GetVariantMetrics(ctx, shop)
	rows := forecast.BuildRows(metrics, tf, settings)
	summary := report.BuildTimeframe(rows, tf, settings)

	if err := s.cache.SetTimeframe(ctx, shop, tf, summary); err != nil {
		log.Warn().Err(err).Str("shop", shop).Msg("dashboard cache set failed")
	}

	return summary
}

// BuildPlan runs the budget allocator over the shop's current reorder
// candidates for a timeframe.
func (s *MetricsService) BuildPlan(ctx context.Context, shop string, tf domain.Timeframe, budget float64) domain.BudgetPlan {
	settings := s.Settings(ctx, shop)
	metrics := s.orchestrator.GetVariantMetrics(ctx, shop)
	rows := forecast.BuildRows(metrics, tf, settings)

	// The allocator filters to positive recommended quantities itself.
	candidates := make([]allocator.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, allocator.Candidate{Row: row})
	}

	return allocator.Allocate(candidates, budget, settings.TargetCoverageDays())
}

// Settings returns the shop's thresholds with documented defaults filled in.
func (s *MetricsService) Settings(ctx context.Context, shop string) domain.ThresholdSettings {
	stored, err := s.settings.Read(ctx, shop)
	if err != nil {
		log.Warn().Err(err).Str("shop", shop).Msg("settings read failed, using defaults")
	}
	if stored == nil {
		return domain.DefaultSettings(shop)
	}
	return stored.WithDefaults()
}

// SaveSettings validates and persists the settings, then drops any cached
// dashboards built with the old thresholds.
func (s *MetricsService) SaveSettings(ctx context.Context, settings domain.ThresholdSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.settings.Save(ctx, settings); err != nil {
		return err
	}
	if err := s.cache.InvalidateShop(ctx, settings.ShopDomain); err != nil {
		log.Warn().Err(err).Str("shop", settings.ShopDomain).Msg("dashboard cache invalidation failed")
	}
	return nil
}

// RecentLogs exposes the sync audit trail for operational health display.
func (s *MetricsService) RecentLogs(ctx context.Context, shop string, limit int) ([]domain.SyncLogEntry, error) {
	return s.logs.Recent(ctx, shop, limit)
}
