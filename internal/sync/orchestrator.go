// internal/sync/orchestrator.go
package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/repository"
	"github.com/stockpilot/backend-go/internal/source"
)

// unknownSKU is the placeholder for variants seen in orders but delisted from
// inventory.
const unknownSKU = "Unknown SKU"

// Orchestrator reconciles the live source with the persisted snapshot and
// degrades gracefully: fresh cache -> live fetch -> stale cache -> synthetic
// baseline. The metrics path never surfaces an upstream error to callers.
type Orchestrator struct {
	store   repository.MetricStore
	logs    repository.SyncLogStore
	adapter source.Adapter
	cfg     config.SyncConfig
	now     func() time.Time

	// Per-shop mutexes avoid duplicate upstream calls when concurrent
	// requests miss the cache together. An optimization only; writes are
	// last-write-wins either way.
	shopMu sync.Map
}

func NewOrchestrator(store repository.MetricStore, logs repository.SyncLogStore, adapter source.Adapter, cfg config.SyncConfig) *Orchestrator {
	if cfg.MaxPagesPerFetch <= 0 {
		cfg.MaxPagesPerFetch = 25
	}
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = 30 * time.Minute
	}
	if cfg.HistoryWindowDays <= 0 {
		cfg.HistoryWindowDays = 90
	}
	return &Orchestrator{
		store:   store,
		logs:    logs,
		adapter: adapter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// GetVariantMetrics returns a non-empty metrics list for the shop: fresh
// cache when available, otherwise a live refresh, otherwise stale data,
// otherwise a synthetic baseline. Every branch writes one sync log entry.
func (o *Orchestrator) GetVariantMetrics(ctx context.Context, shop string) []domain.VariantMetric {
	// 1) Fresh cache: good-enough freshness, not strict consistency.
	fresh, err := o.store.Query(ctx, shop, o.now().Add(-o.cfg.FreshnessWindow))
	if err != nil {
		log.Warn().Err(err).Str("shop", shop).Msg("metric store freshness query failed")
	}
	if len(fresh) > 0 {
		o.appendLog(ctx, shop, domain.StatusSuccess, fmt.Sprintf("served %d variants from cache", len(fresh)))
		return fresh
	}

	mu := o.lockShop(shop)
	defer mu.Unlock()

	// Another request may have refreshed while we waited for the lock.
	fresh, err = o.store.Query(ctx, shop, o.now().Add(-o.cfg.FreshnessWindow))
	if err == nil && len(fresh) > 0 {
		o.appendLog(ctx, shop, domain.StatusSuccess, fmt.Sprintf("served %d variants from cache", len(fresh)))
		return fresh
	}

	// 2) Live refresh.
	merged, refreshErr := o.refresh(ctx, shop)
	if refreshErr == nil && len(merged) > 0 {
		o.appendLog(ctx, shop, domain.StatusSuccess, fmt.Sprintf("synced %d variants from source", len(merged)))
		return merged
	}
	if refreshErr == nil {
		refreshErr = errors.New("merge produced no variants")
	}
	log.Warn().Err(refreshErr).Str("shop", shop).Msg("live refresh failed, falling back to stored data")

	// 3) Stale cache: whatever is present, however old.
	stale, err := o.store.Query(ctx, shop, time.Time{})
	if err != nil {
		log.Warn().Err(err).Str("shop", shop).Msg("metric store stale query failed")
	}
	if len(stale) > 0 {
		o.appendLog(ctx, shop, domain.StatusSuccess,
			fmt.Sprintf("served %d stale variants after refresh failure: %v", len(stale), refreshErr))
		return stale
	}

	// 4) Synthetic baseline keeps the dashboard non-empty for brand-new or
	// fully broken shops.
	o.appendLog(ctx, shop, domain.StatusFailure,
		fmt.Sprintf("no stored data, serving synthetic baseline: %v", refreshErr))
	return BaselineMetrics(shop, o.now())
}

// refresh fetches both upstream streams concurrently, merges them by variant
// identity and persists the result in one transaction.
func (o *Orchestrator) refresh(ctx context.Context, shop string) ([]domain.VariantMetric, error) {
	since := o.now().AddDate(0, 0, -o.cfg.HistoryWindowDays)

	var (
		inventory []source.InventoryItem
		orders    []source.OrderLine
	)

	// Both fetches must complete (or fail individually) before the merge; a
	// page guard trip is logged as a failure but the partial result is kept.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := source.CollectInventory(gctx, o.adapter, o.cfg.MaxPagesPerFetch)
		inventory = items
		return o.tolerateGuard(ctx, shop, err)
	})
	g.Go(func() error {
		lines, err := source.CollectOrders(gctx, o.adapter, since, o.cfg.MaxPagesPerFetch)
		orders = lines
		return o.tolerateGuard(ctx, shop, err)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("source fetch failed: %w", err)
	}

	merged := o.merge(shop, inventory, orders)
	if len(merged) == 0 {
		return nil, nil
	}

	if err := o.store.Upsert(ctx, shop, merged); err != nil {
		return nil, fmt.Errorf("persist merged metrics: %w", err)
	}
	return merged, nil
}

// tolerateGuard downgrades a page-guard trip to a logged failure so partial
// results still flow into the merge.
func (o *Orchestrator) tolerateGuard(ctx context.Context, shop string, err error) error {
	var guard *source.ErrPageGuard
	if errors.As(err, &guard) {
		o.appendLog(ctx, shop, domain.StatusFailure, guard.Error())
		return nil
	}
	return err
}

// merge builds the union of variant identifiers seen in either stream. A
// variant delisted from inventory but still present in orders gets zero stock
// and a placeholder SKU; one with inventory but no orders gets all-zero sales
// buckets.
func (o *Orchestrator) merge(shop string, inventory []source.InventoryItem, orders []source.OrderLine) []domain.VariantMetric {
	now := o.now().UTC()
	byID := make(map[string]*domain.VariantMetric)

	for _, item := range inventory {
		if item.VariantID == "" {
			continue
		}
		byID[item.VariantID] = &domain.VariantMetric{
			ID:             item.VariantID,
			ShopDomain:     shop,
			SKU:            item.SKU,
			ProductName:    item.ProductName,
			VariantTitle:   item.VariantTitle,
			Available:      item.Available,
			UnitCost:       item.UnitCost,
			LastCalculated: now,
		}
	}

	for _, line := range orders {
		if line.VariantID == "" || line.Quantity <= 0 {
			continue
		}
		metric, ok := byID[line.VariantID]
		if !ok {
			metric = &domain.VariantMetric{
				ID:             line.VariantID,
				ShopDomain:     shop,
				SKU:            unknownSKU,
				LastCalculated: now,
			}
			byID[line.VariantID] = metric
		}

		age := now.Sub(line.OrderedAt)
		if age <= 30*24*time.Hour {
			metric.Sales30d += line.Quantity
		}
		if age <= 60*24*time.Hour {
			metric.Sales60d += line.Quantity
		}
		if age <= 90*24*time.Hour {
			metric.Sales90d += line.Quantity
		}
	}

	merged := make([]domain.VariantMetric, 0, len(byID))
	for _, metric := range byID {
		if !metric.WindowsMonotonic() {
			log.Warn().Str("shop", shop).Str("variant", metric.ID).
				Msg("sales windows not monotonic")
		}
		merged = append(merged, *metric)
	}
	// Map iteration order is random; keep snapshots reproducible.
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].SKU != merged[j].SKU {
			return merged[i].SKU < merged[j].SKU
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}

// appendLog writes the audit record for a branch. Log-sink failures are
// swallowed: auditing must never break the metrics path.
func (o *Orchestrator) appendLog(ctx context.Context, shop string, status domain.SyncStatus, message string) {
	entry := domain.SyncLogEntry{
		ID:         uuid.NewString(),
		ShopDomain: shop,
		Scope:      domain.ScopeSync,
		Status:     status,
		Message:    message,
		CreatedAt:  o.now().UTC(),
	}
	if err := o.logs.Append(ctx, entry); err != nil {
		log.Warn().Err(err).Str("shop", shop).Msg("failed to append sync log")
	}
}

func (o *Orchestrator) lockShop(shop string) *sync.Mutex {
	mu, _ := o.shopMu.LoadOrStore(shop, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m
}
