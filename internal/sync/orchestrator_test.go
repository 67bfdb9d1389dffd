package sync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/source"
)

const testShop = "test-shop.example.com"

type fakeMetricStore struct {
	rows    []domain.VariantMetric
	upserts int
}

func (s *fakeMetricStore) Upsert(ctx context.Context, shop string, metrics []domain.VariantMetric) error {
	s.upserts++
	s.rows = metrics
	return nil
}

func (s *fakeMetricStore) Query(ctx context.Context, shop string, minFreshness time.Time) ([]domain.VariantMetric, error) {
	if minFreshness.IsZero() {
		return s.rows, nil
	}
	var fresh []domain.VariantMetric
	for _, m := range s.rows {
		if !m.LastCalculated.Before(minFreshness) {
			fresh = append(fresh, m)
		}
	}
	return fresh, nil
}

type fakeLogStore struct {
	mu      sync.Mutex
	entries []domain.SyncLogEntry
	err     error
}

func (s *fakeLogStore) Append(ctx context.Context, entry domain.SyncLogEntry) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeLogStore) Resolve(ctx context.Context, id string, status domain.SyncStatus, message string) error {
	return nil
}

func (s *fakeLogStore) Recent(ctx context.Context, shop string, limit int) ([]domain.SyncLogEntry, error) {
	return s.entries, nil
}

func (s *fakeLogStore) LastSuccess(ctx context.Context, shop string, scope domain.SyncScope) (*domain.SyncLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Scope == scope && s.entries[i].Status == domain.StatusSuccess {
			entry := s.entries[i]
			return &entry, nil
		}
	}
	return nil, nil
}

type fakeAdapter struct {
	inventory      [][]source.InventoryItem
	orders         [][]source.OrderLine
	inventoryErr   error
	ordersErr      error
	inventoryCalls int
	orderCalls     int
	endless        bool
}

func (a *fakeAdapter) FetchInventoryPage(ctx context.Context, cursor string) ([]source.InventoryItem, string, bool, error) {
	if a.inventoryErr != nil {
		return nil, "", false, a.inventoryErr
	}
	page := a.inventoryCalls
	a.inventoryCalls++
	if a.endless {
		return []source.InventoryItem{{VariantID: "inv-endless", SKU: "SKU-E", Available: 1}}, "next", true, nil
	}
	if page >= len(a.inventory) {
		return nil, "", false, nil
	}
	return a.inventory[page], "cursor", page+1 < len(a.inventory), nil
}

func (a *fakeAdapter) FetchOrdersPage(ctx context.Context, cursor string, sinceDate time.Time) ([]source.OrderLine, string, bool, error) {
	if a.ordersErr != nil {
		return nil, "", false, a.ordersErr
	}
	page := a.orderCalls
	a.orderCalls++
	if a.endless {
		return nil, "next", true, nil
	}
	if page >= len(a.orders) {
		return nil, "", false, nil
	}
	return a.orders[page], "cursor", page+1 < len(a.orders), nil
}

func newTestOrchestrator(store *fakeMetricStore, logs *fakeLogStore, adapter *fakeAdapter) *Orchestrator {
	o := NewOrchestrator(store, logs, adapter, config.SyncConfig{
		FreshnessWindow:   30 * time.Minute,
		MaxPagesPerFetch:  5,
		HistoryWindowDays: 90,
	})
	return o
}

func TestFreshCacheHitSkipsSource(t *testing.T) {
	store := &fakeMetricStore{rows: []domain.VariantMetric{
		{ID: "v1", SKU: "SKU-1", LastCalculated: time.Now()},
	}}
	logs := &fakeLogStore{}
	adapter := &fakeAdapter{}

	got := newTestOrchestrator(store, logs, adapter).GetVariantMetrics(context.Background(), testShop)

	require.Len(t, got, 1)
	assert.Equal(t, 0, adapter.inventoryCalls)
	assert.Equal(t, 0, adapter.orderCalls)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, domain.StatusSuccess, logs.entries[0].Status)
	assert.Contains(t, logs.entries[0].Message, "cache")
}

func TestLiveRefreshMergesUnion(t *testing.T) {
	now := time.Now()
	store := &fakeMetricStore{}
	logs := &fakeLogStore{}
	adapter := &fakeAdapter{
		inventory: [][]source.InventoryItem{{
			{VariantID: "v1", SKU: "SKU-1", ProductName: "Tee", Available: 12},
			{VariantID: "v2", SKU: "SKU-2", ProductName: "Cap", Available: 3},
		}},
		orders: [][]source.OrderLine{{
			{VariantID: "v1", Quantity: 4, OrderedAt: now.AddDate(0, 0, -5)},
			{VariantID: "v1", Quantity: 2, OrderedAt: now.AddDate(0, 0, -45)},
			{VariantID: "v1", Quantity: 1, OrderedAt: now.AddDate(0, 0, -80)},
			// Sold but delisted from inventory.
			{VariantID: "v3", Quantity: 7, OrderedAt: now.AddDate(0, 0, -10)},
		}},
	}

	got := newTestOrchestrator(store, logs, adapter).GetVariantMetrics(context.Background(), testShop)

	require.Len(t, got, 3)
	assert.Equal(t, 1, store.upserts)

	byID := make(map[string]domain.VariantMetric)
	for _, m := range got {
		byID[m.ID] = m
	}

	// Recent order counts land in every bucket; older ones only in the
	// wider windows.
	v1 := byID["v1"]
	assert.Equal(t, 4, v1.Sales30d)
	assert.Equal(t, 6, v1.Sales60d)
	assert.Equal(t, 7, v1.Sales90d)
	assert.Equal(t, 12, v1.Available)

	// Inventory-only variant keeps zero sales buckets.
	v2 := byID["v2"]
	assert.Equal(t, 0, v2.Sales90d)
	assert.Equal(t, 3, v2.Available)

	// Orders-only variant gets placeholder inventory fields.
	v3 := byID["v3"]
	assert.Equal(t, "Unknown SKU", v3.SKU)
	assert.Equal(t, 0, v3.Available)
	assert.Equal(t, 7, v3.Sales30d)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, domain.StatusSuccess, logs.entries[0].Status)
	assert.Contains(t, logs.entries[0].Message, "synced 3 variants")
}

func TestSourceFailureFallsBackToStaleCache(t *testing.T) {
	stale := []domain.VariantMetric{
		{ID: "v1", SKU: "SKU-1", LastCalculated: time.Now().Add(-48 * time.Hour)},
	}
	store := &fakeMetricStore{rows: stale}
	logs := &fakeLogStore{}
	adapter := &fakeAdapter{inventoryErr: errors.New("upstream 503")}

	got := newTestOrchestrator(store, logs, adapter).GetVariantMetrics(context.Background(), testShop)

	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].ID)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, domain.StatusSuccess, logs.entries[0].Status)
	assert.Contains(t, logs.entries[0].Message, "stale")
}

func TestNoDataServesSyntheticBaseline(t *testing.T) {
	store := &fakeMetricStore{}
	logs := &fakeLogStore{}
	adapter := &fakeAdapter{ordersErr: errors.New("upstream down")}

	got := newTestOrchestrator(store, logs, adapter).GetVariantMetrics(context.Background(), testShop)

	require.NotEmpty(t, got)
	for _, m := range got {
		assert.True(t, strings.HasPrefix(m.SKU, BaselineSKUPrefix),
			"baseline SKU %s must carry the demo prefix", m.SKU)
	}
	require.Len(t, logs.entries, 1)
	assert.Equal(t, domain.StatusFailure, logs.entries[0].Status)
}

func TestEmptyMergeTreatedAsFailure(t *testing.T) {
	stale := []domain.VariantMetric{
		{ID: "v1", SKU: "SKU-1", LastCalculated: time.Now().Add(-2 * time.Hour)},
	}
	store := &fakeMetricStore{rows: stale}
	logs := &fakeLogStore{}
	adapter := &fakeAdapter{} // both fetches succeed with zero results

	got := newTestOrchestrator(store, logs, adapter).GetVariantMetrics(context.Background(), testShop)

	require.Len(t, got, 1)
	assert.Equal(t, 0, store.upserts)
	require.Len(t, logs.entries, 1)
	assert.Contains(t, logs.entries[0].Message, "stale")
}

func TestPageGuardUsesPartialResults(t *testing.T) {
	store := &fakeMetricStore{}
	logs := &fakeLogStore{}
	adapter := &fakeAdapter{endless: true}

	got := newTestOrchestrator(store, logs, adapter).GetVariantMetrics(context.Background(), testShop)

	// The guard stops both fetches; inventory still produced rows, and that
	// partial snapshot is persisted.
	require.NotEmpty(t, got)
	assert.Equal(t, 1, store.upserts)
	assert.Equal(t, 5, adapter.inventoryCalls)

	var guardFailures, successes int
	for _, entry := range logs.entries {
		switch entry.Status {
		case domain.StatusFailure:
			assert.Contains(t, entry.Message, "page guard")
			guardFailures++
		case domain.StatusSuccess:
			successes++
		}
	}
	assert.Equal(t, 2, guardFailures)
	assert.Equal(t, 1, successes)
}

func TestLogSinkFailureNeverPropagates(t *testing.T) {
	store := &fakeMetricStore{rows: []domain.VariantMetric{
		{ID: "v1", SKU: "SKU-1", LastCalculated: time.Now()},
	}}
	logs := &fakeLogStore{err: errors.New("log table gone")}
	adapter := &fakeAdapter{}

	assert.NotPanics(t, func() {
		got := newTestOrchestrator(store, logs, adapter).GetVariantMetrics(context.Background(), testShop)
		assert.Len(t, got, 1)
	})
}

func TestMergedSnapshotIsDeterministicallyOrdered(t *testing.T) {
	store := &fakeMetricStore{}
	logs := &fakeLogStore{}
	adapter := &fakeAdapter{
		inventory: [][]source.InventoryItem{{
			{VariantID: "v9", SKU: "SKU-Z", Available: 1},
			{VariantID: "v2", SKU: "SKU-A", Available: 1},
			{VariantID: "v5", SKU: "SKU-M", Available: 1},
		}},
	}

	got := newTestOrchestrator(store, logs, adapter).GetVariantMetrics(context.Background(), testShop)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"SKU-A", "SKU-M", "SKU-Z"},
		[]string{got[0].SKU, got[1].SKU, got[2].SKU})
}
