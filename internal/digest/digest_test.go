package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/storage"
	syncpkg "github.com/stockpilot/backend-go/internal/sync"
)

const testShop = "digest-shop.example.com"

type memMetricStore struct {
	rows []domain.VariantMetric
}

func (s *memMetricStore) Upsert(ctx context.Context, shop string, metrics []domain.VariantMetric) error {
	s.rows = metrics
	return nil
}

func (s *memMetricStore) Query(ctx context.Context, shop string, minFreshness time.Time) ([]domain.VariantMetric, error) {
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

type memLogStore struct {
	entries []domain.SyncLogEntry
}

func (s *memLogStore) Append(ctx context.Context, entry domain.SyncLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memLogStore) Resolve(ctx context.Context, id string, status domain.SyncStatus, message string) error {
	for i := range s.entries {
		if s.entries[i].ID == id && s.entries[i].Status == domain.StatusPending {
			s.entries[i].Status = status
			s.entries[i].Message = message
		}
	}
	return nil
}

func (s *memLogStore) Recent(ctx context.Context, shop string, limit int) ([]domain.SyncLogEntry, error) {
	return s.entries, nil
}

func (s *memLogStore) LastSuccess(ctx context.Context, shop string, scope domain.SyncScope) (*domain.SyncLogEntry, error) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ShopDomain == shop && s.entries[i].Scope == scope && s.entries[i].Status == domain.StatusSuccess {
			entry := s.entries[i]
			return &entry, nil
		}
	}
	return nil, nil
}

func (s *memLogStore) digestEntries() []domain.SyncLogEntry {
	var out []domain.SyncLogEntry
	for _, entry := range s.entries {
		if entry.Scope == domain.ScopeDigest {
			out = append(out, entry)
		}
	}
	return out
}

type memSettingsStore struct {
	settings *domain.ThresholdSettings
}

func (s *memSettingsStore) Read(ctx context.Context, shop string) (*domain.ThresholdSettings, error) {
	return s.settings, nil
}

func (s *memSettingsStore) Save(ctx context.Context, settings domain.ThresholdSettings) error {
	s.settings = &settings
	return nil
}

func (s *memSettingsStore) Shops(ctx context.Context) ([]string, error) {
	if s.settings == nil {
		return nil, nil
	}
	return []string{s.settings.ShopDomain}, nil
}

type fakeArchive struct {
	uploads   map[string][]byte
	listed    []storage.ObjectInfo
	lastList  string
	uploadErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{uploads: make(map[string][]byte)}
}

func (a *fakeArchive) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	a.lastList = prefix
	return a.listed, nil
}

func (a *fakeArchive) UploadObject(ctx context.Context, key string, data []byte) error {
	if a.uploadErr != nil {
		return a.uploadErr
	}
	a.uploads[key] = data
	return nil
}

type digestFixture struct {
	service *Service
	logs    *memLogStore
	archive *fakeArchive
}

func newDigestFixture(cadence string, lastDigestAge time.Duration) *digestFixture {
	settings := domain.DefaultSettings(testShop)
	settings.DigestCadence = cadence

	logs := &memLogStore{}
	if lastDigestAge > 0 {
		logs.entries = append(logs.entries, domain.SyncLogEntry{
			ID:         "prior-digest",
			ShopDomain: testShop,
			Scope:      domain.ScopeDigest,
			Status:     domain.StatusSuccess,
			Message:    "digest built for 1 variants",
			CreatedAt:  time.Now().UTC().Add(-lastDigestAge),
		})
	}

	store := &memMetricStore{rows: []domain.VariantMetric{
		{ID: "v1", ShopDomain: testShop, SKU: "SKU-1", Available: 5, LastCalculated: time.Now()},
	}}
	orchestrator := syncpkg.NewOrchestrator(store, logs, nil, config.SyncConfig{})
	archive := newFakeArchive()

	return &digestFixture{
		service: NewService(orchestrator, &memSettingsStore{settings: &settings}, logs, archive),
		logs:    logs,
		archive: archive,
	}
}

func TestBuildSkipsWhenCadenceOff(t *testing.T) {
	f := newDigestFixture("off", 0)

	payload, err := f.service.Build(context.Background(), testShop)

	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Empty(t, f.logs.digestEntries())
	assert.Empty(t, f.archive.uploads)
}

func TestDailyDigestSkipsWhenRecentlyBuilt(t *testing.T) {
	f := newDigestFixture("daily", 2*time.Hour)

	payload, err := f.service.Build(context.Background(), testShop)

	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Len(t, f.logs.digestEntries(), 1)
	assert.Empty(t, f.archive.uploads)
}

func TestDailyDigestBuildsAfterInterval(t *testing.T) {
	f := newDigestFixture("daily", 25*time.Hour)

	payload, err := f.service.Build(context.Background(), testShop)

	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "daily", payload.Cadence)
	assert.Len(t, payload.Timeframes, 3)
	assert.Len(t, f.archive.uploads, 1)

	entries := f.logs.digestEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.StatusSuccess, entries[1].Status)
	assert.Contains(t, entries[1].Message, "digest built")
}

func TestWeeklyDigestNotDueAfterOneDay(t *testing.T) {
	f := newDigestFixture("weekly", 25*time.Hour)

	payload, err := f.service.Build(context.Background(), testShop)

	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Empty(t, f.archive.uploads)
}

func TestWeeklyDigestBuildsAfterAWeek(t *testing.T) {
	f := newDigestFixture("weekly", 7*24*time.Hour+time.Hour)

	payload, err := f.service.Build(context.Background(), testShop)

	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "weekly", payload.Cadence)
	assert.Len(t, f.archive.uploads, 1)
}

func TestFirstDigestIsAlwaysDue(t *testing.T) {
	f := newDigestFixture("weekly", 0)

	payload, err := f.service.Build(context.Background(), testShop)

	require.NoError(t, err)
	require.NotNil(t, payload)
}

func TestSkippedRunDoesNotResetTheCadenceClock(t *testing.T) {
	f := newDigestFixture("weekly", 25*time.Hour)

	for i := 0; i < 3; i++ {
		payload, err := f.service.Build(context.Background(), testShop)
		require.NoError(t, err)
		assert.Nil(t, payload)
	}

	// Only the seeded success remains; skips leave no entries that could
	// push the last-built timestamp forward.
	assert.Len(t, f.logs.digestEntries(), 1)
}

func TestArchiveFailureResolvesAsFailure(t *testing.T) {
	f := newDigestFixture("daily", 0)
	f.archive.uploadErr = errors.New("bucket gone")

	payload, err := f.service.Build(context.Background(), testShop)

	require.NoError(t, err)
	require.NotNil(t, payload)

	entries := f.logs.digestEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusFailure, entries[0].Status)
	assert.Contains(t, entries[0].Message, "digest archive failed")
}

func TestListArchiveUsesShopPrefix(t *testing.T) {
	f := newDigestFixture("daily", 0)
	f.archive.listed = []storage.ObjectInfo{
		{Key: "digests/" + testShop + "/20260801T070000.json", Size: 512},
	}

	objects, err := f.service.ListArchive(context.Background(), testShop)

	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.True(t, strings.HasPrefix(f.archive.lastList, "digests/"+testShop+"/"))
}

func TestListArchiveWithoutStorage(t *testing.T) {
	f := newDigestFixture("daily", 0)
	f.service.archive = nil

	_, err := f.service.ListArchive(context.Background(), testShop)

	require.Error(t, err)
}
