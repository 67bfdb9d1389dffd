package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/service"
	syncpkg "github.com/stockpilot/backend-go/internal/sync"
)

type stubSettingsStore struct {
	stored *domain.ThresholdSettings
	saved  []domain.ThresholdSettings
}

func (s *stubSettingsStore) Read(ctx context.Context, shop string) (*domain.ThresholdSettings, error) {
	return s.stored, nil
}

func (s *stubSettingsStore) Save(ctx context.Context, settings domain.ThresholdSettings) error {
	s.saved = append(s.saved, settings)
	return nil
}

func (s *stubSettingsStore) Shops(ctx context.Context) ([]string, error) {
	return nil, nil
}

type stubMetricStore struct{}

func (s *stubMetricStore) Upsert(ctx context.Context, shop string, metrics []domain.VariantMetric) error {
	return nil
}

func (s *stubMetricStore) Query(ctx context.Context, shop string, minFreshness time.Time) ([]domain.VariantMetric, error) {
	return []domain.VariantMetric{{ID: "v1", SKU: "SKU-1", LastCalculated: time.Now()}}, nil
}

type stubLogStore struct{}

func (s *stubLogStore) Append(ctx context.Context, entry domain.SyncLogEntry) error { return nil }

func (s *stubLogStore) Resolve(ctx context.Context, id string, status domain.SyncStatus, message string) error {
	return nil
}

func (s *stubLogStore) Recent(ctx context.Context, shop string, limit int) ([]domain.SyncLogEntry, error) {
	return nil, nil
}

func (s *stubLogStore) LastSuccess(ctx context.Context, shop string, scope domain.SyncScope) (*domain.SyncLogEntry, error) {
	return nil, nil
}

func newSettingsRouter(store *stubSettingsStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	orchestrator := syncpkg.NewOrchestrator(&stubMetricStore{}, &stubLogStore{}, nil, config.SyncConfig{})
	svc := service.NewMetricsService(orchestrator, store, &stubLogStore{}, nil)
	handler := NewSettingsHandler(svc)

	router := gin.New()
	router.PUT("/settings", handler.SaveSettings)
	return router
}

func putSettings(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, "/settings", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestSaveSettingsRejectsNegativeThreshold(t *testing.T) {
	store := &stubSettingsStore{}
	router := newSettingsRouter(store)

	recorder := putSettings(t, router,
		`{"shop_domain":"shop.example.com","shortage_threshold_days":-5}`)

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Empty(t, store.saved, "invalid settings must not be persisted")
}

func TestSaveSettingsRejectsZeroThreshold(t *testing.T) {
	store := &stubSettingsStore{}
	router := newSettingsRouter(store)

	recorder := putSettings(t, router,
		`{"shop_domain":"shop.example.com","overstock_threshold_days":0}`)

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Empty(t, store.saved)
}

func TestSaveSettingsOmittedFieldsKeepDefaults(t *testing.T) {
	store := &stubSettingsStore{}
	router := newSettingsRouter(store)

	recorder := putSettings(t, router,
		`{"shop_domain":"shop.example.com","lead_time_days":21}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, store.saved, 1)
	assert.Equal(t, 21, store.saved[0].LeadTimeDays)
	assert.Equal(t, domain.DefaultShortageThresholdDays, store.saved[0].ShortageThresholdDays)
	assert.Equal(t, domain.DefaultDigestCadence, store.saved[0].DigestCadence)
}

func TestSaveSettingsOmittedFieldsKeepStoredValues(t *testing.T) {
	existing := domain.DefaultSettings("shop.example.com")
	existing.ShortageThresholdDays = 15
	store := &stubSettingsStore{stored: &existing}
	router := newSettingsRouter(store)

	recorder := putSettings(t, router,
		`{"shop_domain":"shop.example.com","safety_days":3}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, store.saved, 1)
	assert.Equal(t, 3, store.saved[0].SafetyDays)
	assert.Equal(t, 15, store.saved[0].ShortageThresholdDays,
		"fields absent from the payload keep their stored value")
}

func TestSaveSettingsAcceptsExplicitValidValues(t *testing.T) {
	store := &stubSettingsStore{}
	router := newSettingsRouter(store)

	recorder := putSettings(t, router,
		`{"shop_domain":"shop.example.com","shortage_threshold_days":5,"digest_cadence":"off"}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, store.saved, 1)
	assert.Equal(t, 5, store.saved[0].ShortageThresholdDays)
	assert.Equal(t, "off", store.saved[0].DigestCadence)

	var echoed domain.ThresholdSettings
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &echoed))
	assert.Equal(t, 5, echoed.ShortageThresholdDays)
}

func TestSaveSettingsRejectsUnknownCadence(t *testing.T) {
	store := &stubSettingsStore{}
	router := newSettingsRouter(store)

	recorder := putSettings(t, router,
		`{"shop_domain":"shop.example.com","digest_cadence":"hourly"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Empty(t, store.saved)
}

func TestSaveSettingsRequiresShopDomain(t *testing.T) {
	store := &stubSettingsStore{}
	router := newSettingsRouter(store)

	recorder := putSettings(t, router, `{"shortage_threshold_days":5}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
