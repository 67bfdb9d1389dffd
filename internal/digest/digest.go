// internal/digest/digest.go
package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/report"
	"github.com/stockpilot/backend-go/internal/repository"
	"github.com/stockpilot/backend-go/internal/storage"
	syncpkg "github.com/stockpilot/backend-go/internal/sync"
)

// cadenceSlack absorbs scheduler drift: a daily digest fired by a daily cron
// is due even when the previous run is a few minutes short of 24h old.
const cadenceSlack = time.Hour

// Payload is the digest document handed to the delivery channel and archived
// to object storage.
type Payload struct {
	ShopDomain  string                    `json:"shop_domain"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Cadence     string                    `json:"cadence"`
	Channel     string                    `json:"channel"`
	Timeframes  []report.TimeframeSummary `json:"timeframes"`
}

// Service builds digest payloads from the metrics pipeline and archives them.
// Archiving is best-effort: a storage failure marks the log entry failed but
// the payload is still returned.
type Service struct {
	orchestrator *syncpkg.Orchestrator
	settings     repository.SettingsStore
	logs         repository.SyncLogStore
	archive      storage.ObjectStorage
	now          func() time.Time
}

func NewService(orchestrator *syncpkg.Orchestrator, settings repository.SettingsStore, logs repository.SyncLogStore, archive storage.ObjectStorage) *Service {
	return &Service{
		orchestrator: orchestrator,
		settings:     settings,
		logs:         logs,
		archive:      archive,
		now:          time.Now,
	}
}

// Build assembles the per-timeframe digest for a shop and records the attempt
// in the sync log with the pending -> terminal transition. A nil payload with
// a nil error means the shop's cadence did not call for a digest; skipped
// runs leave no log entry so the last successful build keeps gating the next.
func (s *Service) Build(ctx context.Context, shop string) (*Payload, error) {
	settings := s.loadSettings(ctx, shop)
	if settings.DigestCadence == "off" {
		log.Debug().Str("shop", shop).Msg("digest disabled for shop")
		return nil, nil
	}
	if !s.due(ctx, shop, settings.DigestCadence) {
		log.Debug().Str("shop", shop).Str("cadence", settings.DigestCadence).
			Msg("digest not due yet")
		return nil, nil
	}

	logID := uuid.NewString()
	s.append(ctx, domain.SyncLogEntry{
		ID:         logID,
		ShopDomain: shop,
		Scope:      domain.ScopeDigest,
		Status:     domain.StatusPending,
		Message:    "digest build started",
		CreatedAt:  s.now().UTC(),
	})

	metrics := s.orchestrator.GetVariantMetrics(ctx, shop)
	payload := &Payload{
		ShopDomain:  shop,
		GeneratedAt: s.now().UTC(),
		Cadence:     settings.DigestCadence,
		Channel:     settings.DigestChannel,
		Timeframes:  report.BuildAll(metrics, settings),
	}

	if err := s.archivePayload(ctx, payload); err != nil {
		s.resolve(ctx, logID, domain.StatusFailure, fmt.Sprintf("digest archive failed: %v", err))
		return payload, nil
	}

	s.resolve(ctx, logID, domain.StatusSuccess,
		fmt.Sprintf("digest built for %d variants", len(metrics)))
	return payload, nil
}

// ListArchive returns the archived digest objects for a shop, newest-key last
// in storage listing order.
func (s *Service) ListArchive(ctx context.Context, shop string) ([]storage.ObjectInfo, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("digest archive is not configured")
	}
	return s.archive.ListObjects(ctx, archivePrefix(shop))
}

// due reports whether enough time has passed since the last successful digest
// for the shop's cadence. Errors reading the log default to building: a
// duplicate digest beats a silently missing one.
func (s *Service) due(ctx context.Context, shop, cadence string) bool {
	last, err := s.logs.LastSuccess(ctx, shop, domain.ScopeDigest)
	if err != nil {
		log.Warn().Err(err).Str("shop", shop).Msg("could not read last digest log")
		return true
	}
	if last == nil {
		return true
	}
	return s.now().UTC().Sub(last.CreatedAt) >= cadenceInterval(cadence)-cadenceSlack
}

func cadenceInterval(cadence string) time.Duration {
	if cadence == "weekly" {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

func (s *Service) archivePayload(ctx context.Context, payload *Payload) error {
	if s.archive == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode digest payload: %w", err)
	}
	key := fmt.Sprintf("%s%s.json", archivePrefix(payload.ShopDomain), payload.GeneratedAt.Format("20060102T150405"))
	return s.archive.UploadObject(ctx, key, data)
}

func archivePrefix(shop string) string {
	return fmt.Sprintf("digests/%s/", shop)
}

func (s *Service) loadSettings(ctx context.Context, shop string) domain.ThresholdSettings {
	stored, err := s.settings.Read(ctx, shop)
	if err != nil {
		log.Warn().Err(err).Str("shop", shop).Msg("settings read failed, using defaults")
	}
	if stored == nil {
		return domain.DefaultSettings(shop)
	}
	return stored.WithDefaults()
}

func (s *Service) append(ctx context.Context, entry domain.SyncLogEntry) {
	if err := s.logs.Append(ctx, entry); err != nil {
		log.Warn().Err(err).Str("shop", entry.ShopDomain).Msg("failed to append digest log")
	}
}

func (s *Service) resolve(ctx context.Context, id string, status domain.SyncStatus, message string) {
	if err := s.logs.Resolve(ctx, id, status, message); err != nil {
		log.Warn().Err(err).Str("log_id", id).Msg("failed to resolve digest log")
	}
}
