// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/stockpilot/backend-go/internal/domain"
)

// MetricStore persists the last computed snapshot per (shop, variant).
type MetricStore interface {
	// Upsert replaces the snapshot for every given variant in one logical
	// transaction; repeated syncs are idempotent.
	Upsert(ctx context.Context, shop string, metrics []domain.VariantMetric) error
	// Query returns stored metrics for a shop. A non-zero minFreshness only
	// returns rows calculated at or after that instant; the zero time means
	// "whatever is present, however stale".
	Query(ctx context.Context, shop string, minFreshness time.Time) ([]domain.VariantMetric, error)
}

// SyncLogStore appends audit records for sync, export and digest attempts.
type SyncLogStore interface {
	Append(ctx context.Context, entry domain.SyncLogEntry) error
	// Resolve performs the single permitted pending -> terminal transition.
	Resolve(ctx context.Context, id string, status domain.SyncStatus, message string) error
	Recent(ctx context.Context, shop string, limit int) ([]domain.SyncLogEntry, error)
	// LastSuccess returns the newest successful entry for a shop and scope,
	// or nil when none exists.
	LastSuccess(ctx context.Context, shop string, scope domain.SyncScope) (*domain.SyncLogEntry, error)
}

// SettingsStore reads and writes per-shop threshold settings. A nil result
// from Read means the shop has never saved settings and documented defaults
// apply.
type SettingsStore interface {
	Read(ctx context.Context, shop string) (*domain.ThresholdSettings, error)
	Save(ctx context.Context, settings domain.ThresholdSettings) error
	// Shops lists every shop domain with saved settings, for scheduled jobs.
	Shops(ctx context.Context) ([]string, error)
}
