// internal/repository/postgres/settings_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/repository"
)

type settingsRepository struct {
	db *DB
}

func NewSettingsStore(db *DB) repository.SettingsStore {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Read(ctx context.Context, shop string) (*domain.ThresholdSettings, error) {
	const query = `
		SELECT shop_domain, shortage_threshold_days, overstock_threshold_days,
		       mild_overstock_threshold_days, safety_days, lead_time_days,
		       history_window_days, min_recommended_qty, min_sales_for_forecast,
		       digest_cadence, digest_channel, updated_at
		FROM shop_settings
		WHERE shop_domain = $1
	`

	var settings domain.ThresholdSettings
	err := r.db.GetContext(ctx, &settings, query, shop)
	if errors.Is(err, sql.ErrNoRows) {
		// Absence means "use documented defaults"; callers substitute them.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading settings for %s: %w", shop, err)
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings domain.ThresholdSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	settings.UpdatedAt = time.Now().UTC()

	const query = `
		INSERT INTO shop_settings (
			shop_domain, shortage_threshold_days, overstock_threshold_days,
			mild_overstock_threshold_days, safety_days, lead_time_days,
			history_window_days, min_recommended_qty, min_sales_for_forecast,
			digest_cadence, digest_channel, updated_at
		) VALUES (
			:shop_domain, :shortage_threshold_days, :overstock_threshold_days,
			:mild_overstock_threshold_days, :safety_days, :lead_time_days,
			:history_window_days, :min_recommended_qty, :min_sales_for_forecast,
			:digest_cadence, :digest_channel, :updated_at
		)
		ON CONFLICT (shop_domain) DO UPDATE SET
			shortage_threshold_days = EXCLUDED.shortage_threshold_days,
			overstock_threshold_days = EXCLUDED.overstock_threshold_days,
			mild_overstock_threshold_days = EXCLUDED.mild_overstock_threshold_days,
			safety_days = EXCLUDED.safety_days,
			lead_time_days = EXCLUDED.lead_time_days,
			history_window_days = EXCLUDED.history_window_days,
			min_recommended_qty = EXCLUDED.min_recommended_qty,
			min_sales_for_forecast = EXCLUDED.min_sales_for_forecast,
			digest_cadence = EXCLUDED.digest_cadence,
			digest_channel = EXCLUDED.digest_channel,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("error saving settings for %s: %w", settings.ShopDomain, err)
	}
	return nil
}

func (r *settingsRepository) Shops(ctx context.Context) ([]string, error) {
	const query = `SELECT shop_domain FROM shop_settings ORDER BY shop_domain ASC`

	var shops []string
	if err := r.db.SelectContext(ctx, &shops, query); err != nil {
		return nil, fmt.Errorf("error listing shops: %w", err)
	}
	return shops, nil
}
