// internal/repository/postgres/metric_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/repository"
)

type metricRepository struct {
	db *DB
}

func NewMetricStore(db *DB) repository.MetricStore {
	return &metricRepository{db: db}
}

func (r *metricRepository) Upsert(ctx context.Context, shop string, metrics []domain.VariantMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	const query = `
		INSERT INTO variant_metrics (
			shop_domain, variant_id, sku, product_name, variant_title,
			available, unit_cost, sales_30d, sales_60d, sales_90d, last_calculated
		) VALUES (
			:shop_domain, :variant_id, :sku, :product_name, :variant_title,
			:available, :unit_cost, :sales_30d, :sales_60d, :sales_90d, :last_calculated
		)
		ON CONFLICT (shop_domain, variant_id) DO UPDATE SET
			sku = EXCLUDED.sku,
			product_name = EXCLUDED.product_name,
			variant_title = EXCLUDED.variant_title,
			available = EXCLUDED.available,
			unit_cost = EXCLUDED.unit_cost,
			sales_30d = EXCLUDED.sales_30d,
			sales_60d = EXCLUDED.sales_60d,
			sales_90d = EXCLUDED.sales_90d,
			last_calculated = EXCLUDED.last_calculated
	`

	// One transaction so a sync snapshot is visible atomically, never as
	// partial per-variant writes.
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i := range metrics {
			metrics[i].ShopDomain = shop
			if _, err := tx.NamedExecContext(ctx, query, metrics[i]); err != nil {
				return fmt.Errorf("error upserting variant %s: %w", metrics[i].ID, err)
			}
		}
		return nil
	})
}

func (r *metricRepository) Query(ctx context.Context, shop string, minFreshness time.Time) ([]domain.VariantMetric, error) {
	query := `
		SELECT shop_domain, variant_id, sku, product_name, variant_title,
		       available, unit_cost, sales_30d, sales_60d, sales_90d, last_calculated
		FROM variant_metrics
		WHERE shop_domain = $1
	`
	args := []interface{}{shop}

	if !minFreshness.IsZero() {
		query += " AND last_calculated >= $2"
		args = append(args, minFreshness)
	}
	query += " ORDER BY sku ASC"

	var metrics []domain.VariantMetric
	if err := r.db.SelectContext(ctx, &metrics, query, args...); err != nil {
		return nil, fmt.Errorf("error querying variant metrics: %w", err)
	}

	return metrics, nil
}
