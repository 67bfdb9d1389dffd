// cmd/seed/main.go
package main

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/stockpilot/backend-go/internal/domain"
	syncpkg "github.com/stockpilot/backend-go/internal/sync"
)

//go:embed schema.sql
var schemaSQL string

// Mirrors the upsert in internal/repository/postgres so re-seeding refreshes
// the same columns a live sync would.
const demoUpsertQuery = `
	INSERT INTO variant_metrics (
		shop_domain, variant_id, sku, product_name, variant_title,
		available, unit_cost, sales_30d, sales_60d, sales_90d, last_calculated
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
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

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newShopFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "shop",
		Usage: "Shop domain to seed",
		Value: "demo-shop.example.com",
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func runSchema(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(c.Context, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("schema applied")
	return nil
}

func runDemo(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	shop := c.String("shop")
	metrics := syncpkg.BaselineMetrics(shop, time.Now())

	for _, m := range metrics {
		if _, err := db.ExecContext(c.Context, demoUpsertQuery,
			m.ShopDomain, m.ID, m.SKU, m.ProductName, m.VariantTitle,
			m.Available, m.UnitCost, m.Sales30d, m.Sales60d, m.Sales90d, m.LastCalculated,
		); err != nil {
			return fmt.Errorf("failed to seed variant %s: %w", m.ID, err)
		}
	}

	const logQuery = `
		INSERT INTO sync_logs (id, shop_domain, scope, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := db.ExecContext(c.Context, logQuery,
		uuid.NewString(), shop, domain.ScopeSync, domain.StatusSuccess,
		fmt.Sprintf("seeded %d demo variants", len(metrics)), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to log seed run: %w", err)
	}

	log.Printf("seeded %d demo variants for %s", len(metrics), shop)
	return nil
}

func runSettings(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	shop := c.String("shop")
	s := domain.DefaultSettings(shop)

	const query = `
		INSERT INTO shop_settings (
			shop_domain, shortage_threshold_days, overstock_threshold_days,
			mild_overstock_threshold_days, safety_days, lead_time_days,
			history_window_days, min_recommended_qty, min_sales_for_forecast,
			digest_cadence, digest_channel, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (shop_domain) DO NOTHING
	`
	if _, err := db.ExecContext(c.Context, query,
		s.ShopDomain, s.ShortageThresholdDays, s.OverstockThresholdDays,
		s.MildOverstockThresholdDays, s.SafetyDays, s.LeadTimeDays,
		s.HistoryWindowDays, s.MinRecommendedQty, s.MinSalesForForecast,
		s.DigestCadence, s.DigestChannel,
	); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	log.Printf("seeded default settings for %s", shop)
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Apply the schema and seed demo data",
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Apply the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runSchema,
			},
			{
				Name:   "demo",
				Usage:  "Seed synthetic demo metrics for a shop",
				Flags:  []cli.Flag{newDBURLFlag(), newShopFlag()},
				Action: runDemo,
			},
			{
				Name:   "settings",
				Usage:  "Seed default threshold settings for a shop",
				Flags:  []cli.Flag{newDBURLFlag(), newShopFlag()},
				Action: runSettings,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
