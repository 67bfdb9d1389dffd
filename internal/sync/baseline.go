// internal/sync/baseline.go
package sync

import (
	"time"

	"github.com/stockpilot/backend-go/internal/domain"
)

// BaselineSKUPrefix marks synthetic rows so tests and the UI can tell demo
// data from real data.
const BaselineSKUPrefix = "DEMO-"

// BaselineMetrics is the fixed synthetic dataset served when a shop has no
// stored data at all. It only exists to keep the dashboard non-empty; the
// numbers cover the interesting classification branches (shortage, mild and
// severe overstock, dead stock, below-floor sales).
func BaselineMetrics(shop string, now time.Time) []domain.VariantMetric {
	cost := func(v float64) *float64 { return &v }
	ts := now.UTC()

	return []domain.VariantMetric{
		{
			ID: "demo-1", ShopDomain: shop, SKU: BaselineSKUPrefix + "TEE-S",
			ProductName: "Classic Tee", VariantTitle: "Small",
			Available: 12, UnitCost: cost(8.50),
			Sales30d: 90, Sales60d: 170, Sales90d: 240,
			LastCalculated: ts,
		},
		{
			ID: "demo-2", ShopDomain: shop, SKU: BaselineSKUPrefix + "TEE-M",
			ProductName: "Classic Tee", VariantTitle: "Medium",
			Available: 140, UnitCost: cost(8.50),
			Sales30d: 30, Sales60d: 55, Sales90d: 80,
			LastCalculated: ts,
		},
		{
			ID: "demo-3", ShopDomain: shop, SKU: BaselineSKUPrefix + "HOODIE-L",
			ProductName: "Zip Hoodie", VariantTitle: "Large",
			Available: 400, UnitCost: cost(22.00),
			Sales30d: 0, Sales60d: 0, Sales90d: 0,
			LastCalculated: ts,
		},
		{
			ID: "demo-4", ShopDomain: shop, SKU: BaselineSKUPrefix + "CAP",
			ProductName: "Logo Cap", VariantTitle: "One Size",
			Available: 25,
			Sales30d:  5, Sales60d: 8, Sales90d: 12,
			LastCalculated: ts,
		},
		{
			ID: "demo-5", ShopDomain: shop, SKU: BaselineSKUPrefix + "SOCKS",
			ProductName: "Crew Socks", VariantTitle: "3-Pack",
			Available: 0, UnitCost: cost(3.25),
			Sales30d: 45, Sales60d: 85, Sales90d: 120,
			LastCalculated: ts,
		},
	}
}
