// internal/domain/models.go
package domain

import "time"

// VariantMetric is the persisted snapshot for one (shop, variant) pair. It is
// created or overwritten wholesale by the sync orchestrator on every
// successful refresh; nothing else mutates it.
type VariantMetric struct {
	ID             string    `json:"id" db:"variant_id"`
	ShopDomain     string    `json:"shop_domain" db:"shop_domain"`
	SKU            string    `json:"sku" db:"sku"`
	ProductName    string    `json:"product_name" db:"product_name"`
	VariantTitle   string    `json:"variant_title" db:"variant_title"`
	Available      int       `json:"available" db:"available"`
	UnitCost       *float64  `json:"unit_cost,omitempty" db:"unit_cost"`
	Sales30d       int       `json:"sales_30d" db:"sales_30d"`
	Sales60d       int       `json:"sales_60d" db:"sales_60d"`
	Sales90d       int       `json:"sales_90d" db:"sales_90d"`
	LastCalculated time.Time `json:"last_calculated" db:"last_calculated"`
}

// SalesInWindow returns the cumulative unit count for the given timeframe.
func (m VariantMetric) SalesInWindow(tf Timeframe) int {
	switch tf {
	case Timeframe30:
		return m.Sales30d
	case Timeframe60:
		return m.Sales60d
	default:
		return m.Sales90d
	}
}

// WindowsMonotonic reports whether sales90 >= sales60 >= sales30. The upstream
// source is expected to honor this but nothing enforces it, so callers only
// warn when it does not hold.
func (m VariantMetric) WindowsMonotonic() bool {
	return m.Sales90d >= m.Sales60d && m.Sales60d >= m.Sales30d
}

// StockValue is unit cost times available stock, zero when cost is unknown.
func (m VariantMetric) StockValue() float64 {
	if m.UnitCost == nil {
		return 0
	}
	return *m.UnitCost * float64(m.Available)
}

// OverstockSeverity labels how much excess capital a variant is holding.
type OverstockSeverity string

const (
	OverstockNormal OverstockSeverity = "normal"
	OverstockMild   OverstockSeverity = "mild"
	OverstockSevere OverstockSeverity = "severe"
)

// DashboardRow is the per-timeframe projection of a VariantMetric. It is
// derived fresh on every request and never persisted.
type DashboardRow struct {
	VariantID         string            `json:"variant_id"`
	SKU               string            `json:"sku"`
	ProductName       string            `json:"product_name"`
	VariantTitle      string            `json:"variant_title"`
	Available         int               `json:"available"`
	UnitCost          *float64          `json:"unit_cost,omitempty"`
	SalesInWindow     int               `json:"sales_in_window"`
	AvgDailySales     float64           `json:"avg_daily_sales"`
	CoverageDays      float64           `json:"coverage_days"`
	RecommendedQty    int               `json:"recommended_qty"`
	StockValue        float64           `json:"stock_value"`
	InsufficientSales bool              `json:"insufficient_sales"`
	Severity          OverstockSeverity `json:"severity"`
}

// BudgetPick is one funded line in a budget plan.
type BudgetPick struct {
	SKU          string  `json:"sku"`
	VariantID    string  `json:"variant_id"`
	ProductName  string  `json:"product_name"`
	Qty          int     `json:"qty"`
	Amount       float64 `json:"amount"`
	CoverageDays float64 `json:"coverage_days"`
	RiskTag      string  `json:"risk_tag"`
}

// BudgetPlan is the allocator output: a ranked, budget-respecting pick list
// with aggregate coverage and exclusion statistics. Derived per request.
type BudgetPlan struct {
	Budget         float64      `json:"budget"`
	CoverageDays   int          `json:"coverage_days"`
	UsedAmount     float64      `json:"used_amount"`
	ExcludedAmount float64      `json:"excluded_amount"`
	CoverageShare  float64      `json:"coverage_share"`
	Picks          []BudgetPick `json:"picks"`
	ExcludedCount  int          `json:"excluded_count"`
}
