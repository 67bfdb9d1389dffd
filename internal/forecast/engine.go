// internal/forecast/engine.go
package forecast

import (
	"math"

	"github.com/stockpilot/backend-go/internal/domain"
)

const (
	// MaxCoverageDays caps "infinite runway" SKUs so they do not skew sorts
	// and medians.
	MaxCoverageDays = 999

	// minDailySalesDivisor floors the coverage divisor for slow movers with
	// stock but near-zero velocity.
	minDailySalesDivisor = 0.1
)

// BuildRow projects one variant metric onto a timeframe. Pure, no I/O; every
// degenerate input (zero stock, zero sales, missing cost) has a defined
// branch rather than an error path.
func BuildRow(m domain.VariantMetric, tf domain.Timeframe, settings domain.ThresholdSettings) domain.DashboardRow {
	sales := m.SalesInWindow(tf)

	row := domain.DashboardRow{
		VariantID:     m.ID,
		SKU:           m.SKU,
		ProductName:   m.ProductName,
		VariantTitle:  m.VariantTitle,
		Available:     m.Available,
		UnitCost:      m.UnitCost,
		SalesInWindow: sales,
		StockValue:    round1(m.StockValue()),
	}

	// Forecast eligibility floor: below it the variant contributes no demand
	// signal at all, regardless of stock on hand.
	avgDaily := 0.0
	if sales >= settings.MinSalesForForecast {
		avgDaily = float64(sales) / float64(tf.Days())
	} else {
		row.InsufficientSales = true
	}

	row.AvgDailySales = round1(avgDaily)
	row.CoverageDays = coverageDays(m.Available, avgDaily)
	row.RecommendedQty = recommendedQty(avgDaily, settings.TargetCoverageDays(), m.Available)
	row.Severity = severity(sales, m.Available, row.CoverageDays, settings)

	return row
}

// BuildRows projects a full metric set onto a timeframe.
func BuildRows(metrics []domain.VariantMetric, tf domain.Timeframe, settings domain.ThresholdSettings) []domain.DashboardRow {
	rows := make([]domain.DashboardRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, BuildRow(m, tf, settings))
	}
	return rows
}

// coverageDays estimates how many days the current stock lasts at the current
// velocity. Zero stock means zero runway; the divisor is floored before
// dividing and the result is capped at MaxCoverageDays.
func coverageDays(available int, avgDaily float64) float64 {
	if available <= 0 {
		return 0
	}
	divisor := avgDaily
	if divisor < minDailySalesDivisor {
		divisor = minDailySalesDivisor
	}
	days := round1(float64(available) / divisor)
	if days > MaxCoverageDays {
		return MaxCoverageDays
	}
	return days
}

// recommendedQty is the reorder amount needed to reach the target coverage.
// Zero whenever there is no measured demand, even for empty shelves: no-sales
// dead stock is not a reorder case.
func recommendedQty(avgDaily float64, targetCoverageDays, available int) int {
	if avgDaily == 0 {
		return 0
	}
	qty := math.Ceil(avgDaily*float64(targetCoverageDays) - float64(available))
	if qty < 0 {
		return 0
	}
	return int(qty)
}

// IsShortage reports whether a row belongs in the shortage view. The OR is
// intentional: low-velocity SKUs with ample coverage can still need a bulk
// reorder due to minimum order quantities.
func IsShortage(row domain.DashboardRow, settings domain.ThresholdSettings) bool {
	return row.CoverageDays <= float64(settings.ShortageThresholdDays) ||
		row.RecommendedQty >= settings.MinRecommendedQty
}

// severity classifies overstock in precedence order: severe, then mild, then
// normal. Only rows holding stock are eligible at all.
func severity(sales, available int, coverage float64, settings domain.ThresholdSettings) domain.OverstockSeverity {
	if available <= 0 {
		return domain.OverstockNormal
	}
	if sales == 0 || coverage >= float64(settings.OverstockThresholdDays) {
		return domain.OverstockSevere
	}
	if coverage >= float64(settings.MildOverstockThresholdDays) {
		return domain.OverstockMild
	}
	return domain.OverstockNormal
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
