// internal/report/timeframe.go
package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/forecast"
)

const topN = 5

// KPISet is the headline numbers for one timeframe.
type KPISet struct {
	RowCount           int     `json:"row_count"`
	TotalStockValue    float64 `json:"total_stock_value"`
	MedianCoverageDays float64 `json:"median_coverage_days"`
	ShortageCount      int     `json:"shortage_count"`
	OverstockCount     int     `json:"overstock_count"`
	ShortageOverstock  string  `json:"shortage_overstock"`
}

// TimeframeSummary bundles the KPIs with the top-N urgency lists for one
// sales window.
type TimeframeSummary struct {
	Timeframe    domain.Timeframe      `json:"timeframe"`
	KPIs         KPISet                `json:"kpis"`
	ShortageTop  []domain.DashboardRow `json:"shortage_top"`
	OverstockTop []domain.DashboardRow `json:"overstock_top"`
}

// BuildTimeframe assembles the KPI summary and top-5 lists for one timeframe
// from already-projected dashboard rows.
func BuildTimeframe(rows []domain.DashboardRow, tf domain.Timeframe, settings domain.ThresholdSettings) TimeframeSummary {
	summary := TimeframeSummary{
		Timeframe:    tf,
		ShortageTop:  []domain.DashboardRow{},
		OverstockTop: []domain.DashboardRow{},
	}

	coverages := make([]float64, 0, len(rows))
	var totalValue float64
	var shortages, overstocks []domain.DashboardRow

	for _, row := range rows {
		totalValue += row.StockValue
		coverages = append(coverages, row.CoverageDays)

		if forecast.IsShortage(row, settings) {
			shortages = append(shortages, row)
		}
		if row.CoverageDays >= float64(settings.OverstockThresholdDays) {
			overstocks = append(overstocks, row)
		}
	}

	// Most urgent first: shortest runway leads the shortage list.
	sort.SliceStable(shortages, func(i, j int) bool {
		if shortages[i].CoverageDays != shortages[j].CoverageDays {
			return shortages[i].CoverageDays < shortages[j].CoverageDays
		}
		return shortages[i].SKU < shortages[j].SKU
	})
	// Biggest capital exposure first for overstock.
	sort.SliceStable(overstocks, func(i, j int) bool {
		if overstocks[i].StockValue != overstocks[j].StockValue {
			return overstocks[i].StockValue > overstocks[j].StockValue
		}
		return overstocks[i].SKU < overstocks[j].SKU
	})

	summary.ShortageTop = append(summary.ShortageTop, firstN(shortages, topN)...)
	summary.OverstockTop = append(summary.OverstockTop, firstN(overstocks, topN)...)

	summary.KPIs = KPISet{
		RowCount:           len(rows),
		TotalStockValue:    round1(totalValue),
		MedianCoverageDays: median(coverages),
		ShortageCount:      len(shortages),
		OverstockCount:     len(overstocks),
		ShortageOverstock:  fmt.Sprintf("%d shortage / %d overstock", len(shortages), len(overstocks)),
	}

	return summary
}

// BuildAll projects a metric set across every supported timeframe.
func BuildAll(metrics []domain.VariantMetric, settings domain.ThresholdSettings) []TimeframeSummary {
	summaries := make([]TimeframeSummary, 0, len(domain.Timeframes))
	for _, tf := range domain.Timeframes {
		rows := forecast.BuildRows(metrics, tf, settings)
		summaries = append(summaries, BuildTimeframe(rows, tf, settings))
	}
	return summaries
}

// median averages the two middle values for even counts, rounded to 1 decimal.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return round1(sorted[mid])
	}
	return round1((sorted[mid-1] + sorted[mid]) / 2)
}

func firstN(rows []domain.DashboardRow, n int) []domain.DashboardRow {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
