package report

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend-go/internal/domain"
)

func testSettings() domain.ThresholdSettings {
	return domain.DefaultSettings("test-shop.example.com")
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"odd count", []float64{9, 1, 5}, 5},
		{"even count averages middles", []float64{1, 2, 3, 10}, 2.5},
		{"even count rounds to one decimal", []float64{1, 2, 2.5, 10}, 2.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, median(tt.values))
		})
	}
}

func TestBuildTimeframeTopLists(t *testing.T) {
	settings := testSettings()

	rows := []domain.DashboardRow{
		{SKU: "SHORT-1", CoverageDays: 2, RecommendedQty: 10, StockValue: 100},
		{SKU: "SHORT-2", CoverageDays: 5, RecommendedQty: 8, StockValue: 50},
		{SKU: "HEALTHY", CoverageDays: 30, RecommendedQty: 1, StockValue: 200},
		{SKU: "OVER-1", CoverageDays: 120, RecommendedQty: 0, StockValue: 900},
		{SKU: "OVER-2", CoverageDays: 200, RecommendedQty: 0, StockValue: 400},
	}

	summary := BuildTimeframe(rows, domain.Timeframe30, settings)

	require.Len(t, summary.ShortageTop, 2)
	assert.Equal(t, "SHORT-1", summary.ShortageTop[0].SKU)
	assert.Equal(t, "SHORT-2", summary.ShortageTop[1].SKU)

	require.Len(t, summary.OverstockTop, 2)
	assert.Equal(t, "OVER-1", summary.OverstockTop[0].SKU)
	assert.Equal(t, "OVER-2", summary.OverstockTop[1].SKU)

	assert.Equal(t, 5, summary.KPIs.RowCount)
	assert.Equal(t, 1650.0, summary.KPIs.TotalStockValue)
	assert.Equal(t, 30.0, summary.KPIs.MedianCoverageDays)
	assert.Equal(t, "2 shortage / 2 overstock", summary.KPIs.ShortageOverstock)
}

func TestBuildTimeframeTopFiveLimit(t *testing.T) {
	settings := testSettings()

	rows := make([]domain.DashboardRow, 0, 8)
	for i := 0; i < 8; i++ {
		rows = append(rows, domain.DashboardRow{
			SKU:            fmt.Sprintf("SHORT-%d", i),
			CoverageDays:   float64(i),
			RecommendedQty: 10,
		})
	}

	summary := BuildTimeframe(rows, domain.Timeframe30, settings)

	require.Len(t, summary.ShortageTop, 5)
	assert.Equal(t, 8, summary.KPIs.ShortageCount)
	// Most urgent first.
	assert.Equal(t, "SHORT-0", summary.ShortageTop[0].SKU)
	assert.Equal(t, "SHORT-4", summary.ShortageTop[4].SKU)
}

func TestBuildTimeframeEmpty(t *testing.T) {
	summary := BuildTimeframe(nil, domain.Timeframe60, testSettings())

	assert.Equal(t, 0, summary.KPIs.RowCount)
	assert.Equal(t, 0.0, summary.KPIs.MedianCoverageDays)
	assert.NotNil(t, summary.ShortageTop)
	assert.NotNil(t, summary.OverstockTop)
}

func TestBuildAllCoversEveryTimeframe(t *testing.T) {
	metrics := []domain.VariantMetric{
		{ID: "v1", SKU: "A", Available: 10, Sales30d: 300, Sales60d: 400, Sales90d: 500},
	}

	summaries := BuildAll(metrics, testSettings())

	require.Len(t, summaries, 3)
	assert.Equal(t, domain.Timeframe30, summaries[0].Timeframe)
	assert.Equal(t, domain.Timeframe60, summaries[1].Timeframe)
	assert.Equal(t, domain.Timeframe90, summaries[2].Timeframe)
}
