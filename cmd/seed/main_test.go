package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDemoUpsertRefreshesEveryMutableColumn(t *testing.T) {
	columns := []string{
		"sku",
		"product_name",
		"variant_title",
		"available",
		"unit_cost",
		"sales_30d",
		"sales_60d",
		"sales_90d",
		"last_calculated",
	}
	for _, col := range columns {
		assert.Contains(t, demoUpsertQuery, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
}
