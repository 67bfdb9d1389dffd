// internal/source/adapter.go
package source

import (
	"context"
	"time"
)

// InventoryItem is one variant's current on-hand state as reported by the
// upstream catalog API.
type InventoryItem struct {
	VariantID    string
	SKU          string
	ProductName  string
	VariantTitle string
	Available    int
	UnitCost     *float64
}

// OrderLine is one paid order line item inside the trailing history window.
type OrderLine struct {
	VariantID string
	Quantity  int
	OrderedAt time.Time
}

// Adapter is the upstream paginated data source. Both calls are cursor-based
// reads; retry and backoff policy belongs to the implementation, the page
// guard to the callers.
type Adapter interface {
	FetchInventoryPage(ctx context.Context, cursor string) (items []InventoryItem, nextCursor string, hasMore bool, err error)
	FetchOrdersPage(ctx context.Context, cursor string, sinceDate time.Time) (lines []OrderLine, nextCursor string, hasMore bool, err error)
}
