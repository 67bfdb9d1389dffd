// internal/source/collect.go
package source

import (
	"context"
	"fmt"
	"time"
)

// ErrPageGuard marks a fetch that hit the page-count ceiling. Pages collected
// before the trip are still returned; callers log the trip and use the
// partial result.
type ErrPageGuard struct {
	Resource string
	MaxPages int
}

func (e *ErrPageGuard) Error() string {
	return fmt.Sprintf("%s fetch stopped at page guard (%d pages)", e.Resource, e.MaxPages)
}

// CollectInventory walks the inventory cursor sequentially until exhaustion
// or the page guard. The loop is bounded, not an open-ended stream.
func CollectInventory(ctx context.Context, adapter Adapter, maxPages int) ([]InventoryItem, error) {
	var (
		all    []InventoryItem
		cursor string
	)
	for page := 0; ; page++ {
		if page >= maxPages {
			return all, &ErrPageGuard{Resource: "inventory", MaxPages: maxPages}
		}
		items, next, hasMore, err := adapter.FetchInventoryPage(ctx, cursor)
		if err != nil {
			return all, fmt.Errorf("inventory page %d: %w", page, err)
		}
		all = append(all, items...)
		if !hasMore {
			return all, nil
		}
		cursor = next
	}
}

// CollectOrders walks the order-line cursor for the trailing window, with the
// same bounded-loop guard as CollectInventory.
func CollectOrders(ctx context.Context, adapter Adapter, sinceDate time.Time, maxPages int) ([]OrderLine, error) {
	var (
		all    []OrderLine
		cursor string
	)
	for page := 0; ; page++ {
		if page >= maxPages {
			return all, &ErrPageGuard{Resource: "orders", MaxPages: maxPages}
		}
		lines, next, hasMore, err := adapter.FetchOrdersPage(ctx, cursor, sinceDate)
		if err != nil {
			return all, fmt.Errorf("orders page %d: %w", page, err)
		}
		all = append(all, lines...)
		if !hasMore {
			return all, nil
		}
		cursor = next
	}
}
