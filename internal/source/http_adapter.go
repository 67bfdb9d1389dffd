// internal/source/http_adapter.go
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/stockpilot/backend-go/internal/config"
)

// httpAdapter talks to the upstream catalog/order API over its cursor-based
// REST endpoints, authenticated with client credentials.
type httpAdapter struct {
	baseURL  string
	pageSize int
	client   *http.Client
}

// NewHTTPAdapter builds the production adapter from source configuration.
func NewHTTPAdapter(cfg config.SourceConfig) (Adapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("source base URL must be provided")
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		client = cc.Client(ctx)
		client.Timeout = cfg.Timeout
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 250
	}

	return &httpAdapter{
		baseURL:  cfg.BaseURL,
		pageSize: pageSize,
		client:   client,
	}, nil
}

type inventoryPageResponse struct {
	Items []struct {
		VariantID    string   `json:"variant_id"`
		SKU          string   `json:"sku"`
		ProductName  string   `json:"product_name"`
		VariantTitle string   `json:"variant_title"`
		Available    int      `json:"available"`
		UnitCost     *float64 `json:"unit_cost"`
	} `json:"items"`
	NextCursor string `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

type ordersPageResponse struct {
	Lines []struct {
		VariantID string    `json:"variant_id"`
		Quantity  int       `json:"quantity"`
		OrderedAt time.Time `json:"ordered_at"`
	} `json:"lines"`
	NextCursor string `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

func (a *httpAdapter) FetchInventoryPage(ctx context.Context, cursor string) ([]InventoryItem, string, bool, error) {
	params := url.Values{"limit": {strconv.Itoa(a.pageSize)}}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp inventoryPageResponse
	if err := a.getJSON(ctx, "/v1/inventory_levels", params, &resp); err != nil {
		return nil, "", false, err
	}

	items := make([]InventoryItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, InventoryItem{
			VariantID:    it.VariantID,
			SKU:          it.SKU,
			ProductName:  it.ProductName,
			VariantTitle: it.VariantTitle,
			Available:    it.Available,
			UnitCost:     it.UnitCost,
		})
	}
	return items, resp.NextCursor, resp.HasMore, nil
}

func (a *httpAdapter) FetchOrdersPage(ctx context.Context, cursor string, sinceDate time.Time) ([]OrderLine, string, bool, error) {
	params := url.Values{
		"limit":          {strconv.Itoa(a.pageSize)},
		"status":         {"paid"},
		"created_at_min": {sinceDate.UTC().Format(time.RFC3339)},
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp ordersPageResponse
	if err := a.getJSON(ctx, "/v1/order_lines", params, &resp); err != nil {
		return nil, "", false, err
	}

	lines := make([]OrderLine, 0, len(resp.Lines))
	for _, l := range resp.Lines {
		lines = append(lines, OrderLine{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			OrderedAt: l.OrderedAt,
		})
	}
	return lines, resp.NextCursor, resp.HasMore, nil
}

func (a *httpAdapter) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
