package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-bizdash/components/projection"
)

// HTTPConfig configures the HTTP ledger client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to a remote accounting system via REST endpoints.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client for a live ledger API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ledger: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// FetchRevenue implements RevenueClient.
func (c *HTTPClient) FetchRevenue(ctx context.Context, query Query) ([]projection.RevenueItem, error) {
	var resp revenueResponse
	if err := c.do(ctx, "/revenue/query", newLedgerRequest(query), &resp); err != nil {
		return nil, err
	}
	return resp.toItems(), nil
}

// FetchExpenses implements ExpenseClient.
func (c *HTTPClient) FetchExpenses(ctx context.Context, query Query) ([]projection.ExpenseItem, error) {
	var resp expenseResponse
	if err := c.do(ctx, "/expenses/query", newLedgerRequest(query), &resp); err != nil {
		return nil, err
	}
	return resp.toItems(), nil
}

// FetchCash implements CashClient.
func (c *HTTPClient) FetchCash(ctx context.Context, query Query) (CashPosition, error) {
	var resp cashResponse
	if err := c.do(ctx, "/cash/query", newLedgerRequest(query), &resp); err != nil {
		return CashPosition{}, err
	}
	return resp.toPosition()
}

func (c *HTTPClient) do(ctx context.Context, path string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ledger: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ledger: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ledger: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("ledger: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("ledger: decode response: %w", err)
	}
	return nil
}

type ledgerRequest struct {
	Scenario string `json:"scenario,omitempty"`
	AsOf     string `json:"as_of,omitempty"`
}

func newLedgerRequest(query Query) ledgerRequest {
	req := ledgerRequest{Scenario: query.Scenario}
	if !query.AsOf.IsZero() {
		req.AsOf = query.AsOf.UTC().Format(time.DateOnly)
	}
	return req
}

type revenueLine struct {
	Name    string  `json:"name"`
	Segment string  `json:"segment"`
	MRR     float64 `json:"mrr"`
}

type revenueResponse struct {
	Items []revenueLine `json:"items"`
}

func (r revenueResponse) toItems() []projection.RevenueItem {
	items := make([]projection.RevenueItem, len(r.Items))
	for i, line := range r.Items {
		items[i] = projection.RevenueItem{Name: line.Name, Segment: line.Segment, MRR: line.MRR}
	}
	return items
}

type expenseLine struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	MonthlyCost float64 `json:"monthly_cost"`
}

type expenseResponse struct {
	Items []expenseLine `json:"items"`
}

func (r expenseResponse) toItems() []projection.ExpenseItem {
	items := make([]projection.ExpenseItem, len(r.Items))
	for i, line := range r.Items {
		items[i] = projection.ExpenseItem{Name: line.Name, Category: line.Category, MonthlyCost: line.MonthlyCost}
	}
	return items
}

type cashResponse struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
	AsOf     string  `json:"as_of"`
}

func (r cashResponse) toPosition() (CashPosition, error) {
	pos := CashPosition{Balance: r.Balance, Currency: r.Currency}
	if r.AsOf == "" {
		return pos, nil
	}
	day, err := time.Parse(time.DateOnly, r.AsOf)
	if err != nil {
		return CashPosition{}, fmt.Errorf("ledger: parse cash date %q: %w", r.AsOf, err)
	}
	pos.AsOf = day
	return pos, nil
}
