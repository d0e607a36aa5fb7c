package ledger

import (
	"context"
	"sync"

	"github.com/goliatone/go-bizdash/components/projection"
)

// MockData seeds deterministic ledger responses for tests or local demos.
type MockData struct {
	Revenue  []projection.RevenueItem
	Expenses []projection.ExpenseItem
	Cash     CashPosition
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

// NewMockClient builds a mock ledger client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// Set replaces the fixtures.
func (c *MockClient) Set(data MockData) {
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
}

// FetchRevenue returns the configured revenue lines ignoring query filters.
func (c *MockClient) FetchRevenue(context.Context, Query) ([]projection.RevenueItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]projection.RevenueItem(nil), c.data.Revenue...), nil
}

// FetchExpenses returns the configured expense lines ignoring query filters.
func (c *MockClient) FetchExpenses(context.Context, Query) ([]projection.ExpenseItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]projection.ExpenseItem(nil), c.data.Expenses...), nil
}

// FetchCash returns the configured cash position.
func (c *MockClient) FetchCash(context.Context, Query) (CashPosition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Cash, nil
}
