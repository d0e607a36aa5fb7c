package ledger

import (
	"context"
	"time"

	"github.com/goliatone/go-bizdash/components/projection"
)

// Query scopes a ledger lookup.
type Query struct {
	Scenario string
	AsOf     time.Time
}

// CashPosition is the cash balance reported by the ledger.
type CashPosition struct {
	Balance  float64
	Currency string
	AsOf     time.Time
}

// RevenueClient fetches recurring revenue lines.
type RevenueClient interface {
	FetchRevenue(ctx context.Context, query Query) ([]projection.RevenueItem, error)
}

// ExpenseClient fetches monthly cost lines.
type ExpenseClient interface {
	FetchExpenses(ctx context.Context, query Query) ([]projection.ExpenseItem, error)
}

// CashClient fetches the current cash position.
type CashClient interface {
	FetchCash(ctx context.Context, query Query) (CashPosition, error)
}

// Client is a convenience union for ledgers that implement all calls.
type Client interface {
	RevenueClient
	ExpenseClient
	CashClient
}
