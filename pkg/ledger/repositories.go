package ledger

import (
	"context"
	"fmt"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// NewFinanceRepository adapts a ledger client into the repository KPI and
// breakdown widgets read from.
func NewFinanceRepository(client Client) dashboard.FinanceRepository {
	return &financeRepository{client: client}
}

type financeRepository struct {
	client Client
}

func (r *financeRepository) FetchFinance(ctx context.Context, query dashboard.FinanceQuery) (dashboard.FinanceSnapshot, error) {
	if r.client == nil {
		return dashboard.FinanceSnapshot{}, fmt.Errorf("ledger: client is required")
	}
	q := Query{Scenario: query.Scenario}
	revenue, err := r.client.FetchRevenue(ctx, q)
	if err != nil {
		return dashboard.FinanceSnapshot{}, fmt.Errorf("ledger: fetch revenue: %w", err)
	}
	expenses, err := r.client.FetchExpenses(ctx, q)
	if err != nil {
		return dashboard.FinanceSnapshot{}, fmt.Errorf("ledger: fetch expenses: %w", err)
	}
	cash, err := r.client.FetchCash(ctx, q)
	if err != nil {
		return dashboard.FinanceSnapshot{}, fmt.Errorf("ledger: fetch cash: %w", err)
	}
	return dashboard.FinanceSnapshot{
		Revenue:     revenue,
		Expenses:    expenses,
		CashBalance: cash.Balance,
	}, nil
}

// DemoMockData mirrors dashboard.DemoFinanceSnapshot for local runs.
func DemoMockData() MockData {
	demo := dashboard.DemoFinanceSnapshot()
	return MockData{
		Revenue:  demo.Revenue,
		Expenses: demo.Expenses,
		Cash:     CashPosition{Balance: demo.CashBalance, Currency: "USD"},
	}
}
