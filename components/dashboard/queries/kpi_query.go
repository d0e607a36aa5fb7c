package queries

import (
	"context"
	"errors"
	"fmt"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
	gocommand "github.com/goliatone/go-command"
)

// KPIInput scopes a KPI projection.
type KPIInput struct {
	Scenario string                  `json:"scenario"`
	Viewer   dashboard.ViewerContext `json:"viewer"`
}

// KPIResult carries the projected KPIs and the breakdowns behind them.
type KPIResult struct {
	Scenario          string                 `json:"scenario"`
	KPIs              projection.KPISnapshot `json:"kpis"`
	ExpenseCategories []projection.Breakdown `json:"expenseCategories"`
	RevenueSegments   []projection.Breakdown `json:"revenueSegments"`
}

// KPIQuery projects KPIs from the finance repository.
type KPIQuery struct {
	repo dashboard.FinanceRepository
}

// NewKPIQuery builds the query.
func NewKPIQuery(repo dashboard.FinanceRepository) *KPIQuery {
	return &KPIQuery{repo: repo}
}

var _ gocommand.Querier[KPIInput, KPIResult] = (*KPIQuery)(nil)

// Query fetches the line items and projects them.
func (q *KPIQuery) Query(ctx context.Context, input KPIInput) (KPIResult, error) {
	if q.repo == nil {
		return KPIResult{}, errors.New("kpi query requires finance repository")
	}
	name := dashboard.NormalizeScenarioName(input.Scenario)
	snapshot, err := q.repo.FetchFinance(ctx, dashboard.FinanceQuery{Scenario: name, Viewer: input.Viewer})
	if err != nil {
		return KPIResult{}, fmt.Errorf("fetch finance for %s: %w", name, err)
	}
	kpis, err := snapshot.KPIs()
	if err != nil {
		return KPIResult{}, err
	}
	return KPIResult{
		Scenario:          name,
		KPIs:              kpis,
		ExpenseCategories: projection.ExpensesByCategory(snapshot.Expenses),
		RevenueSegments:   projection.RevenueBySegment(snapshot.Revenue),
	}, nil
}
