package ledger

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
)

func TestFinanceRepositoryComposesSnapshot(t *testing.T) {
	mock := NewMockClient(DemoMockData())
	repo := NewFinanceRepository(mock)

	snapshot, err := repo.FetchFinance(context.Background(), dashboard.FinanceQuery{})
	if err != nil {
		t.Fatalf("fetch finance: %v", err)
	}
	kpis, err := snapshot.KPIs()
	if err != nil {
		t.Fatalf("project kpis: %v", err)
	}
	if kpis.MonthlyBurn != 40650 || snapshot.CashBalance != 1_250_000 {
		t.Fatalf("unexpected snapshot %+v", kpis)
	}
}

func TestMockClientReturnsCopies(t *testing.T) {
	mock := NewMockClient(MockData{Revenue: []projection.RevenueItem{{Name: "Plan", MRR: 10}}})
	items, _ := mock.FetchRevenue(context.Background(), Query{})
	items[0].MRR = 99
	again, _ := mock.FetchRevenue(context.Background(), Query{})
	if again[0].MRR != 10 {
		t.Fatalf("mock leaked internal state")
	}

	mock.Set(MockData{Cash: CashPosition{Balance: -5}})
	cash, _ := mock.FetchCash(context.Background(), Query{})
	if cash.Balance != -5 {
		t.Fatalf("expected replaced fixtures")
	}
}

type failingClient struct {
	*MockClient
	err error
}

func (f failingClient) FetchExpenses(context.Context, Query) ([]projection.ExpenseItem, error) {
	return nil, f.err
}

func TestFinanceRepositoryWrapsErrors(t *testing.T) {
	boom := errors.New("timeout")
	repo := NewFinanceRepository(failingClient{MockClient: NewMockClient(MockData{}), err: boom})
	if _, err := repo.FetchFinance(context.Background(), dashboard.FinanceQuery{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if _, err := NewFinanceRepository(nil).FetchFinance(context.Background(), dashboard.FinanceQuery{}); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestFinanceRepositoryDepletedCash(t *testing.T) {
	data := DemoMockData()
	data.Cash = CashPosition{Balance: 0}
	snapshot, err := NewFinanceRepository(NewMockClient(data)).FetchFinance(context.Background(), dashboard.FinanceQuery{})
	if err != nil {
		t.Fatalf("fetch finance: %v", err)
	}
	kpis, err := snapshot.KPIs()
	if err != nil {
		t.Fatalf("project kpis: %v", err)
	}
	if kpis.Runway.State != projection.RunwayDepleted {
		t.Fatalf("expected depleted runway, got %v", kpis.Runway.State)
	}
}
