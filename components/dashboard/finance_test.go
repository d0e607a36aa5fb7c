package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-bizdash/components/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryScenarioStoreCRUD(t *testing.T) {
	store := NewInMemoryScenarioStore()
	fixed := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	params := projection.DefaultSweepParameters()
	params.UsersMax = 50_000
	require.NoError(t, store.SaveScenario(ctx, Scenario{Name: "  Seed Round ", Parameters: params}))
	require.NoError(t, store.SaveScenario(ctx, Scenario{Name: "Angel", Parameters: projection.DefaultSweepParameters()}))

	got, err := store.LoadScenario(ctx, "SEED ROUND")
	require.NoError(t, err)
	assert.Equal(t, "seed round", got.Name)
	assert.Equal(t, int64(50_000), got.Parameters.UsersMax)
	assert.Equal(t, fixed, got.UpdatedAt)

	list, err := store.ListScenarios(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "angel", list[0].Name)
	assert.Equal(t, "seed round", list[1].Name)

	require.NoError(t, store.DeleteScenario(ctx, "angel"))
	_, err = store.LoadScenario(ctx, "angel")
	assert.ErrorIs(t, err, ErrScenarioNotFound)
	assert.ErrorIs(t, store.DeleteScenario(ctx, "angel"), ErrScenarioNotFound)
}

func TestInMemoryScenarioStoreValidates(t *testing.T) {
	store := NewInMemoryScenarioStore()
	ctx := context.Background()

	assert.Error(t, store.SaveScenario(ctx, Scenario{Name: "   ", Parameters: projection.DefaultSweepParameters()}))

	bad := projection.DefaultSweepParameters()
	bad.Step = 0
	assert.ErrorIs(t, store.SaveScenario(ctx, Scenario{Name: "broken", Parameters: bad}), projection.ErrInvalidParameter)

	degenerate := projection.DefaultSweepParameters()
	degenerate.UsersMin = 200_000
	assert.ErrorIs(t, store.SaveScenario(ctx, Scenario{Name: "broken", Parameters: degenerate}), projection.ErrDegenerateRange)

	_, err := store.LoadScenario(ctx, "broken")
	assert.ErrorIs(t, err, ErrScenarioNotFound)
}

func TestNormalizeScenarioName(t *testing.T) {
	assert.Equal(t, DefaultScenarioName, NormalizeScenarioName(""))
	assert.Equal(t, DefaultScenarioName, NormalizeScenarioName("   "))
	assert.Equal(t, "series a", NormalizeScenarioName(" Series A "))
}

func TestSweepSourceFallsBackToDefaultParameters(t *testing.T) {
	source := NewSweepSource(nil, nil)
	ctx := context.Background()

	params, err := source.Parameters(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, projection.DefaultSweepParameters(), params)

	_, err = source.Parameters(ctx, "unknown")
	assert.ErrorIs(t, err, ErrScenarioNotFound)
}

func TestSweepSourcePrefersSavedBaseline(t *testing.T) {
	source := NewSweepSource(nil, nil)
	ctx := context.Background()
	params := projection.DefaultSweepParameters()
	params.ARPUCurrent = 12
	require.NoError(t, source.Scenarios().SaveScenario(ctx, Scenario{Name: DefaultScenarioName, Parameters: params}))

	got, err := source.Parameters(ctx, "Baseline")
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.ARPUCurrent)
}

func TestSweepSourceResolveAppliesOverrides(t *testing.T) {
	source := NewSweepSource(nil, projection.NewSweepMemo())
	step := int64(25_000)

	dataset, params, err := source.Resolve(context.Background(), "", SweepOverrides{Step: &step})
	require.NoError(t, err)
	assert.Equal(t, int64(25_000), params.Step)
	require.Len(t, dataset, 5)
	assert.Equal(t, int64(100_000), dataset[4].Users)

	_, _, err = source.Resolve(context.Background(), "", SweepOverrides{Step: &step})
	require.NoError(t, err)
	assert.Equal(t, int64(1), source.Memo().Hits())
	assert.Equal(t, int64(1), source.Memo().Misses())
}

func TestSweepSourceKeepsDatasetsPerScenario(t *testing.T) {
	source := NewSweepSource(nil, nil)
	ctx := context.Background()
	coarse := int64(50_000)

	for i := 0; i < 2; i++ {
		_, _, err := source.Resolve(ctx, "", SweepOverrides{})
		require.NoError(t, err)
		_, _, err = source.Resolve(ctx, "", SweepOverrides{Step: &coarse})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), source.Memo().Misses())
	assert.Equal(t, int64(2), source.Memo().Hits())
}

func TestStaticFinanceRepositoryReturnsCopies(t *testing.T) {
	repo := NewStaticFinanceRepository(DemoFinanceSnapshot())
	ctx := context.Background()

	first, err := repo.FetchFinance(ctx, FinanceQuery{})
	require.NoError(t, err)
	first.Expenses[0].MonthlyCost = 1
	first.Revenue = nil

	second, err := repo.FetchFinance(ctx, FinanceQuery{})
	require.NoError(t, err)
	assert.Equal(t, 68000.0, second.Expenses[0].MonthlyCost)
	assert.Len(t, second.Revenue, 4)
}

func TestDemoFinanceSnapshotKPIs(t *testing.T) {
	kpis, err := DemoFinanceSnapshot().KPIs()
	require.NoError(t, err)
	assert.Equal(t, 91850.0, kpis.MonthlyRevenue)
	assert.Equal(t, 132500.0, kpis.MonthlyExpenses)
	assert.Equal(t, 40650.0, kpis.MonthlyBurn)
	assert.Equal(t, projection.RunwayFinite, kpis.Runway.State)
	assert.InDelta(t, 30.75, kpis.Runway.Months, 0.01)
}
