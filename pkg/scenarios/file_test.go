package scenarios

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDemoFile(t *testing.T) {
	file, err := ReadFile(filepath.Join("..", "..", "docs", "scenarios", "demo.yaml"))
	require.NoError(t, err)
	require.Len(t, file.Scenarios, 2)
	assert.Equal(t, "baseline", file.Scenarios[0].Name)

	repo := NewFinanceRepository(file)
	snapshot, err := repo.FetchFinance(context.Background(), dashboard.FinanceQuery{Scenario: "baseline"})
	require.NoError(t, err)
	kpis, err := snapshot.KPIs()
	require.NoError(t, err)
	assert.InDelta(t, 40650, kpis.MonthlyBurn, 0.001)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("version: \"1\"\nscenarios:\n  - name: a\n    colour: red\n"))
	require.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestDecodeValidates(t *testing.T) {
	cases := map[string]string{
		"version":   "version: \"2\"\nscenarios: []\n",
		"duplicate": "scenarios:\n  - name: A\n  - name: a\n",
		"sweep":     "scenarios:\n  - name: a\n    sweep: {users_min: 0, users_max: 10, step: 0, arpu_current: 1, arpu_super: 1, low_band: {min: 1, max: 2}, high_band: {min: 1, max: 2}}\n",
		"expense":   "scenarios:\n  - name: a\n    expenses:\n      - {name: Rent, monthly_cost: -5}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestFileLookupFallsBackForDefault(t *testing.T) {
	file, err := Decode(strings.NewReader("scenarios:\n  - name: Bridge\n    cash_balance: 5000\n"))
	require.NoError(t, err)

	entry, ok := file.Lookup("")
	require.True(t, ok)
	assert.Equal(t, "bridge", entry.Name)

	_, ok = file.Lookup("other")
	assert.False(t, ok)

	repo := NewFinanceRepository(file)
	_, err = repo.FetchFinance(context.Background(), dashboard.FinanceQuery{Scenario: "other"})
	assert.True(t, errors.Is(err, dashboard.ErrScenarioNotFound))
}

func TestFinanceRepositoryReturnsCopies(t *testing.T) {
	file, err := ReadFile(filepath.Join("..", "..", "docs", "scenarios", "demo.yaml"))
	require.NoError(t, err)
	repo := NewFinanceRepository(file)
	first, err := repo.FetchFinance(context.Background(), dashboard.FinanceQuery{Scenario: "aggressive"})
	require.NoError(t, err)
	first.Revenue[0].MRR = 0

	second, err := repo.FetchFinance(context.Background(), dashboard.FinanceQuery{Scenario: "aggressive"})
	require.NoError(t, err)
	assert.Equal(t, 30000.0, second.Revenue[0].MRR)
}

func TestImportIntoSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	doc := "scenarios:\n" +
		"  - name: Seed\n    sweep: {users_min: 0, users_max: 40000, step: 10000, arpu_current: 10, arpu_super: 20, low_band: {min: 2, max: 4}, high_band: {min: 5, max: 8}}\n" +
		"  - name: ledger-only\n    cash_balance: 100\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	file, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, file.Source)

	store := openTestStore(t)
	count, err := file.Import(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.LoadScenario(context.Background(), "seed")
	require.NoError(t, err)
	assert.Equal(t, int64(40000), got.Parameters.UsersMax)

	dataset, err := projection.GenerateSweep(got.Parameters)
	require.NoError(t, err)
	assert.Len(t, dataset, 5)
}

func TestImportRequiresStore(t *testing.T) {
	file := &File{Version: fileVersionV1}
	_, err := file.Import(context.Background(), nil)
	assert.Error(t, err)
}
