package scenarios

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "scenarios.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	require.Error(t, err)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	params := projection.DefaultSweepParameters()
	params.ARPUSuper = 40
	require.NoError(t, store.SaveScenario(ctx, dashboard.Scenario{Name: " Series A ", Parameters: params}))

	got, err := store.LoadScenario(ctx, "series a")
	require.NoError(t, err)
	assert.Equal(t, "series a", got.Name)
	assert.Equal(t, params, got.Parameters)
	assert.True(t, fixed.Equal(got.UpdatedAt))

	params.Step = 20_000
	require.NoError(t, store.SaveScenario(ctx, dashboard.Scenario{Name: "SERIES A", Parameters: params}))
	got, err = store.LoadScenario(ctx, "Series A")
	require.NoError(t, err)
	assert.Equal(t, int64(20_000), got.Parameters.Step)
}

func TestSQLiteStoreListSortedByName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"gamma", "alpha", "beta"} {
		require.NoError(t, store.SaveScenario(ctx, dashboard.Scenario{Name: name, Parameters: projection.DefaultSweepParameters()}))
	}
	list, err := store.ListScenarios(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestSQLiteStoreMissingScenario(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.LoadScenario(ctx, "missing")
	assert.True(t, errors.Is(err, dashboard.ErrScenarioNotFound))

	err = store.DeleteScenario(ctx, "missing")
	assert.True(t, errors.Is(err, dashboard.ErrScenarioNotFound))
}

func TestSQLiteStoreDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveScenario(ctx, dashboard.Scenario{Name: "bridge", Parameters: projection.DefaultSweepParameters()}))
	require.NoError(t, store.DeleteScenario(ctx, "Bridge"))

	list, err := store.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLiteStoreRejectsInvalidParameters(t *testing.T) {
	store := openTestStore(t)
	params := projection.DefaultSweepParameters()
	params.Step = 0
	err := store.SaveScenario(context.Background(), dashboard.Scenario{Name: "broken", Parameters: params})
	assert.True(t, errors.Is(err, projection.ErrInvalidParameter))

	err = store.SaveScenario(context.Background(), dashboard.Scenario{Name: " ", Parameters: projection.DefaultSweepParameters()})
	assert.Error(t, err)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveScenario(context.Background(), dashboard.Scenario{Name: "baseline", Parameters: projection.DefaultSweepParameters()}))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.LoadScenario(context.Background(), dashboard.DefaultScenarioName)
	require.NoError(t, err)
	assert.Equal(t, projection.DefaultSweepParameters(), got.Parameters)
}

func TestSQLiteStoreBacksSweepSource(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seeded, err := dashboard.SeedScenario(ctx, store)
	require.NoError(t, err)
	assert.True(t, seeded)

	source := dashboard.NewSweepSource(store, nil)
	dataset, _, err := source.Resolve(ctx, "", dashboard.SweepOverrides{})
	require.NoError(t, err)
	assert.Len(t, dataset, 11)
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	var store *SQLiteStore
	_, err := store.ListScenarios(context.Background())
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
