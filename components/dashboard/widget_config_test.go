package dashboard

import (
	"testing"

	"github.com/goliatone/go-bizdash/components/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWidgetConfigDefaults(t *testing.T) {
	cases := []struct {
		code  string
		kind  WidgetKind
		title string
	}{
		{WidgetARRSweep, KindSweepChart, "ARR by users"},
		{WidgetValuationBands, KindValuationBands, "Valuation bands"},
		{WidgetValuationSnapshot, KindSnapshot, "Valuation snapshot"},
		{WidgetKPISummary, KindKPISummary, "Key metrics"},
		{WidgetRunwayGauge, KindRunwayGauge, "Runway"},
		{WidgetExpenseBreakdown, KindBreakdown, "Expenses by category"},
		{WidgetRevenueBreakdown, KindBreakdown, "Revenue by segment"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			cfg, err := DecodeWidgetConfig(tc.code, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, cfg.Kind())

			kind, ok := WidgetKindFor(tc.code)
			require.True(t, ok)
			assert.Equal(t, tc.kind, kind)

			switch c := cfg.(type) {
			case SweepChartConfig:
				assert.Equal(t, tc.title, c.Title)
			case ValuationBandConfig:
				assert.Equal(t, tc.title, c.Title)
				assert.Equal(t, TierCurrent, c.Tier)
			case SnapshotConfig:
				assert.Equal(t, tc.title, c.Title)
				assert.Nil(t, c.FocusUsers)
			case KPICardConfig:
				assert.Equal(t, tc.title, c.Title)
				assert.Equal(t, defaultKPIMetrics, c.Metrics)
				assert.Equal(t, "$", c.Currency)
			case RunwayGaugeConfig:
				assert.Equal(t, tc.title, c.Title)
				assert.Equal(t, float64(defaultRunwayTargetMonths), c.TargetMonths)
			case BreakdownConfig:
				assert.Equal(t, tc.title, c.Title)
			default:
				t.Fatalf("unexpected config type %T", cfg)
			}
		})
	}
}

func TestDecodeWidgetConfigSweepOverrides(t *testing.T) {
	cfg, err := DecodeWidgetConfig(WidgetValuationBands, map[string]any{
		"title":    "Super tier",
		"tier":     "SUPER",
		"scenario": "aggressive",
		"sweep": map[string]any{
			"users_max":  250000,
			"step":       25000,
			"arpu_super": 40.5,
			"high_band":  map[string]any{"max": 12},
		},
	})
	require.NoError(t, err)
	bands, ok := cfg.(ValuationBandConfig)
	require.True(t, ok)
	assert.Equal(t, TierSuper, bands.Tier)
	assert.Equal(t, "aggressive", bands.Scenario)

	params := bands.Sweep.Apply(projection.DefaultSweepParameters())
	defaults := projection.DefaultSweepParameters()
	assert.Equal(t, int64(250000), params.UsersMax)
	assert.Equal(t, int64(25000), params.Step)
	assert.Equal(t, defaults.UsersMin, params.UsersMin)
	assert.Equal(t, 40.5, params.ARPUSuper)
	assert.Equal(t, defaults.ARPUCurrent, params.ARPUCurrent)
	assert.Equal(t, defaults.HighBand.Min, params.HighBand.Min)
	assert.Equal(t, 12.0, params.HighBand.Max)
	assert.Equal(t, defaults.LowBand, params.LowBand)
}

func TestDecodeWidgetConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		code string
		raw  map[string]any
	}{
		"unknown tier":         {WidgetValuationBands, map[string]any{"tier": "gold"}},
		"unknown metric":       {WidgetKPISummary, map[string]any{"metrics": []string{"ebitda"}}},
		"negative focus":       {WidgetValuationSnapshot, map[string]any{"focus_users": -5}},
		"negative target":      {WidgetRunwayGauge, map[string]any{"target_months": -1}},
		"unknown source":       {WidgetExpenseBreakdown, map[string]any{"source": "payroll"}},
		"wrong type":           {WidgetARRSweep, map[string]any{"sweep": map[string]any{"step": "ten"}}},
		"chart without series": {WidgetLineChart, map[string]any{"title": "Empty"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := DecodeWidgetConfig(tc.code, tc.raw)
			require.ErrorIs(t, err, ErrInvalidWidgetConfig)
			assert.Nil(t, cfg)
		})
	}
}

func TestDecodeWidgetConfigUnknownWidget(t *testing.T) {
	_, err := DecodeWidgetConfig("finance.widget.crystal_ball", nil)
	require.ErrorIs(t, err, ErrUnknownWidget)
	_, ok := WidgetKindFor("finance.widget.crystal_ball")
	assert.False(t, ok)
}

func TestDecodeWidgetConfigGenericChart(t *testing.T) {
	cfg, err := DecodeWidgetConfig(WidgetScatterChart, map[string]any{
		"series": []any{
			map[string]any{"name": "Deals", "data": []any{[]any{1.0, 2.0}, map[string]any{"x": 3, "y": 4}}},
		},
	})
	require.NoError(t, err)
	chart, ok := cfg.(ChartConfig)
	require.True(t, ok)
	assert.Equal(t, "scatter", chart.ChartType)
	assert.Equal(t, "Chart", chart.Title)
	require.Len(t, chart.Series, 1)
	require.Len(t, chart.Series[0].Points, 2)
	assert.Equal(t, []float64{1, 2}, chart.Series[0].Points[0].Pair)
	assert.Equal(t, []float64{3, 4}, chart.Series[0].Points[1].Pair)
}

func TestDecodeWidgetConfigRevenueBreakdownSource(t *testing.T) {
	cfg, err := DecodeWidgetConfig(WidgetRevenueBreakdown, map[string]any{"theme": "chalk"})
	require.NoError(t, err)
	breakdown := cfg.(BreakdownConfig)
	assert.Equal(t, BreakdownRevenue, breakdown.Source)
	assert.Equal(t, "chalk", breakdown.Theme)
}
