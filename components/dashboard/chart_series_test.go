package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChartSeriesAcceptsPointShapes(t *testing.T) {
	series := parseChartSeries([]any{
		map[string]any{
			"name": "Mixed",
			"data": []any{
				12,
				2.5,
				[]any{3, 4},
				map[string]any{"name": "Payroll", "value": "1500"},
				map[string]any{"label": "Point", "x": 7, "y": 8},
				"ignored",
			},
		},
	})
	require.Len(t, series, 1)
	points := series[0].Points
	require.Len(t, points, 5)
	assert.Equal(t, 12.0, points[0].Value)
	assert.Equal(t, 2.5, points[1].Value)
	assert.Equal(t, []float64{3, 4}, points[2].Pair)
	assert.Equal(t, ChartPoint{Label: "Payroll", Value: 1500}, points[3])
	assert.Equal(t, "Point", points[4].Label)
	assert.Equal(t, []float64{7, 8}, points[4].Pair)
}

func TestParseChartSeriesDropsEmptySeries(t *testing.T) {
	series := parseChartSeries([]map[string]any{
		{"data": []int{1, 2}, "stack": "total", "area": true},
		{"name": "Empty", "data": []any{}},
		{"name": "Short pair", "data": []any{[]any{1}}},
	})
	require.Len(t, series, 1)
	assert.Equal(t, "Series", series[0].Name)
	assert.Equal(t, "total", series[0].Stack)
	assert.True(t, series[0].Area)

	assert.Nil(t, parseChartSeries(nil))
	assert.Nil(t, parseChartSeries("not a list"))
}

func TestAxisFromSeriesUsesLongestSeries(t *testing.T) {
	axis := axisFromSeries([]ChartSeries{
		ValueSeries("short", []float64{1}),
		{Name: "long", Points: []ChartPoint{{Label: "Q1"}, {}, {Label: "Q3"}}},
	})
	assert.Equal(t, []string{"Q1", "Item 2", "Q3"}, axis)
	assert.Nil(t, axisFromSeries(nil))
}
