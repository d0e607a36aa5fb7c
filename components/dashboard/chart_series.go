package dashboard

import (
	"encoding/json"
	"fmt"
)

// ChartSeries is one legend entry. Line series sharing a Stack are drawn
// stacked; Area fills below the line.
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
	Stack  string       `json:"stack,omitempty"`
	Area   bool         `json:"area,omitempty"`
}

// ChartPoint is a single value, optionally labeled. Scatter charts read Pair.
type ChartPoint struct {
	Label string    `json:"label,omitempty"`
	Value float64   `json:"value"`
	Pair  []float64 `json:"pair,omitempty"`
}

// ValueSeries builds an unlabeled series from plain values.
func ValueSeries(name string, values []float64) ChartSeries {
	points := make([]ChartPoint, len(values))
	for i, v := range values {
		points[i] = ChartPoint{Value: v}
	}
	return ChartSeries{Name: name, Points: points}
}

type seriesConfig struct {
	Name  string            `json:"name"`
	Data  []json.RawMessage `json:"data"`
	Stack string            `json:"stack"`
	Area  bool              `json:"area"`
}

type pointConfig struct {
	Name  string      `json:"name"`
	Label string      `json:"label"`
	Value json.Number `json:"value"`
	X     json.Number `json:"x"`
	Y     json.Number `json:"y"`
}

// parseChartSeries reads the "series" entry of a chart configuration. Each
// data element may be a number, an [x, y] pair or an object with
// name/value or x/y fields. Series without usable points are dropped.
func parseChartSeries(raw any) []ChartSeries {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var configs []seriesConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil
	}
	out := make([]ChartSeries, 0, len(configs))
	for _, cfg := range configs {
		series := ChartSeries{Name: cfg.Name, Stack: cfg.Stack, Area: cfg.Area}
		if series.Name == "" {
			series.Name = "Series"
		}
		for _, element := range cfg.Data {
			if point, ok := parseChartPoint(element); ok {
				series.Points = append(series.Points, point)
			}
		}
		if len(series.Points) > 0 {
			out = append(out, series)
		}
	}
	return out
}

func parseChartPoint(raw json.RawMessage) (ChartPoint, bool) {
	var value float64
	if err := json.Unmarshal(raw, &value); err == nil {
		return ChartPoint{Value: value}, true
	}
	var pair []float64
	if err := json.Unmarshal(raw, &pair); err == nil {
		if len(pair) < 2 {
			return ChartPoint{}, false
		}
		return ChartPoint{Pair: pair[:2]}, true
	}
	var obj pointConfig
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ChartPoint{}, false
	}
	point := ChartPoint{Label: obj.Name, Value: numberOrZero(obj.Value)}
	if point.Label == "" {
		point.Label = obj.Label
	}
	if obj.X != "" && obj.Y != "" {
		point.Pair = []float64{numberOrZero(obj.X), numberOrZero(obj.Y)}
	}
	return point, true
}

func numberOrZero(n json.Number) float64 {
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return f
}

// axisFromSeries labels the x axis from the longest series, using point labels
// where present.
func axisFromSeries(series []ChartSeries) []string {
	var longest []ChartPoint
	for _, s := range series {
		if len(s.Points) > len(longest) {
			longest = s.Points
		}
	}
	if len(longest) == 0 {
		return nil
	}
	labels := make([]string, len(longest))
	for i, point := range longest {
		labels[i] = point.Label
		if labels[i] == "" {
			labels[i] = fmt.Sprintf("Item %d", i+1)
		}
	}
	return labels
}
