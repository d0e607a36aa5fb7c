package dashboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goliatone/go-bizdash/components/projection"
)

// SweepChartProvider plots current and super tier ARR across the user sweep.
type SweepChartProvider struct {
	source   *SweepSource
	renderer *EChartsProvider
}

// NewSweepChartProvider builds the ARR sweep provider.
func NewSweepChartProvider(source *SweepSource, renderer *EChartsProvider) Provider {
	if renderer == nil {
		renderer = NewEChartsProvider("line")
	}
	return &SweepChartProvider{source: source, renderer: renderer}
}

// Fetch renders the ARR sweep widget.
func (p *SweepChartProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.source == nil {
		return nil, fmt.Errorf("arr sweep provider: sweep source is required")
	}
	cfg, err := decodeAs[SweepChartConfig](meta)
	if err != nil {
		return nil, err
	}
	dataset, params, err := p.source.Resolve(ctx, cfg.Scenario, cfg.Sweep)
	if err != nil {
		return nil, fmt.Errorf("arr sweep provider: %w", err)
	}

	current := make([]float64, len(dataset))
	super := make([]float64, len(dataset))
	for i, point := range dataset {
		current[i] = point.ARRCurrent
		super[i] = point.ARRSuper
	}
	opts := cfg.ChartOptions
	if opts.Subtitle == "" {
		opts.Subtitle = fmt.Sprintf("ARPU %s / %s", formatAmount(params.ARPUCurrent), formatAmount(params.ARPUSuper))
	}

	data, err := p.renderer.Render(ctx, meta, ChartRequest{
		ChartOptions: opts,
		XAxis:        userAxis(dataset),
		Series: []ChartSeries{
			ValueSeries(meta.translate(ctx, "finance.series.arr_current", "ARR (current)"), current),
			ValueSeries(meta.translate(ctx, "finance.series.arr_super", "ARR (super)"), super),
		},
	})
	if err != nil {
		return nil, err
	}
	data["source"] = sweepSourcePayload(cfg.Scenario, params, dataset)
	return data, nil
}

// ValuationBandProvider draws one tier's low and high bands as stacked areas:
// the band floor is stacked with its span so the filled region is the range.
type ValuationBandProvider struct {
	source   *SweepSource
	renderer *EChartsProvider
}

// NewValuationBandProvider builds the valuation band provider.
func NewValuationBandProvider(source *SweepSource, renderer *EChartsProvider) Provider {
	if renderer == nil {
		renderer = NewEChartsProvider("line")
	}
	return &ValuationBandProvider{source: source, renderer: renderer}
}

// Fetch renders the valuation band widget.
func (p *ValuationBandProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.source == nil {
		return nil, fmt.Errorf("valuation band provider: sweep source is required")
	}
	cfg, err := decodeAs[ValuationBandConfig](meta)
	if err != nil {
		return nil, err
	}
	dataset, params, err := p.source.Resolve(ctx, cfg.Scenario, cfg.Sweep)
	if err != nil {
		return nil, fmt.Errorf("valuation band provider: %w", err)
	}

	n := len(dataset)
	lowFloor, lowSpan := make([]float64, n), make([]float64, n)
	highFloor, highSpan := make([]float64, n), make([]float64, n)
	for i, point := range dataset {
		tier := point.Current()
		if cfg.Tier == TierSuper {
			tier = point.Super()
		}
		lowFloor[i], lowSpan[i] = tier.LowBand.Low, tier.LowBand.Span
		highFloor[i], highSpan[i] = tier.HighBand.Low, tier.HighBand.Span
	}

	lowLabel := fmt.Sprintf("%gx-%gx", params.LowBand.Min, params.LowBand.Max)
	highLabel := fmt.Sprintf("%gx-%gx", params.HighBand.Min, params.HighBand.Max)
	series := []ChartSeries{
		stacked(ValueSeries(lowLabel+" floor", lowFloor), "low", false),
		stacked(ValueSeries(lowLabel, lowSpan), "low", true),
		stacked(ValueSeries(highLabel+" floor", highFloor), "high", false),
		stacked(ValueSeries(highLabel, highSpan), "high", true),
	}
	opts := cfg.ChartOptions
	if opts.Subtitle == "" {
		opts.Subtitle = string(cfg.Tier)
	}
	data, err := p.renderer.Render(ctx, meta, ChartRequest{
		ChartOptions: opts,
		XAxis:        userAxis(dataset),
		Series:       series,
	})
	if err != nil {
		return nil, err
	}
	data["tier"] = string(cfg.Tier)
	data["source"] = sweepSourcePayload(cfg.Scenario, params, dataset)
	return data, nil
}

func stacked(s ChartSeries, stack string, area bool) ChartSeries {
	s.Stack = stack
	s.Area = area
	return s
}

// SnapshotProvider reports the valuation figures of the row nearest to the
// configured focus user count.
type SnapshotProvider struct {
	source *SweepSource
}

// NewSnapshotProvider builds the valuation snapshot provider.
func NewSnapshotProvider(source *SweepSource) Provider {
	return &SnapshotProvider{source: source}
}

// Fetch renders the valuation snapshot card.
func (p *SnapshotProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.source == nil {
		return nil, fmt.Errorf("valuation snapshot provider: sweep source is required")
	}
	cfg, err := decodeAs[SnapshotConfig](meta)
	if err != nil {
		return nil, err
	}
	dataset, params, err := p.source.Resolve(ctx, cfg.Scenario, cfg.Sweep)
	if err != nil {
		return nil, fmt.Errorf("valuation snapshot provider: %w", err)
	}

	var (
		point projection.SweepPoint
		ok    bool
	)
	if cfg.FocusUsers != nil {
		point, ok = dataset.Nearest(*cfg.FocusUsers)
	} else {
		point, ok = dataset.Last()
	}
	if !ok {
		return nil, fmt.Errorf("valuation snapshot provider: empty dataset")
	}

	return WidgetData{
		"title":  meta.translate(ctx, WidgetValuationSnapshot+".title", cfg.Title),
		"users":  point.Users,
		"point":  point,
		"tiers":  []map[string]any{tierPayload("current", params.ARPUCurrent, point.Current()), tierPayload("super", params.ARPUSuper, point.Super())},
		"source": sweepSourcePayload(cfg.Scenario, params, dataset),
	}, nil
}

func tierPayload(name string, arpu float64, tier projection.TierValuation) map[string]any {
	return map[string]any{
		"name":       name,
		"arpu":       arpu,
		"arr":        tier.ARR,
		"arr_label":  formatAmount(tier.ARR),
		"low_band":   tier.LowBand,
		"high_band":  tier.HighBand,
		"low_label":  rangeLabel(tier.LowBand),
		"high_label": rangeLabel(tier.HighBand),
	}
}

func rangeLabel(r projection.ValuationRange) string {
	return formatAmount(r.Low) + " - " + formatAmount(r.High)
}

func sweepSourcePayload(scenario string, params projection.SweepParameters, dataset projection.Dataset) map[string]any {
	return map[string]any{
		"scenario":   NormalizeScenarioName(scenario),
		"parameters": params,
		"points":     len(dataset),
	}
}

func userAxis(dataset projection.Dataset) []string {
	labels := make([]string, len(dataset))
	for i, users := range dataset.Users() {
		labels[i] = strconv.FormatInt(users, 10)
	}
	return labels
}

// decodeAs decodes the instance configuration and asserts the expected kind.
// The wanted type is reported with %T so a pointer T is never dereferenced.
func decodeAs[T WidgetConfig](meta WidgetContext) (T, error) {
	var zero T
	decoded, err := DecodeWidgetConfig(meta.Instance.DefinitionID, meta.Instance.Configuration)
	if err != nil {
		return zero, err
	}
	cfg, ok := decoded.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s decodes to %s, want %T", ErrInvalidWidgetConfig, meta.Instance.DefinitionID, decoded.Kind(), zero)
	}
	return cfg, nil
}

// formatAmount renders a currency amount with a k/M/B suffix.
func formatAmount(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return "$" + strconv.FormatFloat(v/1e9, 'f', 2, 64) + "B"
	case abs >= 1e6:
		return "$" + strconv.FormatFloat(v/1e6, 'f', 2, 64) + "M"
	case abs >= 1e3:
		return "$" + strconv.FormatFloat(v/1e3, 'f', 1, 64) + "k"
	default:
		return "$" + strconv.FormatFloat(v, 'f', 0, 64)
	}
}
