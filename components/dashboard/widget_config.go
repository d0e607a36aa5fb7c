package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-bizdash/components/projection"
)

var (
	// ErrUnknownWidget is returned for definition codes without a registered kind.
	ErrUnknownWidget = errors.New("dashboard: unknown widget definition")
	// ErrInvalidWidgetConfig wraps configuration decode and schema failures.
	ErrInvalidWidgetConfig = errors.New("dashboard: invalid widget configuration")
)

// WidgetKind tags a decoded widget configuration.
type WidgetKind string

const (
	KindSweepChart     WidgetKind = "sweep_chart"
	KindValuationBands WidgetKind = "valuation_bands"
	KindSnapshot       WidgetKind = "valuation_snapshot"
	KindKPISummary     WidgetKind = "kpi_summary"
	KindRunwayGauge    WidgetKind = "runway_gauge"
	KindBreakdown      WidgetKind = "breakdown"
	KindChart          WidgetKind = "chart"
)

// Widget definition codes shipped with the dashboard.
const (
	WidgetARRSweep          = "finance.widget.arr_sweep"
	WidgetValuationBands    = "finance.widget.valuation_bands"
	WidgetValuationSnapshot = "finance.widget.valuation_snapshot"
	WidgetKPISummary        = "finance.widget.kpi_summary"
	WidgetRunwayGauge       = "finance.widget.runway_gauge"
	WidgetExpenseBreakdown  = "finance.widget.expense_breakdown"
	WidgetRevenueBreakdown  = "finance.widget.revenue_breakdown"
	WidgetBarChart          = "finance.widget.bar_chart"
	WidgetLineChart         = "finance.widget.line_chart"
	WidgetPieChart          = "finance.widget.pie_chart"
	WidgetScatterChart      = "finance.widget.scatter_chart"
	WidgetGaugeChart        = "finance.widget.gauge_chart"
)

var widgetKinds = map[string]WidgetKind{
	WidgetARRSweep:          KindSweepChart,
	WidgetValuationBands:    KindValuationBands,
	WidgetValuationSnapshot: KindSnapshot,
	WidgetKPISummary:        KindKPISummary,
	WidgetRunwayGauge:       KindRunwayGauge,
	WidgetExpenseBreakdown:  KindBreakdown,
	WidgetRevenueBreakdown:  KindBreakdown,
	WidgetBarChart:          KindChart,
	WidgetLineChart:         KindChart,
	WidgetPieChart:          KindChart,
	WidgetScatterChart:      KindChart,
	WidgetGaugeChart:        KindChart,
}

var genericChartTypes = map[string]string{
	WidgetBarChart:     "bar",
	WidgetLineChart:    "line",
	WidgetPieChart:     "pie",
	WidgetScatterChart: "scatter",
	WidgetGaugeChart:   "gauge",
}

// WidgetConfig is the typed form of a widget instance configuration.
type WidgetConfig interface {
	Kind() WidgetKind
}

// ChartOptions are the presentation settings shared by chart widgets.
type ChartOptions struct {
	Title           string `json:"title,omitempty"`
	Subtitle        string `json:"subtitle,omitempty"`
	Theme           string `json:"theme,omitempty"`
	Dynamic         bool   `json:"dynamic,omitempty"`
	RefreshEndpoint string `json:"refresh_endpoint,omitempty"`
	FooterNote      string `json:"footer_note,omitempty"`
}

// BandOverride replaces one or both band multipliers.
type BandOverride struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// SweepOverrides replaces individual scenario parameters. Nil fields keep
// the scenario value.
type SweepOverrides struct {
	UsersMin    *int64        `json:"users_min,omitempty"`
	UsersMax    *int64        `json:"users_max,omitempty"`
	Step        *int64        `json:"step,omitempty"`
	ARPUCurrent *float64      `json:"arpu_current,omitempty"`
	ARPUSuper   *float64      `json:"arpu_super,omitempty"`
	LowBand     *BandOverride `json:"low_band,omitempty"`
	HighBand    *BandOverride `json:"high_band,omitempty"`
}

// Apply returns params with the non-nil overrides applied.
func (o SweepOverrides) Apply(params projection.SweepParameters) projection.SweepParameters {
	if o.UsersMin != nil {
		params.UsersMin = *o.UsersMin
	}
	if o.UsersMax != nil {
		params.UsersMax = *o.UsersMax
	}
	if o.Step != nil {
		params.Step = *o.Step
	}
	if o.ARPUCurrent != nil {
		params.ARPUCurrent = *o.ARPUCurrent
	}
	if o.ARPUSuper != nil {
		params.ARPUSuper = *o.ARPUSuper
	}
	params.LowBand = o.LowBand.apply(params.LowBand)
	params.HighBand = o.HighBand.apply(params.HighBand)
	return params
}

func (b *BandOverride) apply(band projection.Band) projection.Band {
	if b == nil {
		return band
	}
	if b.Min != nil {
		band.Min = *b.Min
	}
	if b.Max != nil {
		band.Max = *b.Max
	}
	return band
}

// SweepChartConfig plots ARR for both tiers across the sweep.
type SweepChartConfig struct {
	ChartOptions
	Scenario string         `json:"scenario,omitempty"`
	Sweep    SweepOverrides `json:"sweep,omitempty"`
}

// Kind implements WidgetConfig.
func (SweepChartConfig) Kind() WidgetKind { return KindSweepChart }

// Tier selects the ARPU tier a valuation widget reads.
type Tier string

const (
	TierCurrent Tier = "current"
	TierSuper   Tier = "super"
)

// ValuationBandConfig plots the stacked low/high valuation bands of one tier.
type ValuationBandConfig struct {
	ChartOptions
	Scenario string         `json:"scenario,omitempty"`
	Sweep    SweepOverrides `json:"sweep,omitempty"`
	Tier     Tier           `json:"tier,omitempty"`
}

// Kind implements WidgetConfig.
func (ValuationBandConfig) Kind() WidgetKind { return KindValuationBands }

// SnapshotConfig shows the valuation figures at one user count. A nil
// FocusUsers selects the last row.
type SnapshotConfig struct {
	Title      string         `json:"title,omitempty"`
	Scenario   string         `json:"scenario,omitempty"`
	Sweep      SweepOverrides `json:"sweep,omitempty"`
	FocusUsers *int64         `json:"focus_users,omitempty"`
}

// Kind implements WidgetConfig.
func (SnapshotConfig) Kind() WidgetKind { return KindSnapshot }

// KPI metric names accepted by KPICardConfig.Metrics.
const (
	MetricRevenue   = "revenue"
	MetricExpenses  = "expenses"
	MetricBurn      = "burn"
	MetricNetIncome = "net_income"
	MetricCash      = "cash"
	MetricRunway    = "runway"
)

var defaultKPIMetrics = []string{MetricRevenue, MetricExpenses, MetricBurn, MetricNetIncome, MetricCash, MetricRunway}

// KPICardConfig lists the KPI cards to show.
type KPICardConfig struct {
	Title    string   `json:"title,omitempty"`
	Scenario string   `json:"scenario,omitempty"`
	Metrics  []string `json:"metrics,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// Kind implements WidgetConfig.
func (KPICardConfig) Kind() WidgetKind { return KindKPISummary }

const defaultRunwayTargetMonths = 24

// RunwayGaugeConfig renders runway as a share of TargetMonths.
type RunwayGaugeConfig struct {
	ChartOptions
	Scenario     string  `json:"scenario,omitempty"`
	TargetMonths float64 `json:"target_months,omitempty"`
}

// Kind implements WidgetConfig.
func (RunwayGaugeConfig) Kind() WidgetKind { return KindRunwayGauge }

// Breakdown sources.
const (
	BreakdownExpenses = "expenses"
	BreakdownRevenue  = "revenue"
)

// BreakdownConfig renders a pie of expenses by category or revenue by segment.
type BreakdownConfig struct {
	ChartOptions
	Scenario string `json:"scenario,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Kind implements WidgetConfig.
func (BreakdownConfig) Kind() WidgetKind { return KindBreakdown }

// ChartConfig is the free-form chart configuration of the generic chart widgets.
type ChartConfig struct {
	ChartOptions
	ChartType string        `json:"-"`
	XAxis     []string      `json:"x_axis,omitempty"`
	Series    []ChartSeries `json:"-"`
}

// Kind implements WidgetConfig.
func (ChartConfig) Kind() WidgetKind { return KindChart }

// DecodeWidgetConfig converts a raw configuration map into the typed config
// for definitionID, applying per-widget defaults.
func DecodeWidgetConfig(definitionID string, raw map[string]any) (WidgetConfig, error) {
	kind, ok := widgetKinds[definitionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWidget, definitionID)
	}
	switch kind {
	case KindSweepChart:
		cfg := SweepChartConfig{}
		if err := decodeInto(definitionID, raw, &cfg); err != nil {
			return nil, err
		}
		cfg.Title = defaultString(cfg.Title, "ARR by users")
		return cfg, nil
	case KindValuationBands:
		cfg := ValuationBandConfig{}
		if err := decodeInto(definitionID, raw, &cfg); err != nil {
			return nil, err
		}
		cfg.Tier = Tier(strings.ToLower(string(cfg.Tier)))
		switch cfg.Tier {
		case "":
			cfg.Tier = TierCurrent
		case TierCurrent, TierSuper:
		default:
			return nil, fmt.Errorf("%w: %s: unknown tier %q", ErrInvalidWidgetConfig, definitionID, cfg.Tier)
		}
		cfg.Title = defaultString(cfg.Title, "Valuation bands")
		return cfg, nil
	case KindSnapshot:
		cfg := SnapshotConfig{}
		if err := decodeInto(definitionID, raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.FocusUsers != nil && *cfg.FocusUsers < 0 {
			return nil, fmt.Errorf("%w: %s: focus_users must be >= 0", ErrInvalidWidgetConfig, definitionID)
		}
		cfg.Title = defaultString(cfg.Title, "Valuation snapshot")
		return cfg, nil
	case KindKPISummary:
		cfg := KPICardConfig{}
		if err := decodeInto(definitionID, raw, &cfg); err != nil {
			return nil, err
		}
		if len(cfg.Metrics) == 0 {
			cfg.Metrics = append([]string(nil), defaultKPIMetrics...)
		}
		for _, metric := range cfg.Metrics {
			if !isKPIMetric(metric) {
				return nil, fmt.Errorf("%w: %s: unknown metric %q", ErrInvalidWidgetConfig, definitionID, metric)
			}
		}
		cfg.Title = defaultString(cfg.Title, "Key metrics")
		cfg.Currency = defaultString(cfg.Currency, "$")
		return cfg, nil
	case KindRunwayGauge:
		cfg := RunwayGaugeConfig{}
		if err := decodeInto(definitionID, raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.TargetMonths < 0 {
			return nil, fmt.Errorf("%w: %s: target_months must be positive", ErrInvalidWidgetConfig, definitionID)
		}
		if cfg.TargetMonths == 0 {
			cfg.TargetMonths = defaultRunwayTargetMonths
		}
		cfg.Title = defaultString(cfg.Title, "Runway")
		return cfg, nil
	case KindBreakdown:
		cfg := BreakdownConfig{}
		if err := decodeInto(definitionID, raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.Source == "" {
			cfg.Source = BreakdownExpenses
			if definitionID == WidgetRevenueBreakdown {
				cfg.Source = BreakdownRevenue
			}
		}
		switch cfg.Source {
		case BreakdownExpenses:
			cfg.Title = defaultString(cfg.Title, "Expenses by category")
		case BreakdownRevenue:
			cfg.Title = defaultString(cfg.Title, "Revenue by segment")
		default:
			return nil, fmt.Errorf("%w: %s: unknown source %q", ErrInvalidWidgetConfig, definitionID, cfg.Source)
		}
		return cfg, nil
	default:
		cfg, err := decodeChartConfig(definitionID, genericChartTypes[definitionID], raw)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
}

func decodeChartConfig(definitionID, chartType string, raw map[string]any) (ChartConfig, error) {
	cfg := ChartConfig{ChartType: chartType}
	if err := decodeInto(definitionID, raw, &cfg); err != nil {
		return ChartConfig{}, err
	}
	cfg.Series = parseChartSeries(raw["series"])
	if len(cfg.Series) == 0 {
		return ChartConfig{}, fmt.Errorf("%w: %s: chart series is required", ErrInvalidWidgetConfig, definitionID)
	}
	cfg.Title = defaultString(cfg.Title, "Chart")
	return cfg, nil
}

// WidgetKindFor reports the configuration kind of a definition code.
func WidgetKindFor(definitionID string) (WidgetKind, bool) {
	kind, ok := widgetKinds[definitionID]
	return kind, ok
}

func decodeInto(definitionID string, raw map[string]any, target any) error {
	if len(raw) == 0 {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidWidgetConfig, definitionID, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidWidgetConfig, definitionID, err)
	}
	return nil
}

func isKPIMetric(metric string) bool {
	for _, known := range defaultKPIMetrics {
		if metric == known {
			return true
		}
	}
	return false
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
