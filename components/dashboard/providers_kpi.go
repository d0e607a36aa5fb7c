package dashboard

import (
	"context"
	"fmt"
	"math"

	"github.com/goliatone/go-bizdash/components/projection"
)

// KPISummaryProvider projects finance line items into KPI cards.
type KPISummaryProvider struct {
	repo FinanceRepository
}

// NewKPISummaryProvider builds the KPI summary provider.
func NewKPISummaryProvider(repo FinanceRepository) Provider {
	return &KPISummaryProvider{repo: repo}
}

// Fetch renders the KPI summary card.
func (p *KPISummaryProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg, err := decodeAs[KPICardConfig](meta)
	if err != nil {
		return nil, err
	}
	kpis, err := projectFinance(ctx, p.repo, cfg.Scenario, meta.Viewer)
	if err != nil {
		return nil, fmt.Errorf("kpi summary provider: %w", err)
	}

	cards := make([]map[string]any, 0, len(cfg.Metrics))
	for _, metric := range cfg.Metrics {
		card := kpiCard(metric, kpis)
		card["label"] = meta.translate(ctx, "finance.kpi."+metric, card["label"].(string))
		cards = append(cards, card)
	}
	return WidgetData{
		"title":    meta.translate(ctx, WidgetKPISummary+".title", cfg.Title),
		"cards":    cards,
		"snapshot": kpis,
		"currency": cfg.Currency,
	}, nil
}

func kpiCard(metric string, kpis projection.KPISnapshot) map[string]any {
	switch metric {
	case MetricRevenue:
		return amountCard(metric, "Monthly revenue", kpis.MonthlyRevenue, "positive")
	case MetricExpenses:
		return amountCard(metric, "Monthly expenses", kpis.MonthlyExpenses, "neutral")
	case MetricBurn:
		tone := "positive"
		if kpis.MonthlyBurn > 0 {
			tone = "negative"
		}
		return amountCard(metric, "Monthly burn", kpis.MonthlyBurn, tone)
	case MetricNetIncome:
		tone := "positive"
		if kpis.NetIncome < 0 {
			tone = "negative"
		}
		return amountCard(metric, "Net income", kpis.NetIncome, tone)
	case MetricCash:
		return amountCard(metric, "Cash balance", kpis.CashBalance, "neutral")
	default:
		return runwayCard(kpis.Runway)
	}
}

func amountCard(metric, label string, value float64, tone string) map[string]any {
	return map[string]any{
		"metric":  metric,
		"label":   label,
		"value":   value,
		"display": formatAmount(value),
		"tone":    tone,
	}
}

func runwayCard(runway projection.Runway) map[string]any {
	card := map[string]any{
		"metric":  MetricRunway,
		"label":   "Runway",
		"state":   runway.State.String(),
		"display": runway.String(),
		"tone":    "neutral",
	}
	switch runway.State {
	case projection.RunwayFinite:
		card["value"] = runway.Months
		if runway.Months < 6 {
			card["tone"] = "negative"
		}
	case projection.RunwayUnbounded:
		card["tone"] = "positive"
	case projection.RunwayDepleted:
		card["tone"] = "negative"
	}
	return card
}

// RunwayGaugeProvider renders runway as a percentage of a target horizon.
// Profitable companies pin the gauge at 100.
type RunwayGaugeProvider struct {
	repo     FinanceRepository
	renderer *EChartsProvider
}

// NewRunwayGaugeProvider builds the runway gauge provider.
func NewRunwayGaugeProvider(repo FinanceRepository, renderer *EChartsProvider) Provider {
	if renderer == nil {
		renderer = NewEChartsProvider("gauge")
	}
	return &RunwayGaugeProvider{repo: repo, renderer: renderer}
}

// Fetch renders the runway gauge widget.
func (p *RunwayGaugeProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg, err := decodeAs[RunwayGaugeConfig](meta)
	if err != nil {
		return nil, err
	}
	kpis, err := projectFinance(ctx, p.repo, cfg.Scenario, meta.Viewer)
	if err != nil {
		return nil, fmt.Errorf("runway gauge provider: %w", err)
	}
	value := RunwayGaugeValue(kpis.Runway, cfg.TargetMonths)
	opts := cfg.ChartOptions
	if opts.Subtitle == "" {
		opts.Subtitle = kpis.Runway.String()
	}
	data, err := p.renderer.Render(ctx, meta, ChartRequest{
		ChartOptions: opts,
		Series: []ChartSeries{{
			Name:   meta.translate(ctx, "finance.kpi.runway", "Runway"),
			Points: []ChartPoint{{Label: kpis.Runway.String(), Value: value}},
		}},
	})
	if err != nil {
		return nil, err
	}
	data["runway"] = kpis.Runway
	data["runway_label"] = kpis.Runway.String()
	data["target_months"] = cfg.TargetMonths
	data["profitable"] = kpis.Runway.Profitable()
	return data, nil
}

// RunwayGaugeValue maps a runway onto 0..100 against targetMonths.
func RunwayGaugeValue(runway projection.Runway, targetMonths float64) float64 {
	switch runway.State {
	case projection.RunwayUnbounded:
		return 100
	case projection.RunwayDepleted:
		return 0
	}
	if targetMonths <= 0 {
		targetMonths = defaultRunwayTargetMonths
	}
	pct := runway.Months / targetMonths * 100
	return math.Round(math.Min(math.Max(pct, 0), 100)*10) / 10
}

// BreakdownProvider renders expenses by category or revenue by segment as a pie.
type BreakdownProvider struct {
	repo     FinanceRepository
	renderer *EChartsProvider
}

// NewBreakdownProvider builds a breakdown provider.
func NewBreakdownProvider(repo FinanceRepository, renderer *EChartsProvider) Provider {
	if renderer == nil {
		renderer = NewEChartsProvider("pie")
	}
	return &BreakdownProvider{repo: repo, renderer: renderer}
}

// Fetch renders the breakdown widget.
func (p *BreakdownProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("breakdown provider: finance repository is required")
	}
	cfg, err := decodeAs[BreakdownConfig](meta)
	if err != nil {
		return nil, err
	}
	snapshot, err := p.repo.FetchFinance(ctx, FinanceQuery{Scenario: NormalizeScenarioName(cfg.Scenario), Viewer: meta.Viewer})
	if err != nil {
		return nil, fmt.Errorf("breakdown provider: %w", err)
	}

	var rows []projection.Breakdown
	if cfg.Source == BreakdownRevenue {
		rows = projection.RevenueBySegment(snapshot.Revenue)
	} else {
		rows = projection.ExpensesByCategory(snapshot.Expenses)
	}
	if len(rows) == 0 {
		return WidgetData{"title": cfg.Title, "empty": true, "rows": rows}, nil
	}

	points := make([]ChartPoint, len(rows))
	total := 0.0
	for i, row := range rows {
		points[i] = ChartPoint{
			Label: meta.translate(ctx, row.Label, row.Label),
			Value: row.Total,
		}
		total += row.Total
	}
	opts := cfg.ChartOptions
	if opts.Subtitle == "" {
		opts.Subtitle = formatAmount(total) + " / month"
	}
	data, err := p.renderer.Render(ctx, meta, ChartRequest{
		ChartOptions: opts,
		Series:       []ChartSeries{{Name: cfg.Source, Points: points}},
	})
	if err != nil {
		return nil, err
	}
	data["rows"] = rows
	data["total"] = total
	data["source"] = cfg.Source
	return data, nil
}

func projectFinance(ctx context.Context, repo FinanceRepository, scenario string, viewer ViewerContext) (projection.KPISnapshot, error) {
	if repo == nil {
		return projection.KPISnapshot{}, fmt.Errorf("finance repository is required")
	}
	snapshot, err := repo.FetchFinance(ctx, FinanceQuery{Scenario: NormalizeScenarioName(scenario), Viewer: viewer})
	if err != nil {
		return projection.KPISnapshot{}, err
	}
	return snapshot.KPIs()
}
