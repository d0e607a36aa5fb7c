package dashboard

// ProviderDeps feeds the built-in finance providers. Zero values fall back to
// demo data, an in-memory scenario store and a five minute chart cache.
type ProviderDeps struct {
	Finance    FinanceRepository
	Sweeps     *SweepSource
	Charts     RenderCache
	AssetsHost string
	Theme      string
}

func (d ProviderDeps) normalize() ProviderDeps {
	if d.Finance == nil {
		d.Finance = NewStaticFinanceRepository(DemoFinanceSnapshot())
	}
	if d.Sweeps == nil {
		d.Sweeps = NewSweepSource(nil, nil)
	}
	if d.Charts == nil {
		d.Charts = NewChartCache(defaultChartCacheTTL)
	}
	return d
}

func (d ProviderDeps) chart(chartType string) *EChartsProvider {
	opts := []EChartsProviderOption{WithChartCache(d.Charts)}
	if d.AssetsHost != "" {
		opts = append(opts, WithChartAssetsHost(d.AssetsHost))
	}
	if d.Theme != "" {
		opts = append(opts, WithChartTheme(d.Theme))
	}
	return NewEChartsProvider(chartType, opts...)
}

func defaultProviders(deps ProviderDeps) map[string]Provider {
	providers := map[string]Provider{
		WidgetARRSweep:          NewSweepChartProvider(deps.Sweeps, deps.chart("line")),
		WidgetValuationBands:    NewValuationBandProvider(deps.Sweeps, deps.chart("line")),
		WidgetValuationSnapshot: NewSnapshotProvider(deps.Sweeps),
		WidgetKPISummary:        NewKPISummaryProvider(deps.Finance),
		WidgetRunwayGauge:       NewRunwayGaugeProvider(deps.Finance, deps.chart("gauge")),
		WidgetExpenseBreakdown:  NewBreakdownProvider(deps.Finance, deps.chart("pie")),
		WidgetRevenueBreakdown:  NewBreakdownProvider(deps.Finance, deps.chart("pie")),
	}
	for code, chartType := range genericChartTypes {
		providers[code] = deps.chart(chartType)
	}
	return providers
}
