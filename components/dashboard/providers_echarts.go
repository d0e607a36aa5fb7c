package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

var errNoSeries = errors.New("dashboard: chart series is required")

// ThemeResolver selects a chart theme per viewer. An empty result falls back
// to the provider theme.
type ThemeResolver func(ViewerContext) string

// EChartsProvider renders chart widgets to go-echarts HTML on the server.
type EChartsProvider struct {
	chartType     string
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
}

// EChartsProviderOption customizes an EChartsProvider.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache memoizes rendered markup. Without one every Fetch renders.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) { p.cache = cache }
}

// WithChartTheme sets the default theme (westeros when unset).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) { p.theme = theme }
}

// WithChartThemeResolver picks the theme per viewer.
func WithChartThemeResolver(resolver ThemeResolver) EChartsProviderOption {
	return func(p *EChartsProvider) { p.themeResolver = resolver }
}

// WithChartAssetsHost loads the ECharts scripts from host instead of the
// go-echarts default CDN.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) { p.assetsHost = host }
}

// NewEChartsProvider builds a provider drawing chartType: bar, line, pie,
// scatter or gauge.
func NewEChartsProvider(chartType string, options ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{chartType: strings.ToLower(chartType), theme: types.ThemeWesteros}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// ChartType reports the chart kind this provider draws.
func (p *EChartsProvider) ChartType() string {
	return p.chartType
}

// ChartRequest is a fully resolved chart ready to render.
type ChartRequest struct {
	ChartOptions
	XAxis  []string      `json:"x_axis,omitempty"`
	Series []ChartSeries `json:"series"`
}

// Fetch decodes a generic chart configuration and renders it. Axis labels
// and series names go through the viewer's translator.
func (p *EChartsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg, err := decodeChartConfig(meta.Instance.DefinitionID, p.chartType, meta.Instance.Configuration)
	if err != nil {
		return nil, err
	}
	axis := cfg.XAxis
	if len(axis) == 0 {
		axis = axisFromSeries(cfg.Series)
	}
	req := ChartRequest{ChartOptions: cfg.ChartOptions, XAxis: make([]string, len(axis)), Series: cfg.Series}
	for i, label := range axis {
		req.XAxis[i] = meta.translate(ctx, label, label)
	}
	for i := range req.Series {
		req.Series[i].Name = meta.translate(ctx, req.Series[i].Name, req.Series[i].Name)
	}
	return p.Render(ctx, meta, req)
}

// Render draws req and wraps the markup in a widget payload. With a cache the
// markup is keyed by widget, chart type, theme and request content.
func (p *EChartsProvider) Render(ctx context.Context, meta WidgetContext, req ChartRequest) (WidgetData, error) {
	if len(req.Series) == 0 {
		return nil, errNoSeries
	}
	build, ok := chartBuilders[p.chartType]
	if !ok {
		return nil, fmt.Errorf("dashboard: unsupported chart type: %s", p.chartType)
	}
	title := req.Title
	if title != "" {
		title = meta.translate(ctx, meta.Instance.DefinitionID+".title", title)
	}
	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		theme = p.themeFor(meta.Viewer)
	}

	draw := func() (string, error) {
		spec := chartSpec{
			global: p.globalOptions(html.EscapeString(title), html.EscapeString(req.Subtitle), theme),
			axis:   escapeAll(req.XAxis),
			series: escapeSeries(req.Series),
		}
		var buf bytes.Buffer
		if err := build(spec).Render(&buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	var (
		markup string
		err    error
	)
	if p.cache == nil {
		markup, err = draw()
	} else {
		key := ChartKey{
			Definition: meta.Instance.DefinitionID,
			Instance:   meta.Instance.ID,
			ChartType:  p.chartType,
			Theme:      theme,
			Content:    req,
		}
		markup, err = p.cache.GetOrRender(key.String(), draw)
	}
	if err != nil {
		return nil, err
	}

	data := WidgetData{
		"chart_html": markup,
		"chart_type": p.chartType,
		"title":      title,
		"subtitle":   req.Subtitle,
		"theme":      theme,
	}
	if req.FooterNote != "" {
		data["footer_note"] = req.FooterNote
	}
	if req.Dynamic {
		data["dynamic"] = true
		if req.RefreshEndpoint != "" {
			data["refresh_endpoint"] = req.RefreshEndpoint
		}
	}
	return data, nil
}

func (p *EChartsProvider) themeFor(viewer ViewerContext) string {
	if p.themeResolver != nil {
		if theme := p.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if p.theme != "" {
		return p.theme
	}
	return types.ThemeWesteros
}

func (p *EChartsProvider) globalOptions(title, subtitle, theme string) []charts.GlobalOpts {
	initOpts := opts.Initialization{Theme: theme, Width: "100%", Height: defaultChartHeight}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

// chartSpec carries already escaped chart text. The markup is emitted
// unescaped by templates.
type chartSpec struct {
	global []charts.GlobalOpts
	axis   []string
	series []ChartSeries
}

type renderable interface {
	Render(w io.Writer) error
}

var chartBuilders = map[string]func(chartSpec) renderable{
	"bar": func(spec chartSpec) renderable {
		bar := charts.NewBar()
		bar.SetGlobalOptions(spec.global...)
		bar.SetXAxis(spec.axis)
		for _, s := range spec.series {
			bar.AddSeries(s.Name, mapPoints(s.Points, func(_ int, pt ChartPoint) opts.BarData {
				return opts.BarData{Name: pt.Label, Value: pt.Value}
			}))
		}
		return bar
	},
	"line": func(spec chartSpec) renderable {
		line := charts.NewLine()
		line.SetGlobalOptions(spec.global...)
		line.SetXAxis(spec.axis)
		for _, s := range spec.series {
			line.AddSeries(s.Name, mapPoints(s.Points, func(_ int, pt ChartPoint) opts.LineData {
				return opts.LineData{Name: pt.Label, Value: pt.Value}
			}), lineSeriesOptions(s)...)
		}
		return line
	},
	"pie": func(spec chartSpec) renderable {
		pie := charts.NewPie()
		pie.SetGlobalOptions(spec.global...)
		for _, s := range spec.series {
			pie.AddSeries(s.Name, mapPoints(s.Points, func(i int, pt ChartPoint) opts.PieData {
				if pt.Label == "" {
					pt.Label = fmt.Sprintf("Slice %d", i+1)
				}
				return opts.PieData{Name: pt.Label, Value: pt.Value}
			}))
		}
		return pie
	},
	"scatter": func(spec chartSpec) renderable {
		scatter := charts.NewScatter()
		scatter.SetGlobalOptions(spec.global...)
		for _, s := range spec.series {
			scatter.AddSeries(s.Name, mapPoints(s.Points, func(i int, pt ChartPoint) opts.ScatterData {
				xy := pt.Pair
				if len(xy) < 2 {
					xy = []float64{float64(i + 1), pt.Value}
				}
				return opts.ScatterData{Name: pt.Label, Value: xy[:2]}
			}))
		}
		return scatter
	},
	"gauge": func(spec chartSpec) renderable {
		gauge := charts.NewGauge()
		gauge.SetGlobalOptions(spec.global...)
		for _, s := range spec.series {
			if len(s.Points) > 0 {
				gauge.AddSeries(s.Name, []opts.GaugeData{{Name: s.Name, Value: s.Points[0].Value}})
			}
		}
		return gauge
	},
}

func lineSeriesOptions(s ChartSeries) []charts.SeriesOpts {
	out := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(s.Stack == ""), Stack: s.Stack}),
	}
	if s.Area {
		out = append(out, charts.WithAreaStyleOpts(opts.AreaStyle{}))
	}
	return out
}

func mapPoints[T any](points []ChartPoint, convert func(int, ChartPoint) T) []T {
	out := make([]T, len(points))
	for i, pt := range points {
		out[i] = convert(i, pt)
	}
	return out
}

func escapeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = html.EscapeString(v)
	}
	return out
}

func escapeSeries(series []ChartSeries) []ChartSeries {
	out := make([]ChartSeries, len(series))
	for i, s := range series {
		s.Name = html.EscapeString(s.Name)
		s.Points = mapPoints(s.Points, func(_ int, pt ChartPoint) ChartPoint {
			pt.Label = html.EscapeString(pt.Label)
			return pt
		})
		out[i] = s
	}
	return out
}
