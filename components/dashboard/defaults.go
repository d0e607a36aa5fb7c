package dashboard

import (
	"time"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/goliatone/go-bizdash/components/projection"
)

// Dashboard area codes.
const (
	AreaMain    = "finance.dashboard.main"
	AreaSidebar = "finance.dashboard.sidebar"
	AreaFooter  = "finance.dashboard.footer"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AreaMain, Name: "Finance Dashboard (Main)", Description: "Projection charts"},
	{Code: AreaSidebar, Name: "Finance Dashboard (Sidebar)", Description: "KPI cards and runway"},
	{Code: AreaFooter, Name: "Finance Dashboard (Footer)", Description: "Breakdowns"},
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code: WidgetARRSweep,
		Name: "ARR Sweep",
		NameLocalized: map[string]string{
			"es": "Barrido de ARR",
		},
		Description: "Annual recurring revenue for both pricing tiers across user counts",
		DescriptionLocalized: map[string]string{
			"es": "Ingresos recurrentes anuales por número de usuarios",
		},
		Category: "projection",
		Schema:   sweepChartSchema(nil),
	},
	{
		Code:        WidgetValuationBands,
		Name:        "Valuation Bands",
		Description: "Low and high multiple valuation ranges across user counts",
		Category:    "projection",
		Schema: sweepChartSchema(map[string]any{
			"tier": map[string]any{
				"type":    "string",
				"enum":    []string{string(TierCurrent), string(TierSuper)},
				"default": string(TierCurrent),
			},
		}),
	},
	{
		Code:        WidgetValuationSnapshot,
		Name:        "Valuation Snapshot",
		Description: "Valuation figures at a chosen user count",
		Category:    "projection",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":       map[string]any{"type": "string"},
				"scenario":    map[string]any{"type": "string"},
				"sweep":       sweepOverridesSchema(),
				"focus_users": map[string]any{"type": "integer", "minimum": 0},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetKPISummary,
		Name: "Key Metrics",
		NameLocalized: map[string]string{
			"es": "Métricas clave",
		},
		Description: "Revenue, burn, net income, cash and runway",
		Category:    "kpi",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":    map[string]any{"type": "string"},
				"scenario": map[string]any{"type": "string"},
				"currency": map[string]any{"type": "string"},
				"metrics": map[string]any{
					"type":        "array",
					"uniqueItems": true,
					"items": map[string]any{
						"type": "string",
						"enum": defaultKPIMetrics,
					},
				},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetRunwayGauge,
		Name:        "Runway",
		Description: "Months of runway against a target horizon",
		Category:    "kpi",
		Schema: chartOptionsSchema(map[string]any{
			"scenario":      map[string]any{"type": "string"},
			"target_months": map[string]any{"type": "number", "exclusiveMinimum": 0, "default": defaultRunwayTargetMonths},
		}),
	},
	{
		Code:        WidgetExpenseBreakdown,
		Name:        "Expense Breakdown",
		Description: "Monthly expenses grouped by category",
		Category:    "breakdown",
		Schema:      breakdownSchema(),
	},
	{
		Code:        WidgetRevenueBreakdown,
		Name:        "Revenue Breakdown",
		Description: "Monthly recurring revenue grouped by segment",
		Category:    "breakdown",
		Schema:      breakdownSchema(),
	},
	{
		Code:        WidgetBarChart,
		Name:        "Bar Chart",
		Description: "Interactive bar chart visualization.",
		Category:    "charts",
		Schema:      chartConfigSchema(true),
	},
	{
		Code:        WidgetLineChart,
		Name:        "Line Chart",
		Description: "Interactive line chart visualization.",
		Category:    "charts",
		Schema:      chartConfigSchema(true),
	},
	{
		Code:        WidgetPieChart,
		Name:        "Pie Chart",
		Description: "Interactive pie chart visualization.",
		Category:    "charts",
		Schema:      chartConfigSchema(false),
	},
	{
		Code:        WidgetScatterChart,
		Name:        "Scatter Chart",
		Description: "Value-vs-value scatter visualization.",
		Category:    "charts",
		Schema:      chartConfigSchema(true),
	},
	{
		Code:        WidgetGaugeChart,
		Name:        "Gauge Chart",
		Description: "Single-value gauge visualization.",
		Category:    "charts",
		Schema:      chartConfigSchema(false),
	},
}

func chartThemes() []string {
	return []string{
		string(types.ThemeWesteros),
		string(types.ThemeWalden),
		string(types.ThemeWonderland),
		string(types.ThemeChalk),
	}
}

// chartOptionsSchema merges extra properties into the shared chart options.
func chartOptionsSchema(extra map[string]any) map[string]any {
	props := map[string]any{
		"title":            map[string]any{"type": "string"},
		"subtitle":         map[string]any{"type": "string"},
		"footer_note":      map[string]any{"type": "string"},
		"theme":            map[string]any{"type": "string", "enum": chartThemes()},
		"dynamic":          map[string]any{"type": "boolean", "default": false},
		"refresh_endpoint": map[string]any{"type": "string"},
	}
	for key, value := range extra {
		props[key] = value
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

func bandOverrideSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"min": map[string]any{"type": "number", "minimum": 0},
			"max": map[string]any{"type": "number", "minimum": 0},
		},
		"additionalProperties": false,
	}
}

func sweepOverridesSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"users_min":    map[string]any{"type": "integer", "minimum": 0},
			"users_max":    map[string]any{"type": "integer", "minimum": 0},
			"step":         map[string]any{"type": "integer", "minimum": 1},
			"arpu_current": map[string]any{"type": "number", "minimum": 0},
			"arpu_super":   map[string]any{"type": "number", "minimum": 0},
			"low_band":     bandOverrideSchema(),
			"high_band":    bandOverrideSchema(),
		},
		"additionalProperties": false,
	}
}

func sweepChartSchema(extra map[string]any) map[string]any {
	props := map[string]any{
		"scenario": map[string]any{"type": "string"},
		"sweep":    sweepOverridesSchema(),
	}
	for key, value := range extra {
		props[key] = value
	}
	return chartOptionsSchema(props)
}

func breakdownSchema() map[string]any {
	return chartOptionsSchema(map[string]any{
		"scenario": map[string]any{"type": "string"},
		"source": map[string]any{
			"type": "string",
			"enum": []string{BreakdownExpenses, BreakdownRevenue},
		},
	})
}

func chartSeriesSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"name", "data"},
		"properties": map[string]any{
			"name": map[string]any{
				"type":    "string",
				"default": "Series",
			},
			"data": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"oneOf": []map[string]any{
						{"type": "number"},
						{
							"type":     "object",
							"required": []string{"value"},
							"properties": map[string]any{
								"name":  map[string]any{"type": "string"},
								"value": map[string]any{"type": "number"},
							},
						},
						{
							"type":     "object",
							"required": []string{"x", "y"},
							"properties": map[string]any{
								"name": map[string]any{"type": "string"},
								"x":    map[string]any{"type": "number"},
								"y":    map[string]any{"type": "number"},
							},
						},
						{
							"type":     "array",
							"minItems": 2,
							"items":    map[string]any{"type": "number"},
						},
					},
				},
			},
		},
	}
}

func chartConfigSchema(includeAxis bool) map[string]any {
	props := map[string]any{
		"series": map[string]any{
			"type":     "array",
			"items":    chartSeriesSchema(),
			"minItems": 1,
		},
	}
	if includeAxis {
		props["x_axis"] = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
	}
	schema := chartOptionsSchema(props)
	schema["required"] = []string{"series"}
	return schema
}

var defaultSeedConfigs = []AddWidgetRequest{
	{
		DefinitionID:  WidgetARRSweep,
		AreaCode:      AreaMain,
		Configuration: map[string]any{"title": "ARR by users"},
	},
	{
		DefinitionID:  WidgetValuationBands,
		AreaCode:      AreaMain,
		Configuration: map[string]any{"tier": string(TierCurrent)},
	},
	{
		DefinitionID:  WidgetKPISummary,
		AreaCode:      AreaSidebar,
		Configuration: map[string]any{},
	},
	{
		DefinitionID:  WidgetRunwayGauge,
		AreaCode:      AreaSidebar,
		Configuration: map[string]any{"target_months": defaultRunwayTargetMonths},
	},
	{
		DefinitionID:  WidgetValuationSnapshot,
		AreaCode:      AreaSidebar,
		Configuration: map[string]any{"focus_users": 50000},
	},
	{
		DefinitionID:  WidgetExpenseBreakdown,
		AreaCode:      AreaFooter,
		Configuration: map[string]any{},
	},
	{
		DefinitionID:  WidgetRevenueBreakdown,
		AreaCode:      AreaFooter,
		Configuration: map[string]any{},
	},
}

// DefaultAreaDefinitions returns copies of built-in area definitions.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultAreaCodes lists the built-in area codes in render order.
func DefaultAreaCodes() []string {
	out := make([]string, len(defaultAreaDefinitions))
	for i, area := range defaultAreaDefinitions {
		out[i] = area.Code
	}
	return out
}

// DefaultWidgetDefinitions returns copies of built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultSeedWidgets returns starter widget configurations.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedConfigs))
	for i, cfg := range defaultSeedConfigs {
		copyCfg := cfg
		copyCfg.Configuration = cloneMap(cfg.Configuration)
		if cfg.StartAt != nil {
			start := *cfg.StartAt
			copyCfg.StartAt = &start
		}
		if cfg.EndAt != nil {
			end := *cfg.EndAt
			copyCfg.EndAt = &end
		}
		out[i] = copyCfg
	}
	return out
}

// DefaultScenario is the baseline scenario seeded into empty stores.
func DefaultScenario() Scenario {
	return Scenario{
		Name:       DefaultScenarioName,
		Parameters: projection.DefaultSweepParameters(),
		UpdatedAt:  time.Now().UTC(),
	}
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
