package dashboard

import (
	"context"
	"errors"
	"io"
	"sort"
)

const defaultDashboardTemplate = "dashboard.html"

type layoutResolver interface {
	ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  layoutResolver
	Renderer Renderer
	Template string
	Areas    []string
	Title    string
}

// Controller turns resolved layouts into template payloads and HTML.
type Controller struct {
	service  layoutResolver
	renderer Renderer
	template string
	areas    []string
	title    string
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultDashboardTemplate
	}
	if len(opts.Areas) == 0 {
		opts.Areas = DefaultAreaCodes()
	}
	if opts.Title == "" {
		opts.Title = "Financial Projections"
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
		areas:    opts.Areas,
		title:    opts.Title,
	}
}

// Render resolves the layout for a viewer and returns it to the caller.
func (c *Controller) Render(ctx context.Context, viewer ViewerContext) (Layout, error) {
	if c.service == nil {
		return Layout{Areas: map[string][]WidgetInstance{}}, nil
	}
	return c.service.ConfigureLayout(ctx, viewer)
}

// LayoutPayload resolves the layout and shapes it for templates and JSON.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	layout, err := c.Render(ctx, viewer)
	if err != nil {
		return nil, err
	}
	areas := make([]map[string]any, 0, len(layout.Areas))
	for _, code := range c.areaOrder(layout) {
		widgets := layout.Areas[code]
		items := make([]map[string]any, 0, len(widgets))
		for _, w := range widgets {
			item := map[string]any{
				"id":            w.ID,
				"definition":    w.DefinitionID,
				"area":          code,
				"configuration": w.Configuration,
				"name":          w.DefinitionID,
			}
			if w.Metadata != nil {
				if name, ok := w.Metadata["name"].(string); ok && name != "" {
					item["name"] = name
				}
				if data, ok := w.Metadata["data"]; ok {
					item["data"] = data
				}
				if msg, ok := w.Metadata["error"]; ok {
					item["error"] = msg
				}
			}
			if kind, ok := WidgetKindFor(w.DefinitionID); ok {
				item["kind"] = string(kind)
			}
			items = append(items, item)
		}
		areas = append(areas, map[string]any{
			"code":    code,
			"widgets": items,
		})
	}
	return map[string]any{
		"title":  c.title,
		"viewer": viewer,
		"locale": viewer.Locale,
		"areas":  areas,
	}, nil
}

// RenderTemplate writes the dashboard page for viewer to out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("dashboard: renderer not configured")
	}
	payload, err := c.LayoutPayload(ctx, viewer)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, payload, out)
	return err
}

// areaOrder lists configured areas first, then any extra areas by code.
func (c *Controller) areaOrder(layout Layout) []string {
	order := make([]string, 0, len(layout.Areas))
	seen := make(map[string]struct{}, len(layout.Areas))
	for _, code := range c.areas {
		if _, ok := layout.Areas[code]; ok {
			order = append(order, code)
			seen[code] = struct{}{}
		}
	}
	var extra []string
	for code := range layout.Areas {
		if _, ok := seen[code]; !ok {
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}
