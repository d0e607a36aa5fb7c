package httpapi

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/dashboard/commands"
	"github.com/goliatone/go-bizdash/components/dashboard/queries"
)

// ViewerResolver converts a request into a dashboard.ViewerContext.
type ViewerResolver func(*fiber.Ctx) dashboard.ViewerContext

// Commands groups the write side handlers dispatch to. Nil commands leave
// their routes unregistered.
type Commands struct {
	Assign       gocommand.Commander[dashboard.AddWidgetRequest]
	Update       gocommand.Commander[commands.UpdateWidgetInput]
	Remove       gocommand.Commander[commands.RemoveWidgetInput]
	Reorder      gocommand.Commander[commands.ReorderWidgetsInput]
	Refresh      gocommand.Commander[commands.RefreshWidgetInput]
	Preferences  gocommand.Commander[commands.SaveLayoutPreferencesInput]
	Scenario     gocommand.Commander[commands.UpdateScenarioInput]
	DropScenario gocommand.Commander[commands.DeleteScenarioInput]
}

// Queries groups the read models. Nil queries leave their routes unregistered.
type Queries struct {
	Widget    gocommand.Querier[queries.WidgetInput, dashboard.WidgetInstance]
	Area      gocommand.Querier[queries.AreaInput, dashboard.ResolvedArea]
	Sweep     gocommand.Querier[queries.SweepInput, queries.SweepResult]
	KPIs      gocommand.Querier[queries.KPIInput, queries.KPIResult]
	Scenarios gocommand.Querier[queries.ScenarioListInput, []dashboard.Scenario]
}

// Config wires fiber with the dashboard controller, commands, queries and
// the refresh broadcast.
type Config struct {
	Router         fiber.Router
	Controller     *dashboard.Controller
	Commands       Commands
	Queries        Queries
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	Routes         RouteConfig
}

// RouteConfig customizes the paths used for dashboard endpoints.
type RouteConfig struct {
	HTML        string
	Layout      string
	Widgets     string
	WidgetID    string
	Area        string
	Reorder     string
	Refresh     string
	Preferences string
	Events      string
	WebSocket   string
	Sweep       string
	SweepCSV    string
	KPIs        string
	Scenarios   string
}

// Register mounts dashboard and projection routes on cfg.Router.
func Register(cfg Config) error {
	if cfg.Router == nil {
		return errors.New("httpapi: router is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	resolver := cfg.ViewerResolver
	if resolver == nil {
		resolver = DefaultViewerResolver
	}
	h := &handlers{cfg: cfg, viewer: resolver}

	if cfg.Controller != nil {
		cfg.Router.Get(routes.HTML, h.page)
		cfg.Router.Get(routes.Layout, h.layout)
	}

	c := cfg.Commands
	if c.Assign != nil {
		cfg.Router.Post(routes.Widgets, h.assign)
	}
	if c.Reorder != nil {
		cfg.Router.Post(routes.Reorder, h.reorder)
	}
	if c.Refresh != nil {
		cfg.Router.Post(routes.Refresh, h.refresh)
	}
	if c.Update != nil {
		cfg.Router.Put(routes.WidgetID, h.update)
	}
	if c.Remove != nil {
		cfg.Router.Delete(routes.WidgetID, h.remove)
	}
	if c.Preferences != nil {
		cfg.Router.Post(routes.Preferences, h.preferences)
	}
	if c.Scenario != nil {
		cfg.Router.Put(routes.Scenarios+"/:name", h.saveScenario)
	}
	if c.DropScenario != nil {
		cfg.Router.Delete(routes.Scenarios+"/:name", h.deleteScenario)
	}

	q := cfg.Queries
	if q.Widget != nil {
		cfg.Router.Get(routes.WidgetID, h.widget)
	}
	if q.Area != nil {
		cfg.Router.Get(routes.Area, h.area)
	}
	if q.Sweep != nil {
		cfg.Router.Get(routes.SweepCSV, h.sweepCSV)
		cfg.Router.Get(routes.Sweep, h.sweepQuery)
		cfg.Router.Post(routes.Sweep, h.sweepBody)
	}
	if q.KPIs != nil {
		cfg.Router.Get(routes.KPIs, h.kpis)
	}
	if q.Scenarios != nil {
		cfg.Router.Get(routes.Scenarios, h.scenarios)
	}

	if cfg.Broadcast != nil {
		cfg.Router.Get(routes.Events, h.events)
		registerWebSocket(cfg.Router, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

type handlers struct {
	cfg    Config
	viewer ViewerResolver
}

func (h *handlers) page(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.cfg.Controller.RenderTemplate(c.UserContext(), h.viewer(c), &buf); err != nil {
		return respondError(c, err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *handlers) layout(c *fiber.Ctx) error {
	payload, err := h.cfg.Controller.LayoutPayload(c.UserContext(), h.viewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payload)
}

// DefaultViewerResolver reads the viewer from fiber locals set by upstream
// auth middleware, falling back to request hints for the locale.
func DefaultViewerResolver(c *fiber.Ctx) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := c.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := c.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(c)
	return viewer
}

func inferLocale(c *fiber.Ctx) string {
	if locale, ok := c.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(c.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/dashboard/widgets"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/dashboard/widgets/:id"
	}
	if routes.Area == "" {
		routes.Area = "/dashboard/areas/:area"
	}
	if routes.Reorder == "" {
		routes.Reorder = "/dashboard/widgets/reorder"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/widgets/refresh"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/dashboard/preferences"
	}
	if routes.Events == "" {
		routes.Events = "/dashboard/events"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	if routes.Sweep == "" {
		routes.Sweep = "/api/projection/sweep"
	}
	if routes.SweepCSV == "" {
		routes.SweepCSV = "/api/projection/sweep.csv"
	}
	if routes.KPIs == "" {
		routes.KPIs = "/api/projection/kpis"
	}
	if routes.Scenarios == "" {
		routes.Scenarios = "/api/projection/scenarios"
	}
	return routes
}
