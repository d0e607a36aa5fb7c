package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	core "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/dashboard/commands"
	"github.com/goliatone/go-bizdash/components/dashboard/httpapi"
	"github.com/goliatone/go-bizdash/components/dashboard/queries"
	"github.com/goliatone/go-bizdash/components/projection"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options wires the collaborators an App is assembled from. Nil fields fall
// back to in-memory stores and demo finance data. A zero ChartCacheTTL
// renders charts on every request.
type Options struct {
	Logger          *slog.Logger
	WidgetStore     core.WidgetStore
	PreferenceStore core.PreferenceStore
	Scenarios       core.ScenarioStore
	Finance         core.FinanceRepository
	Renderer        core.Renderer
	Translator      core.TranslationService
	Authorizer      core.Authorizer
	ChartCacheTTL   time.Duration
	AssetsHost      string
	Manifests       []string
	Title           string
	SeedLayout      bool
}

// App is a fully wired financial dashboard: widget service, projection
// sources, commands, queries and the refresh broadcast.
type App struct {
	Service    *core.Service
	Registry   *core.Registry
	Controller *core.Controller
	Broadcast  *core.BroadcastHook
	Sweeps     *core.SweepSource
	Charts     *core.ChartCache
	Commands   httpapi.Commands
	Queries    httpapi.Queries

	store     core.WidgetStore
	scenarios core.ScenarioStore
	telemetry core.Telemetry
	logger    *slog.Logger
}

// New assembles an App and registers areas, definitions and the baseline
// scenario. The starter layout is seeded when opts.SeedLayout is set and
// the main area is empty.
func New(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.WidgetStore == nil {
		opts.WidgetStore = core.NewInMemoryWidgetStore()
	}
	if opts.Scenarios == nil {
		opts.Scenarios = core.NewInMemoryScenarioStore()
	}
	if opts.Renderer == nil {
		renderer, err := core.NewTemplateRenderer()
		if err != nil {
			return nil, fmt.Errorf("bizdash: template renderer: %w", err)
		}
		opts.Renderer = renderer
	}

	telemetry := core.NewSlogTelemetry(logger)
	sweeps := core.NewSweepSource(opts.Scenarios, projection.NewSweepMemo(projection.WithMemoSlots(projection.DefaultMemoSlots)))
	charts := core.NewChartCache(opts.ChartCacheTTL)
	registry := core.NewRegistryWithDeps(core.ProviderDeps{
		Finance:    opts.Finance,
		Sweeps:     sweeps,
		Charts:     charts,
		AssetsHost: opts.AssetsHost,
	})
	for _, path := range opts.Manifests {
		doc, err := registry.LoadManifestFile(path)
		if err != nil {
			return nil, err
		}
		logger.Info("widget manifest loaded", "path", path, "widgets", len(doc.Widgets))
	}

	broadcast := core.NewBroadcastHook()
	service := core.NewService(core.Options{
		WidgetStore:     opts.WidgetStore,
		Authorizer:      opts.Authorizer,
		PreferenceStore: opts.PreferenceStore,
		Providers:       registry,
		RefreshHook:     broadcast,
		Telemetry:       telemetry,
		Translator:      opts.Translator,
	})
	controller := core.NewController(core.ControllerOptions{
		Service:  service,
		Renderer: opts.Renderer,
		Title:    opts.Title,
	})

	app := &App{
		Service:    service,
		Registry:   registry,
		Controller: controller,
		Broadcast:  broadcast,
		Sweeps:     sweeps,
		Charts:     charts,
		store:      opts.WidgetStore,
		scenarios:  opts.Scenarios,
		telemetry:  telemetry,
		logger:     logger,
	}
	app.Commands = httpapi.Commands{
		Assign:       commands.NewAssignWidgetCommand(service, telemetry),
		Update:       commands.NewUpdateWidgetCommand(service, telemetry),
		Remove:       commands.NewRemoveWidgetCommand(service, telemetry),
		Reorder:      commands.NewReorderWidgetsCommand(service, telemetry),
		Refresh:      commands.NewRefreshWidgetCommand(service, telemetry),
		Preferences:  commands.NewSaveLayoutPreferencesCommand(service, telemetry),
		Scenario:     commands.NewUpdateScenarioCommand(opts.Scenarios, service, telemetry),
		DropScenario: commands.NewDeleteScenarioCommand(opts.Scenarios, service, telemetry),
	}
	app.Queries = httpapi.Queries{
		Widget:    queries.NewWidgetQuery(service),
		Area:      queries.NewAreaQuery(service),
		Sweep:     queries.NewSweepQuery(sweeps),
		KPIs:      queries.NewKPIQuery(registry.Deps().Finance),
		Scenarios: queries.NewScenarioListQuery(opts.Scenarios),
	}

	if err := app.seed(ctx, opts.SeedLayout); err != nil {
		broadcast.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) seed(ctx context.Context, layout bool) error {
	if layout {
		area, err := a.Service.ResolveArea(ctx, core.ViewerContext{}, core.AreaMain)
		if err == nil && len(area.Widgets) > 0 {
			layout = false
		}
	}
	seed := commands.NewSeedDashboardCommand(a.store, a.Registry, a.Service, a.telemetry).
		WithScenarioStore(a.scenarios)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{SeedLayout: layout, SeedScenario: true}); err != nil {
		return fmt.Errorf("bizdash: seed dashboard: %w", err)
	}
	return nil
}

// Register mounts the dashboard and projection routes on router.
func (a *App) Register(router fiber.Router, resolver httpapi.ViewerResolver) error {
	if a == nil {
		return errors.New("bizdash: app is nil")
	}
	return httpapi.Register(httpapi.Config{
		Router:         router,
		Controller:     a.Controller,
		Commands:       a.Commands,
		Queries:        a.Queries,
		Broadcast:      a.Broadcast,
		ViewerResolver: resolver,
	})
}

// Close disconnects live subscribers.
func (a *App) Close() {
	if a == nil || a.Broadcast == nil {
		return
	}
	a.Broadcast.Close()
}
