package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// SeedDashboardInput controls bootstrap behavior.
type SeedDashboardInput struct {
	SeedLayout   bool
	SeedScenario bool
}

// SeedDashboardCommand registers areas/definitions and optionally seeds the
// layout and the baseline scenario.
type SeedDashboardCommand struct {
	store     dashboard.WidgetStore
	registry  dashboard.ProviderRegistry
	service   *dashboard.Service
	scenarios dashboard.ScenarioStore
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(store dashboard.WidgetStore, registry dashboard.ProviderRegistry, service *dashboard.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		store:     store,
		registry:  registry,
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

// WithScenarioStore sets the store SeedScenario writes the baseline to.
func (c *SeedDashboardCommand) WithScenarioStore(store dashboard.ScenarioStore) *SeedDashboardCommand {
	c.scenarios = store
	return c
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute runs the bootstrap pipeline.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.store == nil {
		return errors.New("seed command requires widget store")
	}
	if err := dashboard.RegisterAreas(ctx, c.store); err != nil {
		return err
	}
	if err := dashboard.RegisterDefinitions(ctx, c.store, c.registry); err != nil {
		return err
	}
	if msg.SeedLayout && c.service != nil {
		if err := dashboard.SeedLayout(ctx, c.service); err != nil {
			return err
		}
	}
	scenarioCreated := false
	if msg.SeedScenario {
		if c.scenarios == nil {
			return errors.New("seed command requires scenario store to seed scenarios")
		}
		created, err := dashboard.SeedScenario(ctx, c.scenarios)
		if err != nil {
			return err
		}
		scenarioCreated = created
	}
	c.telemetry.Record(ctx, "dashboard.seed", map[string]any{
		"seed_layout":      msg.SeedLayout,
		"scenario_created": scenarioCreated,
	})
	return nil
}
