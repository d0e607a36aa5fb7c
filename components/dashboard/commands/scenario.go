package commands

import (
	"context"
	"errors"
	"fmt"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/projection"
	gocommand "github.com/goliatone/go-command"
)

// UpdateScenarioInput stores sweep parameters under a scenario name.
type UpdateScenarioInput struct {
	Name       string                     `json:"name"`
	Parameters projection.SweepParameters `json:"parameters"`
}

// DeleteScenarioInput names the scenario to drop.
type DeleteScenarioInput struct {
	Name string `json:"name"`
}

type kindRefresher interface {
	RefreshKinds(ctx context.Context, reason string, kinds ...dashboard.WidgetKind) (int, error)
}

// sweepKinds are the widget kinds that read scenario parameters.
var sweepKinds = []dashboard.WidgetKind{
	dashboard.KindSweepChart,
	dashboard.KindValuationBands,
	dashboard.KindSnapshot,
}

// UpdateScenarioCommand validates and saves scenario parameters, then asks the
// sweep widgets to refresh.
type UpdateScenarioCommand struct {
	store     dashboard.ScenarioStore
	refresher kindRefresher
	telemetry Telemetry
}

// NewUpdateScenarioCommand wires the command. A nil refresher skips
// refresh notifications.
func NewUpdateScenarioCommand(store dashboard.ScenarioStore, refresher kindRefresher, telemetry Telemetry) *UpdateScenarioCommand {
	return &UpdateScenarioCommand{store: store, refresher: refresher, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateScenarioInput] = (*UpdateScenarioCommand)(nil)

// Execute stores the scenario.
func (c *UpdateScenarioCommand) Execute(ctx context.Context, msg UpdateScenarioInput) error {
	if c.store == nil {
		return errors.New("scenario command requires scenario store")
	}
	if err := msg.Parameters.Validate(); err != nil {
		return err
	}
	name := dashboard.NormalizeScenarioName(msg.Name)
	if err := c.store.SaveScenario(ctx, dashboard.Scenario{Name: name, Parameters: msg.Parameters}); err != nil {
		return fmt.Errorf("save scenario %s: %w", name, err)
	}
	refreshed := 0
	if c.refresher != nil {
		n, err := c.refresher.RefreshKinds(ctx, "scenario.updated", sweepKinds...)
		if err != nil {
			return fmt.Errorf("refresh sweep widgets: %w", err)
		}
		refreshed = n
	}
	c.telemetry.Record(ctx, "dashboard.scenario.update", map[string]any{
		"scenario":  name,
		"refreshed": refreshed,
	})
	return nil
}

// DeleteScenarioCommand removes a stored scenario and refreshes sweep widgets.
type DeleteScenarioCommand struct {
	store     dashboard.ScenarioStore
	refresher kindRefresher
	telemetry Telemetry
}

// NewDeleteScenarioCommand wires the command.
func NewDeleteScenarioCommand(store dashboard.ScenarioStore, refresher kindRefresher, telemetry Telemetry) *DeleteScenarioCommand {
	return &DeleteScenarioCommand{store: store, refresher: refresher, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteScenarioInput] = (*DeleteScenarioCommand)(nil)

// Execute deletes the scenario.
func (c *DeleteScenarioCommand) Execute(ctx context.Context, msg DeleteScenarioInput) error {
	if c.store == nil {
		return errors.New("scenario command requires scenario store")
	}
	name := dashboard.NormalizeScenarioName(msg.Name)
	if err := c.store.DeleteScenario(ctx, name); err != nil {
		return err
	}
	if c.refresher != nil {
		if _, err := c.refresher.RefreshKinds(ctx, "scenario.deleted", sweepKinds...); err != nil {
			return fmt.Errorf("refresh sweep widgets: %w", err)
		}
	}
	c.telemetry.Record(ctx, "dashboard.scenario.delete", map[string]any{"scenario": name})
	return nil
}
