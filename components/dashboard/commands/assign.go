package commands

import (
	"context"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

type assignService interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) (dashboard.WidgetInstance, error)
}

// AssignWidgetCommand places a new widget instance in an area.
type AssignWidgetCommand struct {
	service   assignService
	telemetry Telemetry
	created   func(dashboard.WidgetInstance)
}

// AssignOption customizes the assign command.
type AssignOption func(*AssignWidgetCommand)

// WithCreatedCallback receives every instance the command creates. Transports
// use it to echo the new id back to the caller.
func WithCreatedCallback(fn func(dashboard.WidgetInstance)) AssignOption {
	return func(c *AssignWidgetCommand) {
		c.created = fn
	}
}

// NewAssignWidgetCommand creates a command instance.
func NewAssignWidgetCommand(service assignService, telemetry Telemetry, opts ...AssignOption) *AssignWidgetCommand {
	cmd := &AssignWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
	for _, opt := range opts {
		opt(cmd)
	}
	return cmd
}

var _ gocommand.Commander[dashboard.AddWidgetRequest] = (*AssignWidgetCommand)(nil)

// Execute delegates to the dashboard service.
func (c *AssignWidgetCommand) Execute(ctx context.Context, msg dashboard.AddWidgetRequest) error {
	if c.service == nil {
		return errMissingService
	}
	instance, err := c.service.AddWidget(ctx, msg)
	if err != nil {
		return err
	}
	if c.created != nil {
		c.created(instance)
	}
	c.telemetry.Record(ctx, "dashboard.widget.assign", map[string]any{
		"definition_id": msg.DefinitionID,
		"area_code":     msg.AreaCode,
		"widget_id":     instance.ID,
	})
	return nil
}
