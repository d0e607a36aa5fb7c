package commands

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// UpdateWidgetInput captures widget update payloads.
type UpdateWidgetInput struct {
	WidgetID      string         `json:"widget_id"`
	Configuration map[string]any `json:"configuration"`
	UserID        string         `json:"user_id"`
}

// Validate requires the widget id.
func (in UpdateWidgetInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.WidgetID, validation.Required),
	)
}

type updateService interface {
	UpdateWidget(ctx context.Context, req dashboard.UpdateWidgetRequest) (dashboard.WidgetInstance, error)
}

// UpdateWidgetCommand wraps Service.UpdateWidget.
type UpdateWidgetCommand struct {
	service   updateService
	telemetry Telemetry
}

// NewUpdateWidgetCommand creates the command.
func NewUpdateWidgetCommand(service updateService, telemetry Telemetry) *UpdateWidgetCommand {
	return &UpdateWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateWidgetInput] = (*UpdateWidgetCommand)(nil)

// Execute validates and stores the new widget configuration.
func (c *UpdateWidgetCommand) Execute(ctx context.Context, msg UpdateWidgetInput) error {
	if c.service == nil {
		return errMissingService
	}
	if err := msg.Validate(); err != nil {
		return invalid(err)
	}
	instance, err := c.service.UpdateWidget(ctx, dashboard.UpdateWidgetRequest{
		WidgetID:      msg.WidgetID,
		Configuration: msg.Configuration,
		UserID:        msg.UserID,
	})
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.widget.update", map[string]any{
		"widget_id":     instance.ID,
		"definition_id": instance.DefinitionID,
	})
	return nil
}
