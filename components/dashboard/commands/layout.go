package commands

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// RemoveWidgetInput identifies the widget instance to remove.
type RemoveWidgetInput struct {
	WidgetID string `json:"widget_id"`
	UserID   string `json:"user_id"`
}

// Validate requires the widget id.
func (in RemoveWidgetInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.WidgetID, validation.Required),
	)
}

// ReorderWidgetsInput is the full ordering of one area.
type ReorderWidgetsInput struct {
	AreaCode  string   `json:"area_code"`
	WidgetIDs []string `json:"widget_ids"`
}

// Validate requires an area and a list of distinct ids.
func (in ReorderWidgetsInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.AreaCode, validation.Required),
		validation.Field(&in.WidgetIDs, validation.Required, distinct),
	)
}

// RefreshWidgetInput asks transports to re-render an area or widget.
type RefreshWidgetInput struct {
	Event dashboard.WidgetEvent `json:"event"`
}

// Validate requires the event to target an area or a widget instance.
func (in RefreshWidgetInput) Validate() error {
	if in.Event.AreaCode == "" && in.Event.Instance.ID == "" {
		return validation.Errors{"event": validation.NewError("validation_refresh_target", "must name an area_code or an instance id")}
	}
	return nil
}

// SaveLayoutPreferencesInput captures a viewer's layout overrides.
type SaveLayoutPreferencesInput struct {
	Viewer        dashboard.ViewerContext `json:"viewer"`
	AreaOrder     map[string][]string     `json:"area_order"`
	HiddenWidgets []string                `json:"hidden_widget_ids"`
}

// Validate requires a viewer and distinct ids within every list.
func (in SaveLayoutPreferencesInput) Validate() error {
	if err := validation.Validate(in.Viewer.UserID, validation.Required.Error("viewer user id is required")); err != nil {
		return err
	}
	if err := validation.Validate(in.HiddenWidgets, distinct); err != nil {
		return validation.Errors{"hidden_widget_ids": err}
	}
	for area, ids := range in.AreaOrder {
		if err := validation.Validate(ids, distinct); err != nil {
			return validation.Errors{"area_order." + area: err}
		}
	}
	return nil
}

func (in SaveLayoutPreferencesInput) overrides() dashboard.LayoutOverrides {
	hidden := make(map[string]bool, len(in.HiddenWidgets))
	for _, id := range in.HiddenWidgets {
		hidden[id] = true
	}
	return dashboard.LayoutOverrides{AreaOrder: in.AreaOrder, HiddenWidgets: hidden}
}

type layoutService interface {
	RemoveWidget(ctx context.Context, widgetID string) error
	ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
	SavePreferences(ctx context.Context, viewer dashboard.ViewerContext, overrides dashboard.LayoutOverrides) error
}

// layoutCommand runs a validated input against the layout service and records
// one telemetry event when it succeeds.
type layoutCommand[T interface{ Validate() error }] struct {
	service   layoutService
	telemetry Telemetry
	event     string
	apply     func(ctx context.Context, svc layoutService, msg T) error
	payload   func(msg T) map[string]any
}

func (c *layoutCommand[T]) Execute(ctx context.Context, msg T) error {
	if c.service == nil {
		return errMissingService
	}
	if err := msg.Validate(); err != nil {
		return invalid(err)
	}
	if err := c.apply(ctx, c.service, msg); err != nil {
		return err
	}
	c.telemetry.Record(ctx, c.event, c.payload(msg))
	return nil
}

// RemoveWidgetCommand deletes a widget instance.
type RemoveWidgetCommand struct {
	layoutCommand[RemoveWidgetInput]
}

// ReorderWidgetsCommand stores a new widget order for an area.
type ReorderWidgetsCommand struct {
	layoutCommand[ReorderWidgetsInput]
}

// RefreshWidgetCommand pushes a refresh event to connected transports.
type RefreshWidgetCommand struct {
	layoutCommand[RefreshWidgetInput]
}

// SaveLayoutPreferencesCommand persists per-viewer layout overrides.
type SaveLayoutPreferencesCommand struct {
	layoutCommand[SaveLayoutPreferencesInput]
}

var (
	_ gocommand.Commander[RemoveWidgetInput]          = (*RemoveWidgetCommand)(nil)
	_ gocommand.Commander[ReorderWidgetsInput]        = (*ReorderWidgetsCommand)(nil)
	_ gocommand.Commander[RefreshWidgetInput]         = (*RefreshWidgetCommand)(nil)
	_ gocommand.Commander[SaveLayoutPreferencesInput] = (*SaveLayoutPreferencesCommand)(nil)
)

// NewRemoveWidgetCommand builds the remove command.
func NewRemoveWidgetCommand(service layoutService, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{layoutCommand[RemoveWidgetInput]{
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
		event:     "dashboard.widget.remove",
		apply: func(ctx context.Context, svc layoutService, msg RemoveWidgetInput) error {
			return svc.RemoveWidget(ctx, msg.WidgetID)
		},
		payload: func(msg RemoveWidgetInput) map[string]any {
			return map[string]any{"widget_id": msg.WidgetID, "user_id": msg.UserID}
		},
	}}
}

// NewReorderWidgetsCommand builds the reorder command.
func NewReorderWidgetsCommand(service layoutService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{layoutCommand[ReorderWidgetsInput]{
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
		event:     "dashboard.widget.reorder",
		apply: func(ctx context.Context, svc layoutService, msg ReorderWidgetsInput) error {
			return svc.ReorderWidgets(ctx, msg.AreaCode, msg.WidgetIDs)
		},
		payload: func(msg ReorderWidgetsInput) map[string]any {
			return map[string]any{"area_code": msg.AreaCode, "count": len(msg.WidgetIDs)}
		},
	}}
}

// NewRefreshWidgetCommand builds the refresh command. Events without a reason
// are tagged "manual".
func NewRefreshWidgetCommand(service layoutService, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{layoutCommand[RefreshWidgetInput]{
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
		event:     "dashboard.widget.refresh",
		apply: func(ctx context.Context, svc layoutService, msg RefreshWidgetInput) error {
			if msg.Event.Reason == "" {
				msg.Event.Reason = "manual"
			}
			return svc.NotifyWidgetUpdated(ctx, msg.Event)
		},
		payload: func(msg RefreshWidgetInput) map[string]any {
			return map[string]any{"area_code": msg.Event.AreaCode, "widget_id": msg.Event.Instance.ID}
		},
	}}
}

// NewSaveLayoutPreferencesCommand builds the preferences command.
func NewSaveLayoutPreferencesCommand(service layoutService, telemetry Telemetry) *SaveLayoutPreferencesCommand {
	return &SaveLayoutPreferencesCommand{layoutCommand[SaveLayoutPreferencesInput]{
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
		event:     "dashboard.preferences.save",
		apply: func(ctx context.Context, svc layoutService, msg SaveLayoutPreferencesInput) error {
			return svc.SavePreferences(ctx, msg.Viewer, msg.overrides())
		},
		payload: func(msg SaveLayoutPreferencesInput) map[string]any {
			return map[string]any{"user_id": msg.Viewer.UserID, "areas": len(msg.AreaOrder), "hidden": len(msg.HiddenWidgets)}
		},
	}}
}
