package dashboard

import (
	"context"
	"time"
)

// WidgetStore encapsulates persistence for areas, definitions and instances.
// Implementations ensure thread safety and idempotency.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	GetInstance(ctx context.Context, instanceID string) (WidgetInstance, error)
	UpdateInstance(ctx context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error)
	DeleteInstance(ctx context.Context, instanceID string) error
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	ReorderArea(ctx context.Context, input ReorderAreaInput) error
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
}

// Authorizer determines if a viewer can see a widget instance.
type Authorizer interface {
	CanViewWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) bool
}

// PreferenceStore returns layout overrides per viewer.
type PreferenceStore interface {
	LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
	SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error
}

// ProviderRegistry stores widget definitions/providers discoverable via hooks or manifests.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook notifies transports (SSE/WebSocket) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetAreaDefinition models a dashboard widget area (main/sidebar/footer).
type WidgetAreaDefinition struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WidgetDefinition describes a widget kind and its configuration schema.
type WidgetDefinition struct {
	Code                 string            `json:"code" yaml:"code"`
	Name                 string            `json:"name" yaml:"name"`
	NameLocalized        map[string]string `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	Description          string            `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Schema               map[string]any    `json:"schema,omitempty" yaml:"schema,omitempty"`
	Category             string            `json:"category,omitempty" yaml:"category,omitempty"`
}

// WidgetInstance is a configured widget placed in an area.
type WidgetInstance struct {
	ID            string         `json:"id"`
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// CreateWidgetInstanceInput configures new instances.
type CreateWidgetInstanceInput struct {
	DefinitionID  string
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// UpdateWidgetInstanceInput replaces configuration and merges metadata.
type UpdateWidgetInstanceInput struct {
	InstanceID    string
	Configuration map[string]any
	Metadata      map[string]any
}

// WidgetVisibility defines runtime visibility constraints.
type WidgetVisibility struct {
	Roles    []string
	StartAt  *time.Time
	EndAt    *time.Time
	Audience []string
}

// AssignWidgetInput associates a widget instance with an area.
type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ReorderAreaInput represents a new ordering for widgets within an area.
type ReorderAreaInput struct {
	AreaCode  string
	WidgetIDs []string
}

// ResolveAreaInput requests widget instances for a given area and audience.
type ResolveAreaInput struct {
	AreaCode string
	Audience []string
	Locale   string
}

// ResolvedArea is a container for widgets returned by the store.
type ResolvedArea struct {
	AreaCode string           `json:"area_code"`
	Widgets  []WidgetInstance `json:"widgets"`
}

// LayoutOverrides captures per-user adjustments.
type LayoutOverrides struct {
	Locale        string              `json:"locale,omitempty"`
	AreaOrder     map[string][]string `json:"area_order"`
	HiddenWidgets map[string]bool     `json:"hidden_widgets"`
}

// ViewerContext captures the active user/locale information needed to render dashboards.
type ViewerContext struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
	Locale string   `json:"locale,omitempty"`
}

// Layout describes the resolved widget instances per dashboard area.
type Layout struct {
	Areas map[string][]WidgetInstance `json:"areas"`
}

// WidgetEvent describes changes that transports might care about.
type WidgetEvent struct {
	AreaCode string         `json:"area_code,omitempty"`
	Instance WidgetInstance `json:"instance"`
	Reason   string         `json:"reason"`
}
