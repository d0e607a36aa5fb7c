package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	errMissingWidgetStore = errors.New("dashboard: widget store not configured")
	errInvalidArea        = errors.New("dashboard: area code is required")
	errInvalidDefinition  = errors.New("dashboard: definition id is required")
	errInvalidWidgetID    = errors.New("dashboard: widget id is required")
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	WidgetStore     WidgetStore
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Translator      TranslationService
	Areas           []string
}

// Service orchestrates dashboard widgets.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = allowAllAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	return &Service{opts: opts}
}

// Providers exposes the registry the service resolves widgets against.
func (s *Service) Providers() ProviderRegistry {
	return s.opts.Providers
}

// AddWidgetRequest captures the data required to create widget assignments.
type AddWidgetRequest struct {
	DefinitionID  string
	AreaCode      string
	Configuration map[string]any
	Position      *int
	Roles         []string
	StartAt       *time.Time
	EndAt         *time.Time
	UserID        string
}

// AddWidget creates a widget instance and assigns it to an area.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) (WidgetInstance, error) {
	store, err := s.widgetStore()
	if err != nil {
		return WidgetInstance{}, err
	}
	if req.AreaCode == "" {
		return WidgetInstance{}, errInvalidArea
	}
	if req.DefinitionID == "" {
		return WidgetInstance{}, errInvalidDefinition
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return WidgetInstance{}, err
	}
	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		Configuration: req.Configuration,
		Visibility: WidgetVisibility{
			Roles:   req.Roles,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
		},
		Metadata: map[string]any{
			"user_id": req.UserID,
		},
	})
	if err != nil {
		return WidgetInstance{}, err
	}
	if err := store.AssignInstance(ctx, AssignWidgetInput{
		AreaCode:   req.AreaCode,
		InstanceID: instance.ID,
		Position:   req.Position,
	}); err != nil {
		return WidgetInstance{}, err
	}
	instance.AreaCode = req.AreaCode
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: req.AreaCode,
		Instance: instance,
		Reason:   "add",
	}); err != nil {
		return WidgetInstance{}, err
	}
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"area_code":     req.AreaCode,
		"definition_id": req.DefinitionID,
		"widget_id":     instance.ID,
	})
	return instance, nil
}

// UpdateWidgetRequest replaces a widget configuration.
type UpdateWidgetRequest struct {
	WidgetID      string
	Configuration map[string]any
	UserID        string
}

// UpdateWidget validates and stores a new configuration for an existing widget.
func (s *Service) UpdateWidget(ctx context.Context, req UpdateWidgetRequest) (WidgetInstance, error) {
	store, err := s.widgetStore()
	if err != nil {
		return WidgetInstance{}, err
	}
	if req.WidgetID == "" {
		return WidgetInstance{}, errInvalidWidgetID
	}
	current, err := store.GetInstance(ctx, req.WidgetID)
	if err != nil {
		return WidgetInstance{}, err
	}
	if err := s.validateConfiguration(current.DefinitionID, req.Configuration); err != nil {
		return WidgetInstance{}, err
	}
	updated, err := store.UpdateInstance(ctx, UpdateWidgetInstanceInput{
		InstanceID:    req.WidgetID,
		Configuration: req.Configuration,
		Metadata:      map[string]any{"updated_by": req.UserID},
	})
	if err != nil {
		return WidgetInstance{}, err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: updated.AreaCode,
		Instance: updated,
		Reason:   "update",
	}); err != nil {
		return WidgetInstance{}, err
	}
	s.recordTelemetry(ctx, "dashboard.widget.update", map[string]any{
		"widget_id":     updated.ID,
		"definition_id": updated.DefinitionID,
	})
	return updated, nil
}

// GetWidget returns a single widget with its provider payload attached.
func (s *Service) GetWidget(ctx context.Context, viewer ViewerContext, widgetID string) (WidgetInstance, error) {
	store, err := s.widgetStore()
	if err != nil {
		return WidgetInstance{}, err
	}
	if widgetID == "" {
		return WidgetInstance{}, errInvalidWidgetID
	}
	instance, err := store.GetInstance(ctx, widgetID)
	if err != nil {
		return WidgetInstance{}, err
	}
	widgets := s.filterAuthorized(ctx, viewer, []WidgetInstance{instance})
	if len(widgets) == 0 {
		return WidgetInstance{}, fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	return s.attachProviderData(ctx, viewer, widgets)[0], nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// RemoveWidget deletes the widget instance.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidgetID
	}
	if err := store.DeleteInstance(ctx, widgetID); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		Instance: WidgetInstance{ID: widgetID},
		Reason:   "delete",
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.remove", map[string]any{"widget_id": widgetID})
	return nil
}

// ReorderWidgets changes widget ordering within an area.
func (s *Service) ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if areaCode == "" {
		return errInvalidArea
	}
	if err := store.ReorderArea(ctx, ReorderAreaInput{
		AreaCode:  areaCode,
		WidgetIDs: widgetIDs,
	}); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: areaCode,
		Reason:   "reorder",
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.reorder", map[string]any{
		"area_code": areaCode,
		"count":     len(widgetIDs),
	})
	return nil
}

// ConfigureLayout resolves widgets for each dashboard area respecting preferences + auth.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return Layout{}, err
	}
	if viewer.Locale == "" {
		viewer.Locale = overrides.Locale
	}
	layout := Layout{Areas: make(map[string][]WidgetInstance)}
	for _, area := range s.areaList() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
			AreaCode: area,
			Audience: viewer.Roles,
			Locale:   viewer.Locale,
		})
		if err != nil {
			return Layout{}, err
		}
		for i := range resolved.Widgets {
			resolved.Widgets[i].AreaCode = area
		}
		visible := applyHiddenFilter(resolved.Widgets, overrides.HiddenWidgets)
		ordered := applyOrderOverride(visible, overrides.AreaOrder[area])
		layout.Areas[area] = s.filterAuthorized(ctx, viewer, ordered)
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"viewer": viewer.UserID,
	})
	return layout, nil
}

// ResolveArea retrieves a single area layout for the viewer.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, areaCode string) (ResolvedArea, error) {
	store, err := s.widgetStore()
	if err != nil {
		return ResolvedArea{}, err
	}
	if areaCode == "" {
		return ResolvedArea{}, errInvalidArea
	}
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
		AreaCode: areaCode,
		Audience: viewer.Roles,
		Locale:   viewer.Locale,
	})
	if err != nil {
		return ResolvedArea{}, err
	}
	resolved.Widgets = s.attachProviderData(ctx, viewer, s.filterAuthorized(ctx, viewer, resolved.Widgets))
	s.recordTelemetry(ctx, "dashboard.area.resolve", map[string]any{
		"viewer":    viewer.UserID,
		"area_code": areaCode,
	})
	return resolved, nil
}

// RefreshKinds emits a refresh event for every placed widget whose
// configuration kind is in kinds. It returns the number of events sent.
func (s *Service) RefreshKinds(ctx context.Context, reason string, kinds ...WidgetKind) (int, error) {
	store, err := s.widgetStore()
	if err != nil {
		return 0, err
	}
	wanted := make(map[WidgetKind]struct{}, len(kinds))
	for _, kind := range kinds {
		wanted[kind] = struct{}{}
	}
	sent := 0
	for _, area := range s.areaList() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: area})
		if err != nil {
			return sent, err
		}
		for _, inst := range resolved.Widgets {
			kind, ok := WidgetKindFor(inst.DefinitionID)
			if !ok {
				continue
			}
			if _, match := wanted[kind]; !match {
				continue
			}
			inst.AreaCode = area
			if err := s.NotifyWidgetUpdated(ctx, WidgetEvent{AreaCode: area, Instance: inst, Reason: reason}); err != nil {
				return sent, err
			}
			sent++
		}
	}
	return sent, nil
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

// ValidateConfiguration checks config against the definition schema and its typed form.
func (s *Service) ValidateConfiguration(definitionID string, config map[string]any) error {
	return s.validateConfiguration(definitionID, config)
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	if s.opts.Providers == nil {
		return nil
	}
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, definitionID)
	}
	if s.opts.ConfigValidator != nil {
		if err := s.opts.ConfigValidator.Validate(def, config); err != nil {
			return err
		}
	}
	if _, known := WidgetKindFor(definitionID); !known {
		return nil
	}
	_, err := DecodeWidgetConfig(definitionID, config)
	return err
}

func (s *Service) areaList() []string {
	if len(s.opts.Areas) > 0 {
		return s.opts.Areas
	}
	return DefaultAreaCodes()
}

// Areas lists the area codes the service resolves, in render order.
func (s *Service) Areas() []string {
	return append([]string(nil), s.areaList()...)
}

func (s *Service) filterAuthorized(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 {
		return widgets
	}
	var filtered []WidgetInstance
	for _, w := range widgets {
		if s.opts.Authorizer.CanViewWidget(ctx, viewer, w) {
			filtered = append(filtered, w)
		}
	}
	return s.attachProviderData(ctx, viewer, filtered)
}

func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 || s.opts.Providers == nil {
		return widgets
	}
	enriched := make([]WidgetInstance, len(widgets))
	copy(enriched, widgets)
	for i, inst := range enriched {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance:   inst,
			Viewer:     viewer,
			Translator: s.opts.Translator,
		})
		metadata := cloneMap(enriched[i].Metadata)
		if metadata == nil {
			metadata = map[string]any{}
		}
		if err != nil {
			s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
				"definition_id": inst.DefinitionID,
				"widget_id":     inst.ID,
				"error":         err.Error(),
			})
			metadata["error"] = err.Error()
			enriched[i].Metadata = metadata
			continue
		}
		metadata["data"] = data
		if def, ok := s.opts.Providers.Definition(inst.DefinitionID); ok {
			metadata["name"] = def.NameForLocale(viewer.Locale)
		}
		enriched[i].Metadata = metadata
	}
	return enriched
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}

// SavePreferences persists per-viewer layout overrides.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errors.New("dashboard: viewer context missing user id")
	}
	normalizeOverrides(&overrides)
	if err := s.opts.PreferenceStore.SaveLayoutOverrides(ctx, viewer, overrides); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.preferences.save", map[string]any{
		"viewer": viewer.UserID,
		"hidden": len(overrides.HiddenWidgets),
	})
	return nil
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanViewWidget(context.Context, ViewerContext, WidgetInstance) bool {
	return true
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
