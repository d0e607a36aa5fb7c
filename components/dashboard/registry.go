package dashboard

import (
	"fmt"
	"sort"
	"sync"
)

// Registration sources reported by Registry.Source.
const (
	SourceBuiltIn = "builtin"
	SourceRuntime = "runtime"
)

// Registry holds widget definitions, the providers that render them, and
// where each definition came from.
type Registry struct {
	mu      sync.RWMutex
	deps    ProviderDeps
	entries map[string]*registryEntry
}

type registryEntry struct {
	definition WidgetDefinition
	provider   Provider
	info       ManifestProvider
	source     string
}

// NewRegistry builds a registry with the finance widgets backed by demo data.
func NewRegistry() *Registry {
	return NewRegistryWithDeps(ProviderDeps{})
}

// NewRegistryWithDeps builds a registry whose built-in providers read from deps.
func NewRegistryWithDeps(deps ProviderDeps) *Registry {
	reg := &Registry{
		deps:    deps.normalize(),
		entries: map[string]*registryEntry{},
	}
	providers := defaultProviders(reg.deps)
	for _, def := range DefaultWidgetDefinitions() {
		def.normalizeLocalizedFields()
		reg.entries[def.Code] = &registryEntry{
			definition: def,
			provider:   providers[def.Code],
			source:     SourceBuiltIn,
		}
	}
	return reg
}

// Deps exposes the collaborators the built-in providers were wired with.
func (r *Registry) Deps() ProviderDeps {
	return r.deps
}

// Register stores a definition together with its provider.
func (r *Registry) Register(def WidgetDefinition, provider Provider) error {
	if provider == nil {
		return fmt.Errorf("dashboard: provider for %s cannot be nil", def.Code)
	}
	return r.put(def, SourceRuntime, func(e *registryEntry) { e.provider = provider })
}

// RegisterDefinition stores widget metadata. Redefining a code keeps the
// provider already bound to it.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	return r.put(def, SourceRuntime, nil)
}

// RegisterProvider binds a provider to an existing definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if code == "" {
		return fmt.Errorf("dashboard: widget code is required to register a provider")
	}
	if provider == nil {
		return fmt.Errorf("dashboard: provider for %s cannot be nil", code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[code]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, code)
	}
	entry.provider = provider
	return nil
}

func (r *Registry) put(def WidgetDefinition, source string, apply func(*registryEntry)) error {
	if def.Code == "" {
		return fmt.Errorf("dashboard: widget definition code is required")
	}
	def.normalizeLocalizedFields()
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[def.Code]
	if !ok {
		entry = &registryEntry{}
		r.entries[def.Code] = entry
	}
	entry.definition = def
	entry.source = source
	if apply != nil {
		apply(entry)
	}
	return nil
}

// Definition fetches a widget definition by code.
func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[code]
	if !ok {
		return WidgetDefinition{}, false
	}
	return entry.definition, true
}

// Provider fetches the provider bound to a widget code.
func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[code]
	if !ok || entry.provider == nil {
		return nil, false
	}
	return entry.provider, true
}

// ProviderMetadata returns the manifest description of a widget's provider.
func (r *Registry) ProviderMetadata(code string) (ManifestProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[code]
	if !ok || entry.info.isZero() {
		return ManifestProvider{}, false
	}
	return entry.info, true
}

// Source reports where a definition was last registered from: SourceBuiltIn,
// SourceRuntime or a manifest path.
func (r *Registry) Source(code string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.entries[code]; ok {
		return entry.source
	}
	return ""
}

// Definitions returns all registered definitions sorted by code.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.entries))
	for _, entry := range r.entries {
		defs = append(defs, entry.definition)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}
