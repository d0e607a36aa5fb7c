package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryPreferenceStore provides a concurrency-safe default store.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]LayoutOverrides
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]LayoutOverrides),
	}
}

// LayoutOverrides returns stored overrides or defaults. Anonymous viewers
// always get defaults.
func (s *InMemoryPreferenceStore) LayoutOverrides(_ context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	defaults := LayoutOverrides{Locale: viewer.Locale}
	normalizeOverrides(&defaults)
	if viewer.UserID == "" {
		return defaults, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	overrides, ok := s.data[viewer.UserID]
	if !ok {
		return defaults, nil
	}
	overrides = cloneOverrides(overrides)
	if overrides.Locale == "" {
		overrides.Locale = viewer.Locale
	}
	return overrides, nil
}

// SaveLayoutOverrides persists overrides for a viewer.
func (s *InMemoryPreferenceStore) SaveLayoutOverrides(_ context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return fmt.Errorf("preference store requires viewer user id")
	}
	normalizeOverrides(&overrides)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewer.UserID] = cloneOverrides(overrides)
	return nil
}

func normalizeOverrides(overrides *LayoutOverrides) {
	if overrides.AreaOrder == nil {
		overrides.AreaOrder = map[string][]string{}
	}
	if overrides.HiddenWidgets == nil {
		overrides.HiddenWidgets = map[string]bool{}
	}
}

func cloneOverrides(in LayoutOverrides) LayoutOverrides {
	out := LayoutOverrides{
		Locale:        in.Locale,
		AreaOrder:     make(map[string][]string, len(in.AreaOrder)),
		HiddenWidgets: make(map[string]bool, len(in.HiddenWidgets)),
	}
	for area, ids := range in.AreaOrder {
		out.AreaOrder[area] = append([]string(nil), ids...)
	}
	for id, hidden := range in.HiddenWidgets {
		out.HiddenWidgets[id] = hidden
	}
	return out
}
