package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrWidgetNotFound is returned for unknown widget instance ids.
var ErrWidgetNotFound = errors.New("dashboard: widget instance not found")

// InMemoryWidgetStore is a process-local WidgetStore. Instance ids are UUIDs.
type InMemoryWidgetStore struct {
	mu          sync.RWMutex
	areas       map[string]WidgetAreaDefinition
	definitions map[string]WidgetDefinition
	instances   map[string]storedInstance
	assignments map[string][]string
	now         func() time.Time
}

type storedInstance struct {
	instance   WidgetInstance
	visibility WidgetVisibility
}

// NewInMemoryWidgetStore creates an empty store.
func NewInMemoryWidgetStore() *InMemoryWidgetStore {
	return &InMemoryWidgetStore{
		areas:       map[string]WidgetAreaDefinition{},
		definitions: map[string]WidgetDefinition{},
		instances:   map[string]storedInstance{},
		assignments: map[string][]string{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// EnsureArea stores the area and reports whether it was new.
func (s *InMemoryWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	if def.Code == "" {
		return false, errInvalidArea
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.areas[def.Code]
	s.areas[def.Code] = def
	return !exists, nil
}

// EnsureDefinition stores the definition and reports whether it was new.
func (s *InMemoryWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	if def.Code == "" {
		return false, errInvalidDefinition
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.definitions[def.Code]
	s.definitions[def.Code] = def
	return !exists, nil
}

// CreateInstance stores a new, unassigned instance.
func (s *InMemoryWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	if input.DefinitionID == "" {
		return WidgetInstance{}, errInvalidDefinition
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.definitions) > 0 {
		if _, ok := s.definitions[input.DefinitionID]; !ok {
			return WidgetInstance{}, fmt.Errorf("%w: %s", ErrUnknownWidget, input.DefinitionID)
		}
	}
	instance := WidgetInstance{
		ID:            uuid.NewString(),
		DefinitionID:  input.DefinitionID,
		Configuration: cloneMap(input.Configuration),
		Metadata:      cloneMap(input.Metadata),
	}
	s.instances[instance.ID] = storedInstance{instance: instance, visibility: input.Visibility}
	return cloneInstance(instance), nil
}

// GetInstance returns the instance with its area code.
func (s *InMemoryWidgetStore) GetInstance(_ context.Context, instanceID string) (WidgetInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.instances[instanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("%w: %s", ErrWidgetNotFound, instanceID)
	}
	return cloneInstance(stored.instance), nil
}

// UpdateInstance replaces the configuration and merges metadata.
func (s *InMemoryWidgetStore) UpdateInstance(_ context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.instances[input.InstanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("%w: %s", ErrWidgetNotFound, input.InstanceID)
	}
	stored.instance.Configuration = cloneMap(input.Configuration)
	if len(input.Metadata) > 0 {
		merged := cloneMap(stored.instance.Metadata)
		if merged == nil {
			merged = map[string]any{}
		}
		for k, v := range input.Metadata {
			merged[k] = v
		}
		stored.instance.Metadata = merged
	}
	s.instances[input.InstanceID] = stored
	return cloneInstance(stored.instance), nil
}

// DeleteInstance removes the instance and its assignment.
func (s *InMemoryWidgetStore) DeleteInstance(_ context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[instanceID]; !ok {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, instanceID)
	}
	delete(s.instances, instanceID)
	for area, ids := range s.assignments {
		s.assignments[area] = filterIDs(ids, instanceID)
	}
	return nil
}

// AssignInstance places the instance in an area, moving it if already placed.
// A nil or out-of-range position appends.
func (s *InMemoryWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	if input.AreaCode == "" {
		return errInvalidArea
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.instances[input.InstanceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, input.InstanceID)
	}
	for area, ids := range s.assignments {
		s.assignments[area] = filterIDs(ids, input.InstanceID)
	}
	order := s.assignments[input.AreaCode]
	if input.Position != nil && *input.Position >= 0 && *input.Position <= len(order) {
		idx := *input.Position
		next := make([]string, 0, len(order)+1)
		next = append(next, order[:idx]...)
		next = append(next, input.InstanceID)
		order = append(next, order[idx:]...)
	} else {
		order = append(order, input.InstanceID)
	}
	s.assignments[input.AreaCode] = order
	stored.instance.AreaCode = input.AreaCode
	s.instances[input.InstanceID] = stored
	return nil
}

// ReorderArea applies the given order. Ids not listed keep their relative
// order after the listed ones; unknown ids are ignored.
func (s *InMemoryWidgetStore) ReorderArea(_ context.Context, input ReorderAreaInput) error {
	if input.AreaCode == "" {
		return errInvalidArea
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.assignments[input.AreaCode]
	placed := make(map[string]struct{}, len(current))
	for _, id := range current {
		placed[id] = struct{}{}
	}
	next := make([]string, 0, len(current))
	seen := make(map[string]struct{}, len(input.WidgetIDs))
	for _, id := range input.WidgetIDs {
		if _, ok := placed[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		next = append(next, id)
	}
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			next = append(next, id)
		}
	}
	s.assignments[input.AreaCode] = next
	return nil
}

// ResolveArea lists the area's instances visible to the audience right now.
func (s *InMemoryWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.assignments[input.AreaCode]
	now := s.now()
	widgets := make([]WidgetInstance, 0, len(ids))
	for _, id := range ids {
		stored, ok := s.instances[id]
		if !ok || !stored.visibility.allows(input.Audience, now) {
			continue
		}
		widgets = append(widgets, cloneInstance(stored.instance))
	}
	return ResolvedArea{
		AreaCode: input.AreaCode,
		Widgets:  widgets,
	}, nil
}

func (v WidgetVisibility) allows(audience []string, now time.Time) bool {
	if v.StartAt != nil && now.Before(*v.StartAt) {
		return false
	}
	if v.EndAt != nil && now.After(*v.EndAt) {
		return false
	}
	if len(v.Roles) == 0 {
		return true
	}
	for _, role := range v.Roles {
		for _, have := range audience {
			if role == have {
				return true
			}
		}
	}
	return false
}

func cloneInstance(in WidgetInstance) WidgetInstance {
	in.Configuration = cloneMap(in.Configuration)
	in.Metadata = cloneMap(in.Metadata)
	return in
}

func filterIDs(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
