package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// RegisterAreas ensures dashboard widget areas exist in the store.
func RegisterAreas(ctx context.Context, store WidgetStore) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, area := range DefaultAreaDefinitions() {
		if _, err := store.EnsureArea(ctx, area); err != nil {
			return fmt.Errorf("register area %s: %w", area.Code, err)
		}
	}
	return nil
}

// RegisterDefinitions persists the finance widget definitions and adds any the
// registry does not know yet.
func RegisterDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, def := range DefaultWidgetDefinitions() {
		if _, err := store.EnsureDefinition(ctx, def); err != nil {
			return fmt.Errorf("register definition %s: %w", def.Code, err)
		}
		if registry == nil {
			continue
		}
		// Keep definitions already overridden by a manifest.
		if _, ok := registry.Definition(def.Code); !ok {
			if err := registry.RegisterDefinition(def); err != nil {
				return fmt.Errorf("register definition in registry %s: %w", def.Code, err)
			}
		}
	}
	return nil
}

// SeedLayout creates the starter dashboard widget assignments.
func SeedLayout(ctx context.Context, service *Service) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed layout")
	}
	var seedErr error
	for _, req := range DefaultSeedWidgets() {
		if _, err := service.AddWidget(ctx, req); err != nil {
			seedErr = errors.Join(seedErr, err)
		}
	}
	return seedErr
}

// SeedScenario stores the baseline scenario unless one already exists.
func SeedScenario(ctx context.Context, store ScenarioStore) (bool, error) {
	if store == nil {
		return false, errors.New("dashboard: scenario store is required to seed scenarios")
	}
	_, err := store.LoadScenario(ctx, DefaultScenarioName)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrScenarioNotFound) {
		return false, err
	}
	if err := store.SaveScenario(ctx, DefaultScenario()); err != nil {
		return false, fmt.Errorf("seed scenario %s: %w", DefaultScenarioName, err)
	}
	return true, nil
}
