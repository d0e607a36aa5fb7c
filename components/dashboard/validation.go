package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates widget configuration payloads against their schema.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// ConfigIssue is a single schema violation at an instance location.
type ConfigIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ConfigError reports every schema violation found for one widget configuration.
// It matches ErrInvalidWidgetConfig with errors.Is.
type ConfigError struct {
	Widget string
	Issues []ConfigIssue
}

func (e *ConfigError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		path := issue.Path
		if path == "" {
			path = "/"
		}
		parts = append(parts, path+": "+issue.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidWidgetConfig, e.Widget, strings.Join(parts, "; "))
}

func (e *ConfigError) Unwrap() error { return ErrInvalidWidgetConfig }

// JSONSchemaValidator compiles widget schemas on first use. Compiled schemas are
// keyed by widget code and schema content, so redefining a widget recompiles.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// Validate checks config against the definition schema. Definitions without a
// schema accept anything.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	payload, err := normalizeConfig(config)
	if err != nil {
		return fmt.Errorf("dashboard: normalize config for %s: %w", def.Code, err)
	}
	err = schema.Validate(payload)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidWidgetConfig, def.Code, err)
	}
	return &ConfigError{Widget: def.Code, Issues: collectIssues(verr)}
}

// Compiled reports how many schema variants are cached.
func (v *JSONSchemaValidator) Compiled() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.compiled)
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	key := def.Code + "@" + contentHash(def.Schema)
	v.mu.RLock()
	schema, ok := v.compiled[key]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := key + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Code, err)
	}
	schema, err = compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Code, err)
	}
	v.mu.Lock()
	v.compiled[key] = schema
	v.mu.Unlock()
	return schema, nil
}

// normalizeConfig round-trips through JSON so typed Go values ([]string,
// int) match the shapes the schema library expects.
func normalizeConfig(config map[string]any) (any, error) {
	if config == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func collectIssues(root *jsonschema.ValidationError) []ConfigIssue {
	var issues []ConfigIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			issues = append(issues, ConfigIssue{Path: e.InstanceLocation, Message: e.Message})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(root)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues
}
