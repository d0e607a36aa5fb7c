package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// TranslationService resolves display strings for a locale. Providers fall
// back to their built-in English labels when it returns an error or "".
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// ErrMissingTranslation is returned by Catalog when no candidate locale has key.
var ErrMissingTranslation = errors.New("dashboard: missing translation")

// Catalog is an in-memory TranslationService keyed by locale then message key.
// Lookups walk from the region locale to its base language and then to
// "default".
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
}

// NewCatalog builds a catalog from locale -> key -> message maps.
func NewCatalog(messages map[string]map[string]string) *Catalog {
	c := &Catalog{messages: map[string]map[string]string{}}
	for locale, entries := range messages {
		c.Add(locale, entries)
	}
	return c
}

// Add merges entries into locale, replacing existing keys.
func (c *Catalog) Add(locale string, entries map[string]string) {
	locale = normalizeLocale(locale)
	if locale == "" {
		locale = "default"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.messages[locale]
	if !ok {
		bucket = make(map[string]string, len(entries))
		c.messages[locale] = bucket
	}
	for key, value := range entries {
		if key != "" && value != "" {
			bucket[key] = value
		}
	}
}

// Translate implements TranslationService. Args replace {name} placeholders.
func (c *Catalog) Translate(_ context.Context, key, locale string, args map[string]any) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, candidate := range localeCandidates(locale) {
		if msg, ok := c.messages[candidate][key]; ok {
			return interpolate(msg, args), nil
		}
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, locale)
}

// Locales lists the locales the catalog holds messages for.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	return out
}

// DecodeCatalog reads a YAML document of the form `locale: {key: message}`.
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	var messages map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&messages); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dashboard: translation catalog is empty")
		}
		return nil, fmt.Errorf("dashboard: parse translation catalog: %w", err)
	}
	return NewCatalog(messages), nil
}

// ReadCatalog loads a YAML translation catalog from disk.
func ReadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open translation catalog %s: %w", path, err)
	}
	defer f.Close()
	return DecodeCatalog(f)
}

func interpolate(msg string, args map[string]any) string {
	if len(args) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for name, value := range args {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// ResolveLocalizedValue picks values[locale], then the base language, then
// values["default"], then fallback. Keys are case-insensitive.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	normalized := normalizeLocaleMap(values)
	for _, candidate := range localeCandidates(locale) {
		if value, ok := normalized[candidate]; ok {
			return value
		}
	}
	return fallback
}

func (def *WidgetDefinition) normalizeLocalizedFields() {
	def.NameLocalized = normalizeLocaleMap(def.NameLocalized)
	def.DescriptionLocalized = normalizeLocaleMap(def.DescriptionLocalized)
}

// NameForLocale returns the localized widget name.
func (def WidgetDefinition) NameForLocale(locale string) string {
	return ResolveLocalizedValue(def.NameLocalized, locale, def.Name)
}

// DescriptionForLocale returns the localized widget description.
func (def WidgetDefinition) DescriptionForLocale(locale string) string {
	return ResolveLocalizedValue(def.DescriptionLocalized, locale, def.Description)
}

func normalizeLocaleMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		if key = normalizeLocale(key); key != "" && value != "" {
			out[key] = value
		}
	}
	return out
}

// localeCandidates expands "es_MX" into es-mx, es, default.
func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" || locale == "default" {
		return []string{"default"}
	}
	out := []string{locale}
	if idx := strings.IndexByte(locale, '-'); idx > 0 {
		out = append(out, locale[:idx])
	}
	return append(out, "default")
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "_", "-")
}

// translate returns the viewer-locale message for key, or fallback.
func (m WidgetContext) translate(ctx context.Context, key, fallback string) string {
	if m.Translator != nil {
		if msg, err := m.Translator.Translate(ctx, key, m.Viewer.Locale, nil); err == nil && msg != "" {
			return msg
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}
