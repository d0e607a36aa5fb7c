package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestVersion is the only manifest format version accepted by DecodeManifest.
const ManifestVersion = "1"

const sourceManifest = "manifest"

// WidgetManifestDocument is a YAML file declaring widgets contributed by a
// provider package. JSON documents decode too, since YAML is a superset.
type WidgetManifestDocument struct {
	Version  string           `json:"version" yaml:"version"`
	Name     string           `json:"name,omitempty" yaml:"name,omitempty"`
	Package  string           `json:"package,omitempty" yaml:"package,omitempty"`
	Homepage string           `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Widgets  []ManifestWidget `json:"widgets" yaml:"widgets"`
	Source   string           `json:"-" yaml:"-"`
}

// ManifestWidget pairs a definition with the provider that renders it.
type ManifestWidget struct {
	Definition  WidgetDefinition `json:"definition" yaml:"definition"`
	Provider    ManifestProvider `json:"provider,omitempty" yaml:"provider,omitempty"`
	Maintainers []string         `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Tags        []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ManifestProvider describes where a provider lives. It is informational; the
// Go value still has to be bound with Registry.RegisterProvider.
type ManifestProvider struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Summary      string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Entry        string   `json:"entry,omitempty" yaml:"entry,omitempty"`
	Package      string   `json:"package,omitempty" yaml:"package,omitempty"`
	DocsURL      string   `json:"docs_url,omitempty" yaml:"docs_url,omitempty"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Channel      string   `json:"channel,omitempty" yaml:"channel,omitempty"`
}

func (p ManifestProvider) isZero() bool {
	return p.Name == "" && p.Summary == "" && p.Entry == "" && p.Package == "" &&
		p.DocsURL == "" && p.Channel == "" && len(p.Capabilities) == 0
}

// LoadManifestFile reads a manifest and registers its widgets.
func (r *Registry) LoadManifestFile(path string) (*WidgetManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers every widget in doc. A manifest may redefine a
// built-in widget (an empty schema keeps the built-in one) but may not claim a
// code another manifest already declared.
func (r *Registry) LoadManifestDocument(doc *WidgetManifestDocument) error {
	if doc == nil {
		return errors.New("dashboard: manifest document is nil")
	}
	source := doc.Source
	if source == "" {
		source = sourceManifest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, widget := range doc.Widgets {
		def := widget.Definition
		if def.Code == "" {
			return fmt.Errorf("dashboard: manifest %s declares a widget without a code", source)
		}
		entry, ok := r.entries[def.Code]
		switch {
		case !ok:
			entry = &registryEntry{}
			r.entries[def.Code] = entry
		case entry.source != SourceBuiltIn && entry.source != SourceRuntime && entry.source != source:
			return fmt.Errorf("dashboard: widget %s from %s already declared by %s", def.Code, source, entry.source)
		}
		if len(def.Schema) == 0 {
			def.Schema = entry.definition.Schema
		}
		def.normalizeLocalizedFields()
		entry.definition = def
		entry.info = widget.Provider
		entry.source = source
	}
	return nil
}

// ReadManifest decodes a manifest file without registering it.
func ReadManifest(path string) (*WidgetManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest parses and validates a manifest. Unknown fields are rejected.
func DecodeManifest(r io.Reader) (*WidgetManifestDocument, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc WidgetManifestDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = ManifestVersion
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate reports every problem in the manifest at once: version, missing
// codes or names, duplicate codes and schemas that fail to compile.
func (doc *WidgetManifestDocument) Validate() error {
	var errs []error
	if doc.Version != ManifestVersion {
		errs = append(errs, fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version))
	}
	schemas := NewJSONSchemaValidator()
	seen := make(map[string]int, len(doc.Widgets))
	for idx, widget := range doc.Widgets {
		def := widget.Definition
		if def.Code == "" {
			errs = append(errs, fmt.Errorf("dashboard: widget #%d is missing definition.code", idx))
			continue
		}
		if def.Name == "" {
			errs = append(errs, fmt.Errorf("dashboard: widget %s is missing definition.name", def.Code))
		}
		if first, dup := seen[def.Code]; dup {
			errs = append(errs, fmt.Errorf("dashboard: widget #%d duplicates widget code %s (first at #%d)", idx, def.Code, first))
		} else {
			seen[def.Code] = idx
		}
		if len(def.Schema) > 0 {
			if _, err := schemas.schemaFor(def); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
