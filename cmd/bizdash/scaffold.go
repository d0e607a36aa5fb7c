package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	core "github.com/goliatone/go-bizdash/components/dashboard"
)

const (
	defaultWidgetNamespace = "finance.widget."
	defaultProviderPackage = "github.com/goliatone/go-bizdash/components/dashboard"
)

type scaffoldCmd struct {
	Name            string   `required:"" help:"Display name for the widget."`
	Description     string   `required:"" help:"One-line description used in manifests."`
	Code            string   `help:"Widget code (defaults to finance.widget.<snake_name>)."`
	Category        string   `default:"finance" help:"Widget category."`
	ManifestPath    string   `required:"" name:"manifest" type:"path" help:"Widget manifest YAML file to update."`
	SchemaPath      string   `name:"schema" type:"existingfile" help:"JSON schema file for the widget configuration."`
	Tag             []string `help:"Tags recorded in the manifest (repeatable)."`
	Maintainer      []string `help:"Maintainers recorded in the manifest (repeatable)."`
	Capabilities    []string `help:"Provider capability labels (html,json,sse,...)."`
	DocsURL         string   `name:"docs-url" help:"Link to provider documentation."`
	ProviderPackage string   `default:"github.com/goliatone/go-bizdash/components/dashboard" help:"Go package the provider factory lives in."`
	ProviderOut     string   `type:"path" help:"Provider stub path (defaults to components/dashboard/provider_<slug>.go)."`
	Overwrite       bool     `help:"Replace an existing manifest entry and provider stub."`
	SkipProvider    bool     `name:"skip-provider" help:"Only update the manifest."`
}

func (cmd *scaffoldCmd) widgetCode() string {
	if code := strings.TrimSpace(cmd.Code); code != "" {
		return code
	}
	return defaultWidgetNamespace + strcase.ToSnake(cmd.Name)
}

func (cmd *scaffoldCmd) Run(_ context.Context, out io.Writer) error {
	code := cmd.widgetCode()
	if !strings.Contains(code, ".") {
		return fmt.Errorf("scaffold: widget code %s must contain at least one '.' segment", code)
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("scaffold: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}

	providerType := providerTypeName(code)
	packageName := cmd.ProviderPackage
	if packageName == "" {
		packageName = defaultProviderPackage
	}
	entry := core.ManifestWidget{
		Definition: core.WidgetDefinition{
			Code:        code,
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Schema:      schema,
		},
		Provider: core.ManifestProvider{
			Name:         cmd.Name + " Provider",
			Summary:      cmd.Description,
			Entry:        packageName + ".New" + providerType,
			Package:      packageName,
			DocsURL:      cmd.DocsURL,
			Capabilities: cmd.Capabilities,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}
	if err := upsertWidget(doc, entry, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	if cmd.SkipProvider {
		fmt.Fprintf(out, "added %s to %s\n", code, manifestPath)
		return nil
	}

	providerPath := cmd.ProviderOut
	if providerPath == "" {
		providerPath = filepath.Join("components", "dashboard", "provider_"+strcase.ToSnake(codeSlug(code))+".go")
	}
	if err := writeProviderStub(providerPath, providerType, code, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(out, "added %s to %s and generated %s\n", code, manifestPath, providerPath)
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("scaffold: read schema: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("scaffold: parse schema: %w", err)
	}
	return schema, nil
}

// upsertWidget adds entry to doc, keeping widgets sorted by code.
func upsertWidget(doc *core.WidgetManifestDocument, entry core.ManifestWidget, overwrite bool) error {
	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Definition.Code != entry.Definition.Code {
			continue
		}
		if !overwrite {
			return fmt.Errorf("scaffold: manifest already defines %s (use --overwrite to replace)", entry.Definition.Code)
		}
		doc.Widgets[idx] = entry
		replaced = true
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.Code < doc.Widgets[j].Definition.Code
	})
	return nil
}

func loadOrInitManifest(path string) (*core.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &core.WidgetManifestDocument{
				Version: core.ManifestVersion,
				Widgets: []core.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("scaffold: stat manifest: %w", err)
	}
	return core.ReadManifest(path)
}

func writeManifest(path string, doc *core.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("scaffold: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("scaffold: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("scaffold: write manifest: %w", err)
	}
	return encoder.Close()
}

const providerStub = `package dashboard

import "context"

// %[1]s fetches data for %[2]s widgets.
type %[1]s struct {
	finance FinanceRepository
}

// New%[1]s wires the provider to a finance source.
func New%[1]s(finance FinanceRepository) Provider {
	return &%[1]s{finance: finance}
}

// Fetch returns the widget payload.
func (p *%[1]s) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	snapshot, err := p.finance.FetchFinance(ctx, FinanceQuery{Viewer: meta.Viewer})
	if err != nil {
		return nil, err
	}
	kpis, err := snapshot.KPIs()
	if err != nil {
		return nil, err
	}
	return WidgetData{"kpis": kpis}, nil
}
`

func writeProviderStub(path, providerType, code string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("scaffold: provider stub %s already exists (use --overwrite or --provider-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("scaffold: mkdir provider dir: %w", err)
	}
	content := fmt.Sprintf(providerStub, providerType, code)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("scaffold: write provider stub: %w", err)
	}
	return nil
}

func codeSlug(code string) string {
	parts := strings.Split(code, ".")
	if slug := strings.TrimSpace(parts[len(parts)-1]); slug != "" {
		return slug
	}
	return code
}

// providerTypeName turns finance.widget.cash_flow into CashFlowProvider.
func providerTypeName(code string) string {
	return strcase.ToGoPascal(codeSlug(code)) + "Provider"
}
