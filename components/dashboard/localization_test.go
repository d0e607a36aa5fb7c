package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslationService struct {
	value string
	err   error
}

func (s stubTranslationService) Translate(context.Context, string, string, map[string]any) (string, error) {
	return s.value, s.err
}

func TestResolveLocalizedValue(t *testing.T) {
	values := map[string]string{
		"en":      "Runway",
		"ES":      "Pista",
		"es-mx":   "Autonomía",
		"default": "Runway (default)",
	}
	assert.Equal(t, "Autonomía", ResolveLocalizedValue(values, "es_MX", "fallback"))
	assert.Equal(t, "Pista", ResolveLocalizedValue(values, "es-ar", "fallback"))
	assert.Equal(t, "Runway (default)", ResolveLocalizedValue(values, "fr", "fallback"))
	assert.Equal(t, "Runway", ResolveLocalizedValue(nil, "es", "Runway"))
}

func TestCatalogFallsBackThroughLocales(t *testing.T) {
	catalog := NewCatalog(map[string]map[string]string{
		"es":      {"finance.kpi.burn": "Consumo mensual"},
		"es-MX":   {"finance.kpi.runway": "Meses de caja"},
		"default": {"finance.kpi.revenue": "Revenue"},
	})
	ctx := context.Background()

	msg, err := catalog.Translate(ctx, "finance.kpi.runway", "es-mx", nil)
	require.NoError(t, err)
	assert.Equal(t, "Meses de caja", msg)

	msg, err = catalog.Translate(ctx, "finance.kpi.burn", "es-MX", nil)
	require.NoError(t, err)
	assert.Equal(t, "Consumo mensual", msg)

	msg, err = catalog.Translate(ctx, "finance.kpi.revenue", "de", nil)
	require.NoError(t, err)
	assert.Equal(t, "Revenue", msg)

	_, err = catalog.Translate(ctx, "finance.kpi.cash", "es", nil)
	assert.True(t, errors.Is(err, ErrMissingTranslation))
	assert.ElementsMatch(t, []string{"es", "es-mx", "default"}, catalog.Locales())
}

func TestCatalogInterpolatesArgs(t *testing.T) {
	catalog := NewCatalog(nil)
	catalog.Add("en", map[string]string{"finance.runway.months": "{months} months left"})
	msg, err := catalog.Translate(context.Background(), "finance.runway.months", "en-GB", map[string]any{"months": 30.8})
	require.NoError(t, err)
	assert.Equal(t, "30.8 months left", msg)
}

func TestDecodeCatalog(t *testing.T) {
	catalog, err := DecodeCatalog(strings.NewReader("es:\n  finance.kpi.burn: Consumo\n"))
	require.NoError(t, err)
	msg, err := catalog.Translate(context.Background(), "finance.kpi.burn", "es", nil)
	require.NoError(t, err)
	assert.Equal(t, "Consumo", msg)

	_, err = DecodeCatalog(strings.NewReader(""))
	assert.Error(t, err)
	_, err = DecodeCatalog(strings.NewReader("es: [not, a, map]\n"))
	assert.Error(t, err)
}

func TestReadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fr:\n  finance.kpi.revenue: Revenus\n"), 0o600))
	catalog, err := ReadCatalog(path)
	require.NoError(t, err)
	msg, err := catalog.Translate(context.Background(), "finance.kpi.revenue", "fr-CA", nil)
	require.NoError(t, err)
	assert.Equal(t, "Revenus", msg)

	_, err = ReadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWidgetContextTranslate(t *testing.T) {
	ctx := context.Background()
	meta := WidgetContext{Viewer: ViewerContext{Locale: "es"}, Translator: stubTranslationService{value: "Tablero"}}
	assert.Equal(t, "Tablero", meta.translate(ctx, "dashboard.title", "Dashboard"))

	meta.Translator = stubTranslationService{err: errors.New("boom")}
	assert.Equal(t, "Dashboard", meta.translate(ctx, "dashboard.title", "Dashboard"))
	assert.Equal(t, "dashboard.title", meta.translate(ctx, "dashboard.title", ""))

	meta.Translator = nil
	assert.Equal(t, "Dashboard", meta.translate(ctx, "dashboard.title", "Dashboard"))
}

func TestDocsTranslationsCoverBuiltInTitles(t *testing.T) {
	catalog, err := ReadCatalog(filepath.Join("..", "..", "docs", "translations", "es.yaml"))
	require.NoError(t, err)
	assert.Contains(t, catalog.Locales(), "es")

	for _, code := range []string{
		WidgetARRSweep, WidgetValuationBands, WidgetValuationSnapshot, WidgetKPISummary,
		WidgetRunwayGauge, WidgetExpenseBreakdown, WidgetRevenueBreakdown,
	} {
		_, err := catalog.Translate(context.Background(), code+".title", "es", nil)
		assert.NoErrorf(t, err, "missing es title for %s", code)
	}
	for _, metric := range defaultKPIMetrics {
		_, err := catalog.Translate(context.Background(), "finance.kpi."+metric, "es", nil)
		assert.NoErrorf(t, err, "missing es label for %s", metric)
	}
}
