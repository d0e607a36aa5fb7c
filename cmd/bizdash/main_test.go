package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/pkg/config"
)

var demoScenarioFile = filepath.Join("..", "..", "docs", "scenarios", "demo.yaml")

func int64Ptr(v int64) *int64 { return &v }

func TestSweepCSVUsesDefaultScenario(t *testing.T) {
	var out bytes.Buffer
	cmd := &sweepCmd{scenarioFlags: scenarioFlags{Scenario: "baseline"}, Format: "csv"}
	require.NoError(t, cmd.Run(context.Background(), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 12)
	assert.True(t, strings.HasPrefix(lines[0], "users,arrCurrent,arrSuper"))
	assert.True(t, strings.HasPrefix(lines[11], "100000,1000000,2500000"))
}

func TestSweepJSONAppliesOverrides(t *testing.T) {
	var out bytes.Buffer
	cmd := &sweepCmd{
		scenarioFlags: scenarioFlags{Scenario: "baseline"},
		UsersMax:      int64Ptr(20_000),
		Format:        "json",
	}
	require.NoError(t, cmd.Run(context.Background(), &out))

	var payload struct {
		Scenario string            `json:"scenario"`
		Dataset  []json.RawMessage `json:"dataset"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, "baseline", payload.Scenario)
	assert.Len(t, payload.Dataset, 3)
}

func TestSweepTableFromScenarioFile(t *testing.T) {
	var out bytes.Buffer
	cmd := &sweepCmd{
		scenarioFlags: scenarioFlags{ScenarioFile: demoScenarioFile, Scenario: "Aggressive"},
		Format:        "table",
	}
	require.NoError(t, cmd.Run(context.Background(), &out))
	assert.Contains(t, out.String(), "ARR current")
	assert.Contains(t, out.String(), "$3000000")
}

func TestSweepUnknownScenario(t *testing.T) {
	cmd := &sweepCmd{scenarioFlags: scenarioFlags{Scenario: "series-b"}, Format: "csv"}
	err := cmd.Run(context.Background(), io.Discard)
	assert.True(t, errors.Is(err, core.ErrScenarioNotFound))
}

func TestKPITableUsesDemoData(t *testing.T) {
	var out bytes.Buffer
	cmd := &kpiCmd{Scenario: "baseline", Format: "table"}
	require.NoError(t, cmd.Run(context.Background(), &out))
	assert.Contains(t, out.String(), "$40650")
	assert.Contains(t, out.String(), "30.8 months")
	assert.Contains(t, out.String(), "expenses: Payroll")
}

func TestKPIJSONFromScenarioFile(t *testing.T) {
	var out bytes.Buffer
	cmd := &kpiCmd{ScenarioFile: demoScenarioFile, Scenario: "aggressive", Format: "json"}
	require.NoError(t, cmd.Run(context.Background(), &out))

	var report kpiReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "aggressive", report.Scenario)
	assert.InDelta(t, 78000, report.KPIs.MonthlyBurn, 0.001)
	require.Len(t, report.RevenueSegments, 2)
	assert.Equal(t, "Enterprise", report.RevenueSegments[0].Label)
}

func TestImportThenSweepFromDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "scenarios.db")
	var out bytes.Buffer
	require.NoError(t, (&importCmd{File: demoScenarioFile, DB: db}).Run(context.Background(), &out))
	assert.Contains(t, out.String(), "imported 2 of 2")

	out.Reset()
	cmd := &sweepCmd{scenarioFlags: scenarioFlags{DB: db, Scenario: "aggressive"}, Format: "csv"}
	require.NoError(t, cmd.Run(context.Background(), &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 12)
}

func TestScaffoldWritesManifestAndStub(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "widgets.yaml")
	stub := filepath.Join(dir, "provider_cash_flow.go")
	cmd := &scaffoldCmd{
		Name:            "Cash Flow",
		Description:     "Monthly cash in and out",
		Category:        "finance",
		ManifestPath:    manifest,
		ProviderPackage: defaultProviderPackage,
		ProviderOut:     stub,
	}
	var out bytes.Buffer
	require.NoError(t, cmd.Run(context.Background(), &out))

	doc, err := core.ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)
	assert.Equal(t, "finance.widget.cash_flow", doc.Widgets[0].Definition.Code)
	assert.Equal(t, defaultProviderPackage+".NewCashFlowProvider", doc.Widgets[0].Provider.Entry)

	source, err := os.ReadFile(stub)
	require.NoError(t, err)
	assert.Contains(t, string(source), "type CashFlowProvider struct")

	err = cmd.Run(context.Background(), io.Discard)
	assert.ErrorContains(t, err, "already defines")

	cmd.Overwrite = true
	cmd.Description = "Cash in and out"
	require.NoError(t, cmd.Run(context.Background(), io.Discard))
	doc, err = core.ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)
	assert.Equal(t, "Cash in and out", doc.Widgets[0].Definition.Description)
}

func TestScaffoldRejectsFlatCode(t *testing.T) {
	cmd := &scaffoldCmd{Name: "Flat", Description: "x", Code: "flat", ManifestPath: filepath.Join(t.TempDir(), "m.yaml"), SkipProvider: true}
	assert.Error(t, cmd.Run(context.Background(), io.Discard))
}

func TestBuildOptionsWiresStoresAndFinance(t *testing.T) {
	cfg := config.Config{
		ScenarioDB:   filepath.Join(t.TempDir(), "scenarios.db"),
		ScenarioFile: demoScenarioFile,
		LogLevel:     "info",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts, closeStores, err := buildOptions(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(closeStores)

	require.NotNil(t, opts.Finance)
	list, err := opts.Scenarios.ListScenarios(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	cfg = config.Config{LedgerURL: "https://ledger.example.com", LogLevel: "info"}
	opts, closeStores, err = buildOptions(context.Background(), cfg, logger)
	require.NoError(t, err)
	closeStores()
	assert.NotNil(t, opts.Finance)
}

func TestBuildOptionsLoadsTranslations(t *testing.T) {
	cfg := config.Config{
		Translations: filepath.Join("..", "..", "docs", "translations", "es.yaml"),
		LogLevel:     "info",
	}
	opts, closeStores, err := buildOptions(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(closeStores)
	require.NotNil(t, opts.Translator)

	msg, err := opts.Translator.Translate(context.Background(), "finance.kpi.burn", "es-MX", nil)
	require.NoError(t, err)
	assert.Equal(t, "Consumo mensual", msg)

	cfg.Translations = filepath.Join(t.TempDir(), "missing.yaml")
	_, _, err = buildOptions(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestNewLoggerHonorsFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.Config{LogLevel: "debug", LogFormat: "text"}, &buf)
	require.NoError(t, err)
	logger.Debug("ready", "component", "cli")
	assert.Contains(t, buf.String(), "component=cli")

	_, err = newLogger(config.Config{LogLevel: "chatty"}, &buf)
	assert.Error(t, err)
}
