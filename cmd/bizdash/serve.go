package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	core "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/pkg/config"
	bizdash "github.com/goliatone/go-bizdash/pkg/dashboard"
	"github.com/goliatone/go-bizdash/pkg/ledger"
	"github.com/goliatone/go-bizdash/pkg/scenarios"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Env []string `default:".env" help:"Dotenv files loaded before the environment is parsed."`
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(cmd.Env...)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	opts, closeStores, err := buildOptions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	app, err := bizdash.New(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	server := fiber.New(fiber.Config{DisableStartupMessage: true})
	var router fiber.Router = server
	if base := strings.TrimRight(cfg.BasePath, "/"); base != "" {
		router = server.Group(base)
	}
	if err := app.Register(router, nil); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bizdash listening", "addr", cfg.Addr, "base_path", cfg.BasePath)
		errCh <- server.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("bizdash shutting down")
		// Live SSE/WebSocket streams end once the broadcast closes.
		app.Close()
		return server.ShutdownWithTimeout(shutdownTimeout)
	}
}

func newLogger(cfg config.Config, out io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(out, handlerOpts)), nil
	}
	return slog.New(slog.NewJSONHandler(out, handlerOpts)), nil
}

// buildOptions picks the scenario store and finance source from cfg. The
// returned func closes any opened database.
func buildOptions(ctx context.Context, cfg config.Config, logger *slog.Logger) (bizdash.Options, func(), error) {
	opts := bizdash.Options{
		Logger:        logger,
		ChartCacheTTL: cfg.ChartCacheTTL,
		AssetsHost:    cfg.EChartsCDN,
		Manifests:     cfg.ManifestPaths,
		SeedLayout:    cfg.SeedLayout,
	}
	closer := func() {}

	if cfg.ScenarioDB != "" {
		store, err := scenarios.OpenSQLite(cfg.ScenarioDB)
		if err != nil {
			return opts, closer, err
		}
		opts.Scenarios = store
		closer = func() {
			if err := store.Close(); err != nil {
				logger.Warn("close scenario db", "error", err)
			}
		}
	} else {
		opts.Scenarios = core.NewInMemoryScenarioStore()
	}

	if cfg.ScenarioFile != "" {
		file, err := scenarios.ReadFile(cfg.ScenarioFile)
		if err != nil {
			closer()
			return opts, func() {}, err
		}
		imported, err := file.Import(ctx, opts.Scenarios)
		if err != nil {
			closer()
			return opts, func() {}, err
		}
		opts.Finance = scenarios.NewFinanceRepository(file)
		logger.Info("scenario file loaded", "path", cfg.ScenarioFile, "scenarios", len(file.Scenarios), "imported", imported)
	}

	if cfg.UseLedger() {
		client, err := ledger.NewHTTPClient(ledger.HTTPConfig{
			BaseURL:    cfg.LedgerURL,
			APIKey:     cfg.LedgerAPIKey,
			HTTPClient: &http.Client{Timeout: cfg.LedgerTimeout},
		})
		if err != nil {
			closer()
			return opts, func() {}, err
		}
		opts.Finance = ledger.NewFinanceRepository(client)
		logger.Info("ledger finance source enabled", "url", cfg.LedgerURL)
	}
	if cfg.Translations != "" {
		catalog, err := core.ReadCatalog(cfg.Translations)
		if err != nil {
			closer()
			return opts, func() {}, err
		}
		opts.Translator = catalog
		logger.Info("translations loaded", "path", cfg.Translations, "locales", catalog.Locales())
	}

	if opts.Finance == nil {
		logger.Info("serving demo finance data")
	}
	return opts, closer, nil
}
