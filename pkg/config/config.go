package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the bizdash server and CLI.
type Config struct {
	Addr          string        `env:"BIZDASH_ADDR"            envDefault:":8080"`
	BasePath      string        `env:"BIZDASH_BASE_PATH"       envDefault:"/"`
	EChartsCDN    string        `env:"BIZDASH_ECHARTS_CDN"`
	ChartCacheTTL time.Duration `env:"BIZDASH_CHART_CACHE_TTL" envDefault:"5m"`
	ScenarioDB    string        `env:"BIZDASH_SCENARIO_DB"`
	ScenarioFile  string        `env:"BIZDASH_SCENARIO_FILE"`
	ManifestPaths []string      `env:"BIZDASH_MANIFESTS"       envSeparator:","`
	Translations  string        `env:"BIZDASH_TRANSLATIONS"`
	LedgerURL     string        `env:"BIZDASH_LEDGER_URL"`
	LedgerAPIKey  string        `env:"BIZDASH_LEDGER_API_KEY"`
	LedgerTimeout time.Duration `env:"BIZDASH_LEDGER_TIMEOUT"  envDefault:"10s"`
	LogLevel      string        `env:"BIZDASH_LOG_LEVEL"       envDefault:"info"`
	LogFormat     string        `env:"BIZDASH_LOG_FORMAT"      envDefault:"json"`
	SeedLayout    bool          `env:"BIZDASH_SEED_LAYOUT"     envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads optional dotenv files (existing variables win) and parses the
// environment into a validated Config.
func Load(dotenvFiles ...string) (Config, error) {
	for _, path := range dotenvFiles {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: BIZDASH_ADDR is required")
	}
	if c.ChartCacheTTL < 0 {
		return errors.New("config: BIZDASH_CHART_CACHE_TTL must not be negative")
	}
	if c.LedgerAPIKey != "" && c.LedgerURL == "" {
		return errors.New("config: BIZDASH_LEDGER_API_KEY requires BIZDASH_LEDGER_URL")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.LogFormat)
	}
	return nil
}

// UseLedger reports whether finance data comes from a remote ledger.
func (c Config) UseLedger() bool {
	return strings.TrimSpace(c.LedgerURL) != ""
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", level)
	}
}
