package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-history-harvester/internal/domain"
)

// Pacing modes.
const (
	PaceFixed   = "fixed"
	PaceBackoff = "backoff"
)

// DefaultTargetURL is the daily history page for Songkhla (VTSH).
const DefaultTargetURL = "https://www.wunderground.com/history/daily/th/mueang-songkhla/VTSH"

// Config holds all harvester settings, populated from environment variables.
type Config struct {
	TargetURL  string
	Range      domain.DateRange
	OutputPath string

	WaitTimeout  time.Duration
	PaceMode     string
	PaceDelay    time.Duration
	PaceMaxDelay time.Duration

	BrowserHeadless bool
	ChromePath      string

	HTTPEnabled     bool
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional fan-out sinks; empty disables them.
	KafkaBrokers []string
	KafkaTopic   string
	SQLitePath   string
}

// Load reads an optional .env file and then the environment, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	rng, err := domain.ParseDateRange(
		sharedcfg.EnvOrDefault("START_DATE", "2024-01-01"),
		sharedcfg.EnvOrDefault("END_DATE", "2024-12-31"),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid START_DATE/END_DATE: %w", err)
	}

	waitTimeout, err := parsePositiveDuration("WAIT_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	paceDelay, err := parseDuration("PACE_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	paceMaxDelay, err := parseDuration("PACE_MAX_DELAY", "30s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TargetURL:  sharedcfg.EnvOrDefault("TARGET_URL", DefaultTargetURL),
		Range:      rng,
		OutputPath: sharedcfg.EnvOrDefault("OUTPUT_PATH", "songkhla_weather_2024.csv"),

		WaitTimeout:  waitTimeout,
		PaceMode:     strings.ToLower(sharedcfg.EnvOrDefault("PACE_MODE", PaceFixed)),
		PaceDelay:    paceDelay,
		PaceMaxDelay: paceMaxDelay,

		BrowserHeadless: sharedcfg.EnvOrDefault("BROWSER_HEADLESS", "true") == "true",
		ChromePath:      os.Getenv("CHROME_PATH"),

		HTTPEnabled:     sharedcfg.EnvOrDefault("HTTP_ENABLED", "true") == "true",
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaTopic: sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-observations"),
		SQLitePath: os.Getenv("SQLITE_PATH"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints. It is also called after CLI flag overrides.
func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return errors.New("TARGET_URL is required")
	}
	if c.OutputPath == "" {
		return errors.New("OUTPUT_PATH is required")
	}
	if c.PaceMode != PaceFixed && c.PaceMode != PaceBackoff {
		return fmt.Errorf("invalid PACE_MODE %q: want %q or %q", c.PaceMode, PaceFixed, PaceBackoff)
	}
	if c.PaceMode == PaceBackoff && c.PaceMaxDelay < c.PaceDelay {
		return errors.New("PACE_MAX_DELAY must not be less than PACE_DELAY")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// ApplyOverrides replaces the date range and output path with non-empty
// command-line values and re-validates.
func (c *Config) ApplyOverrides(start, end, out string) error {
	if start != "" || end != "" {
		if start == "" {
			start = c.Range.Start.Format(domain.DateLayout)
		}
		if end == "" {
			end = c.Range.End.Format(domain.DateLayout)
		}
		rng, err := domain.ParseDateRange(start, end)
		if err != nil {
			return fmt.Errorf("invalid -start/-end: %w", err)
		}
		c.Range = rng
	}
	if out != "" {
		c.OutputPath = out
	}
	return c.Validate()
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
