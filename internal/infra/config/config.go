package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	DefaultDaysIntoFuture = 7
	DefaultWorkers        = 4
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	UpstreamURL    string
	ScheduleFile   string
	DatabaseURL    string
	TimezoneOffset float64 // hours; only needed when the host zone differs from the schedule's
	WebhookURLs    []string
	WebhookFiles   []string
	DaysIntoFuture int
	Workers        int
	Output         string // empty means stdout
	RegenerateSpec string // cron spec; empty means a single run
	WatchWebhooks  bool
	LogLevel       string
	Environment    string
}

// Load reads configuration from environment variables and .env file (if present).
// Command-line flags are layered on top by the caller.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{
		UpstreamURL:    os.Getenv("BELL_UPSTREAM_URL"),
		ScheduleFile:   os.Getenv("BELL_SCHEDULE_FILE"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		WebhookURLs:    splitList(os.Getenv("WEBHOOK_URLS")),
		WebhookFiles:   splitList(os.Getenv("WEBHOOK_URL_FILES")),
		Output:         os.Getenv("CRONTAB_OUTPUT"),
		RegenerateSpec: strings.TrimSpace(os.Getenv("CRON_SPEC_REGENERATE")),
	}
	var err error

	if v := os.Getenv("TIMEZONE_OFFSET"); v != "" {
		cfg.TimezoneOffset, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE_OFFSET: %w", err)
		}
	}

	cfg.DaysIntoFuture = DefaultDaysIntoFuture
	if v := os.Getenv("DAYS_INTO_FUTURE"); v != "" {
		cfg.DaysIntoFuture, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DAYS_INTO_FUTURE: %w", err)
		}
	}

	cfg.Workers = DefaultWorkers
	if v := os.Getenv("GENERATOR_WORKERS"); v != "" {
		cfg.Workers, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid GENERATOR_WORKERS: %w", err)
		}
	}

	if v := os.Getenv("WATCH_WEBHOOK_FILES"); v != "" {
		cfg.WatchWebhooks, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WATCH_WEBHOOK_FILES: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

// Validate checks the merged configuration.
func (c *AppConfig) Validate() error {
	sources := 0
	for _, s := range []string{c.UpstreamURL, c.ScheduleFile, c.DatabaseURL} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of BELL_UPSTREAM_URL, BELL_SCHEDULE_FILE, DATABASE_URL must be set (got %d)", sources)
	}
	if c.DaysIntoFuture < 0 {
		return fmt.Errorf("days into future must not be negative, got %d", c.DaysIntoFuture)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.RegenerateSpec != "" {
		if _, err := cron.ParseStandard(c.RegenerateSpec); err != nil {
			return fmt.Errorf("invalid CRON_SPEC_REGENERATE %q: %w", c.RegenerateSpec, err)
		}
	}
	if c.WatchWebhooks && c.RegenerateSpec == "" {
		return fmt.Errorf("watching webhook files requires a regeneration schedule")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
