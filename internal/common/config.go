package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultRetentionRevisions is the number of datapoint revisions kept per
// (source, key) when retention is not configured.
const DefaultRetentionRevisions = 5

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Providers   ProvidersConfig `toml:"providers"`
	Refresh     RefreshConfig   `toml:"refresh"`
	Retention   RetentionConfig `toml:"retention"`
	Secrets     SecretsConfig   `toml:"secrets"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
	GCInterval     string `toml:"gc_interval"`      // Value log GC interval, e.g. "10m" (empty = disabled)
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// ProvidersConfig contains settings shared by all provider adapters
type ProvidersConfig struct {
	Timeout   string `toml:"timeout"`    // Per-request timeout, e.g. "10s"
	RateLimit int    `toml:"rate_limit"` // Requests per second per adapter
}

// RefreshConfig controls the periodic refresh sweep
type RefreshConfig struct {
	Enabled     bool   `toml:"enabled"`
	Schedule    string `toml:"schedule"`    // Cron expression, e.g. "*/5 * * * *"
	Concurrency int    `toml:"concurrency"` // Max sources refreshed in parallel
}

// RetentionConfig bounds the append-only datapoint history
type RetentionConfig struct {
	Revisions int `toml:"revisions"` // Datapoints kept per (source, key)
}

// SecretsConfig configures API key encryption at rest
type SecretsConfig struct {
	Key string `toml:"key"` // Encryption key; FOLIO_SECRETS_KEY overrides
}

// DefaultConfig returns the configuration defaults applied before any file
// or environment override.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:       "./data/folio",
				GCInterval: "10m",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Providers: ProvidersConfig{
			Timeout:   "10s",
			RateLimit: 10,
		},
		Refresh: RefreshConfig{
			Enabled:     true,
			Schedule:    "*/5 * * * *",
			Concurrency: 4,
		},
		Retention: RetentionConfig{
			Revisions: DefaultRetentionRevisions,
		},
	}
}

// LoadFromFiles loads configuration in priority order: defaults, then each
// file in sequence (later files override earlier ones), then environment
// variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies FOLIO_* environment variables on top of file
// configuration.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FOLIO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("FOLIO_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("FOLIO_DATA_DIR"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("FOLIO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("FOLIO_SECRETS_KEY"); v != "" {
		config.Secrets.Key = v
	}
}

// Validate checks configuration values that would otherwise fail deep inside
// a service at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if _, err := c.ProviderTimeout(); err != nil {
		return err
	}
	if c.Refresh.Concurrency < 1 {
		c.Refresh.Concurrency = 1
	}
	if c.Retention.Revisions < 1 {
		c.Retention.Revisions = 1
	}
	return nil
}

// ProviderTimeout parses the configured adapter timeout.
func (c *Config) ProviderTimeout() (time.Duration, error) {
	if c.Providers.Timeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Providers.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid providers.timeout %q: %w", c.Providers.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("providers.timeout must be positive")
	}
	return d, nil
}

// BadgerGCInterval parses the value log GC interval; zero means disabled.
func (c *Config) BadgerGCInterval() time.Duration {
	if c.Storage.Badger.GCInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Storage.Badger.GCInterval)
	if err != nil {
		return 0
	}
	return d
}
