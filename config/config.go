// Package config provides YAML configuration parsing for habitboard.
//
// This package enables running habitboard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Morning routine
//	port: 8080
//	timezone: Europe/Berlin
//	rollover_interval: 30s
//
//	log:
//	  level: info
//	  format: console
//
//	storage:
//	  driver: sqlite
//	  path: ${HOME}/.habitboard/habits.db
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/jpalmerr/habitboard/internal/store"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort             = 8080
	defaultRolloverInterval = 30 * time.Second
	defaultStoragePath      = "./habitboard-data"
	defaultNamespace        = "habitboard"
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"

	// minRolloverInterval keeps the day check from spinning.
	minRolloverInterval = time.Second
)

// Config is the root configuration structure for habitboard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML, or [Default] when
// running without a file.
type Config struct {
	// Title is the dashboard title. Defaults to "Habit Tracker" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// Timezone is the IANA zone that decides what "today" is.
	// Defaults to the local zone.
	Timezone string `yaml:"timezone"`

	// RolloverInterval is how often the current day is re-checked.
	// Defaults to 30s.
	RolloverInterval Duration `yaml:"rollover_interval"`

	// Log configures the CLI logger.
	Log LogConfig `yaml:"log"`

	// Storage selects where habits are persisted.
	Storage StorageConfig `yaml:"storage"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `yaml:"level"`

	// Format is console or json. Defaults to console.
	Format string `yaml:"format"`
}

// StorageConfig selects and parameterizes a storage backend.
type StorageConfig struct {
	// Driver is memory, file, sqlite, redis, or postgres. Defaults to file.
	Driver string `yaml:"driver"`

	// Path is the data directory (file) or database file (sqlite).
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Path string `yaml:"path"`

	// URL is the redis:// connection URL.
	// Supports environment variable substitution.
	URL string `yaml:"url"`

	// DSN is the postgres connection string.
	// Supports environment variable substitution.
	DSN string `yaml:"dsn"`

	// Namespace prefixes redis keys. Defaults to "habitboard".
	Namespace string `yaml:"namespace"`
}

// StoreConfig converts the storage section for [store.Open].
func (s StorageConfig) StoreConfig() store.Config {
	return store.Config{
		Driver:    s.Driver,
		Path:      s.Path,
		URL:       s.URL,
		DSN:       s.DSN,
		Namespace: s.Namespace,
	}
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed, or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Default returns the configuration used when no file is given: file
// storage in ./habitboard-data on port 8080.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the storage path, url, and dsn.
// Defaults are applied before validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.RolloverInterval == 0 {
		c.RolloverInterval = Duration(defaultRolloverInterval)
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = store.DriverFile
	}
	if c.Storage.Path == "" && (c.Storage.Driver == store.DriverFile || c.Storage.Driver == store.DriverSQLite) {
		c.Storage.Path = defaultStoragePath
		if c.Storage.Driver == store.DriverSQLite {
			c.Storage.Path += "/habits.db"
		}
	}
	if c.Storage.Namespace == "" {
		c.Storage.Namespace = defaultNamespace
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.RolloverInterval.Duration() < minRolloverInterval {
		return fmt.Errorf("rollover_interval must be at least %s, got %s", minRolloverInterval, c.RolloverInterval.Duration())
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("timezone: unknown zone %q: %w", c.Timezone, err)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}

	return c.Storage.expandAndValidate()
}

func (s *StorageConfig) expandAndValidate() error {
	for _, f := range []struct {
		name string
		val  *string
	}{
		{"path", &s.Path},
		{"url", &s.URL},
		{"dsn", &s.DSN},
	} {
		expanded, err := expandEnvVars(*f.val)
		if err != nil {
			return fmt.Errorf("storage.%s: %w", f.name, err)
		}
		*f.val = expanded
	}

	switch s.Driver {
	case store.DriverMemory:
	case store.DriverFile, store.DriverSQLite:
		if s.Path == "" {
			return fmt.Errorf("storage (%s): path is required", s.Driver)
		}
	case store.DriverRedis:
		if s.URL == "" {
			return fmt.Errorf("storage (%s): url is required", s.Driver)
		}
		if !strings.HasPrefix(s.URL, "redis://") && !strings.HasPrefix(s.URL, "rediss://") {
			return fmt.Errorf("storage (%s): url scheme must be redis or rediss", s.Driver)
		}
	case store.DriverPostgres:
		if s.DSN == "" {
			return fmt.Errorf("storage (%s): dsn is required", s.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be memory, file, sqlite, redis, or postgres, got %q", s.Driver)
	}

	return nil
}

// Location returns the configured time zone, or time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
