// Package config loads and validates the service configuration. The file is
// YAML with environment-variable expansion; a .env file, when present, fills
// process environment gaps first. The acquisition budget caps are not here:
// they are fixed policy, compiled into internal/acquire.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
)

// Config is the full service configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Events     EventsConfig     `yaml:"events"`
	EventStore EventStoreConfig `yaml:"eventstore"`
}

// LoggingConfig selects the slog handler and level.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DaemonConfig configures the HTTP daemon (serve command).
type DaemonConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// RequestTimeoutSeconds bounds one acquisition triggered over HTTP.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// HistorySize bounds the in-memory acquisition history projection.
	HistorySize int `yaml:"history_size"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EventsConfig configures NATS acquisition-event publishing. Disabled by
// default; when enabled the daemon fails at startup if it cannot connect.
type EventsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// EventStoreConfig configures acquisition attempt history. The store holds
// metadata only; bundle content is never persisted.
type EventStoreConfig struct {
	// Path is the SQLite database path; ":memory:" keeps history for the
	// process lifetime only. Empty disables history.
	Path string `yaml:"path"`
}

// Load reads, expands and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).
				Build()
		}
		return nil, errors.ConfigError("could not read configuration file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.ConfigError("could not parse configuration file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Logging.Level = string(NormalizeLogLevel(c.Logging.Level))
	c.Logging.Format = string(NormalizeLogFormat(c.Logging.Format))
	if c.Daemon.Host == "" {
		c.Daemon.Host = "0.0.0.0"
	}
	if c.Daemon.Port == 0 {
		c.Daemon.Port = 8474
	}
	if c.Daemon.RequestTimeoutSeconds == 0 {
		c.Daemon.RequestTimeoutSeconds = 120
	}
	if c.Daemon.HistorySize == 0 {
		c.Daemon.HistorySize = 100
	}
	if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = "sourcebundle.acquisition"
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Daemon.Port < 1 || c.Daemon.Port > 65535 {
		return errors.ValidationError("daemon port out of range").
			WithContext("port", c.Daemon.Port).
			Build()
	}
	if c.Daemon.RequestTimeoutSeconds < 1 {
		return errors.ValidationError("request timeout must be at least one second").
			WithContext("request_timeout_seconds", c.Daemon.RequestTimeoutSeconds).
			Build()
	}
	if c.Daemon.HistorySize < 1 {
		return errors.ValidationError("history size must be positive").
			WithContext("history_size", c.Daemon.HistorySize).
			Build()
	}
	if c.Events.Enabled && c.Events.URL == "" {
		return errors.ValidationError("events enabled but no NATS URL configured").
			Build()
	}
	return nil
}
