// Package config provides configuration management for decodechain using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8089
	defaultServerTimeout   = 15 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultInspectTimeout  = 2 * time.Second
	defaultInspectBinary   = "gst-inspect-1.0"
)

// Registry backends.
const (
	BackendAuto      = "auto"
	BackendGStreamer = "gstreamer"
	BackendInspect   = "inspect"
	BackendStatic    = "static"
)

// Config holds all configuration for the application.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source" yaml:"add_source"`
	TimeFormat string `mapstructure:"time_format" yaml:"time_format"`
}

// RegistryConfig selects how decoder presence is checked.
type RegistryConfig struct {
	// Backend is one of auto, gstreamer, inspect, static.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// InspectPath is the gst-inspect binary (empty = search env and PATH).
	InspectPath    string        `mapstructure:"inspect_path" yaml:"inspect_path"`
	InspectTimeout time.Duration `mapstructure:"inspect_timeout" yaml:"inspect_timeout"`
	// StaticElements are the element names reported present by the static backend.
	StaticElements []string `mapstructure:"static_elements" yaml:"static_elements"`
	// DenyElements are hidden from every backend, e.g. a hardware decoder
	// known to misbehave on this host.
	DenyElements []string `mapstructure:"deny_elements" yaml:"deny_elements"`
}

// ServerConfig holds HTTP diagnostics server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// WarmOnStart populates decoder availability before serving.
	WarmOnStart bool `mapstructure:"warm_on_start" yaml:"warm_on_start"`
}

// MetricsConfig holds Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with DECODECHAIN_ and use underscores for nesting.
// Example: DECODECHAIN_REGISTRY_BACKEND=static.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/decodechain")
		v.AddConfigPath("$HOME/.decodechain")
	}

	v.SetEnvPrefix("DECODECHAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Registry defaults
	v.SetDefault("registry.backend", BackendAuto)
	v.SetDefault("registry.inspect_path", "")
	v.SetDefault("registry.inspect_timeout", defaultInspectTimeout)
	v.SetDefault("registry.static_elements", []string{})
	v.SetDefault("registry.deny_elements", []string{})

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.warm_on_start", false)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	validBackends := map[string]bool{
		BackendAuto: true, BackendGStreamer: true, BackendInspect: true, BackendStatic: true,
	}
	if !validBackends[c.Registry.Backend] {
		return fmt.Errorf("registry.backend must be one of: auto, gstreamer, inspect, static")
	}
	if c.Registry.InspectTimeout <= 0 {
		return fmt.Errorf("registry.inspect_timeout must be positive")
	}

	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InspectBinary returns the configured gst-inspect binary name or path.
func (c *RegistryConfig) InspectBinary() string {
	if c.InspectPath != "" {
		return c.InspectPath
	}
	return defaultInspectBinary
}
