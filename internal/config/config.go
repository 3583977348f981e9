// Package config handles configuration loading from YAML files and
// environment variables. Precedence: environment variables > config file >
// defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gpumon-app/agent/internal/chart"
)

// Duration is a wrapper around time.Duration that supports YAML
// unmarshaling from human-readable strings like "500ms", "1s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all monitor configuration.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling"`
	Devices  DevicesConfig  `yaml:"devices"`
	Chart    chart.Theme    `yaml:"chart"`
	Server   ServerConfig   `yaml:"server"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SamplingConfig holds the tick engine settings.
type SamplingConfig struct {
	// Interval between ticks; one shared interval drives every series.
	Interval Duration `yaml:"interval"`
	// History is the per-series buffer capacity in samples.
	History int `yaml:"history"`
	// ReadTimeout bounds each source read inside a tick.
	ReadTimeout Duration `yaml:"read_timeout"`
}

// DevicesConfig holds device discovery settings.
type DevicesConfig struct {
	// BasePath is the directory scanned for cardN entries.
	BasePath string `yaml:"base_path"`
	// DiskMount is the mount point sampled by the disk series.
	DiskMount string `yaml:"disk_mount"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// ExportConfig holds the optional push-exporter settings.
type ExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Interval:    Duration{1 * time.Second},
			History:     60,
			ReadTimeout: Duration{2 * time.Second},
		},
		Devices: DevicesConfig{
			BasePath:  "/sys/class/drm",
			DiskMount: "/",
		},
		Chart: chart.DefaultTheme(),
		Server: ServerConfig{
			Listen: "127.0.0.1:9182",
		},
		Export: ExportConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges
// with defaults. Environment variables take highest precedence.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and
// environment variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// Locate searches standard config file paths and returns the first one
// found. Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables have the highest precedence.
func applyEnvOverrides(cfg *Config) {
	if listen := os.Getenv("GM_LISTEN"); listen != "" {
		cfg.Server.Listen = listen
	}
	if level := os.Getenv("GM_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if url := os.Getenv("GM_EXPORT_URL"); url != "" {
		cfg.Export.URL = url
	}
	if token := os.Getenv("GM_EXPORT_TOKEN"); token != "" {
		cfg.Export.Token = token
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Sampling.Interval.Duration <= 0 {
		return fmt.Errorf("sampling interval must be positive")
	}
	if c.Sampling.History < 2 {
		return fmt.Errorf("sampling history must be at least 2 samples, got %d", c.Sampling.History)
	}
	if c.Sampling.ReadTimeout.Duration <= 0 {
		return fmt.Errorf("sampling read timeout must be positive")
	}
	if c.Devices.BasePath == "" {
		return fmt.Errorf("devices base path is required")
	}
	if err := c.Chart.Validate(); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server listen address is required")
	}
	if c.Export.Enabled && c.Export.URL == "" {
		return fmt.Errorf("export URL is required when export is enabled")
	}
	return nil
}
