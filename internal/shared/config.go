package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Gateway  GatewayConfig  `toml:"gateway"`
	Auth     AuthConfig     `toml:"auth"`
	Mix      MixConfig      `toml:"mix"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// GatewayConfig locates the mix backend.
type GatewayConfig struct {
	BaseURL  string `toml:"base_url"`
	APIToken string `toml:"api_token"`
}

// AuthConfig contains defaults for the authorization stage.
type AuthConfig struct {
	DefaultMode  string `toml:"default_mode"`
	CallbackAddr string `toml:"callback_addr"`
}

// MixConfig contains defaults for the source stage and export.
type MixConfig struct {
	DefaultMinutes float64 `toml:"default_minutes"`
	ExportPath     string  `toml:"export_path"`
}

// PipelineConfig controls pacing of feature lookups.
type PipelineConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig describes the rotating log file used while the TUI owns the terminal.
type LogConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks values the workflow cannot recover from at runtime.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Gateway.BaseURL) == "" {
		return fmt.Errorf("%w: gateway.base_url is empty", ErrInvalidConfig)
	}
	switch c.Auth.DefaultMode {
	case "user", "client":
	default:
		return fmt.Errorf("%w: auth.default_mode must be \"user\" or \"client\", got %q", ErrInvalidConfig, c.Auth.DefaultMode)
	}
	if c.Pipeline.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: pipeline.requests_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
