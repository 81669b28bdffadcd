package config

import (
	"fmt"
	"os"

	"github.com/GonzalezFJR/geiger/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Defaults applied before the YAML file is read.
const (
	DefaultMaxDeltas = 2000
	DefaultMaxSeries = 3600 // one hour of one-second bins
	DefaultMockRate  = 5.0
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal over the defaults
	modelConfig := defaults()
	if err := yaml.Unmarshal(data, modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: modelConfig}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func defaults() *models.MConfig {
	return &models.MConfig{
		Name:     "geiger",
		Host:     "0.0.0.0",
		Port:     8000,
		LogLevel: "INFO",
		Source: models.MSourceConfig{
			Chip:     "gpiochip0",
			Pin:      18,
			MockRate: DefaultMockRate,
		},
		Counter: models.MCounterConfig{
			MaxDeltas: DefaultMaxDeltas,
			MaxSeries: DefaultMaxSeries,
		},
		Storage: models.MStorageConfig{
			DBType:        "none",
			RetentionDays: 7,
		},
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d", c.Port)
	}

	// Validate Source configuration
	if c.Source.Chip == "" {
		return fmt.Errorf("source chip cannot be empty")
	}
	if c.Source.Pin < 0 {
		return fmt.Errorf("source pin cannot be negative: %d", c.Source.Pin)
	}
	if c.Source.MockRate <= 0 {
		return fmt.Errorf("mock rate must be greater than 0: %f", c.Source.MockRate)
	}

	// Validate Counter configuration
	if c.Counter.MaxDeltas <= 0 {
		return fmt.Errorf("max_deltas must be greater than 0: %d", c.Counter.MaxDeltas)
	}
	if c.Counter.MaxSeries <= 0 {
		return fmt.Errorf("max_series must be greater than 0: %d", c.Counter.MaxSeries)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported db_type: %s", c.Storage.DBType)
	}
	if c.Storage.DBType != "none" && c.Storage.RetentionDays <= 0 {
		return fmt.Errorf("retention days must be greater than 0: %d", c.Storage.RetentionDays)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
