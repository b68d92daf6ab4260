package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level closebooks.yaml configuration.
type Config struct {
	Company  CompanyConfig  `yaml:"company"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CompanyConfig identifies the company whose books these are.
type CompanyConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// CompanyID parses the configured company id.
func (c CompanyConfig) CompanyID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid company id %q: %w", c.ID, err)
	}
	return id, nil
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
}

// DatabaseConfig names the environment variable holding the database URL,
// so the URL itself never lands in a config file.
type DatabaseConfig struct {
	URLEnv string `yaml:"url_env"`
}

// URL reads the database URL from the configured environment variable.
func (d DatabaseConfig) URL() string {
	env := d.URLEnv
	if env == "" {
		env = "DATABASE_URL"
	}
	return os.Getenv(env)
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Build constructs the logger described by the config.
func (l LoggingConfig) Build() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if l.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	if l.Level != "" {
		level, err := zap.ParseAtomicLevel(l.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", l.Level, err)
		}
		cfg.Level = level
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Load reads a closebooks.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new company.
func Default(companyName string) *Config {
	return &Config{
		Company: CompanyConfig{
			ID:   uuid.NewString(),
			Name: companyName,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Database: DatabaseConfig{
			URLEnv: "DATABASE_URL",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
