// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

// RulesConfig tunes the rule engine: the promotion lead-time window, the
// cron schedule of the expired-rule sweeper, and the timezone assumed for
// facilities that have none configured.
type RulesConfig struct {
	MinLeadDays     int    `yaml:"min_lead_days"`
	SweepCron       string `yaml:"sweep_cron"`
	DefaultTimezone string `yaml:"default_timezone"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Rules RulesConfig `yaml:"rules"`

	Features struct {
		EnableDebug bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration.
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Rules.MinLeadDays == 0 {
		c.Rules.MinLeadDays = 7
	}
	if c.Rules.SweepCron == "" {
		c.Rules.SweepCron = "0 3 * * *"
	}
	if c.Rules.DefaultTimezone == "" {
		c.Rules.DefaultTimezone = "America/Santiago"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Rules.MinLeadDays < 0 {
		return fmt.Errorf("rules min_lead_days must not be negative")
	}
	if _, err := time.LoadLocation(c.Rules.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid rules default_timezone: %w", err)
	}

	return nil
}
