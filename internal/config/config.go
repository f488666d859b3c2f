package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Lumos-Labs-HQ/execseed/internal/database"
	"github.com/spf13/viper"
)

var ErrMissingDatabaseURL = errors.New("database URL not set")

var supportedProviders = []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}

type Config struct {
	Database    Database `json:"database" mapstructure:"database"`
	Seed        Seed     `json:"seed" mapstructure:"seed"`
	Log         Log      `json:"log" mapstructure:"log"`
	MetricsFile string   `json:"metrics_file,omitempty" mapstructure:"metrics_file"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
	Table    string `json:"table" mapstructure:"table"`
}

// Seed controls how many records a run generates. Proposers is the total
// number of proposer configs; the first BoundProposers of them reference
// default configs.
type Seed struct {
	Defaults       int   `json:"defaults" mapstructure:"defaults"`
	BoundProposers int   `json:"bound_proposers" mapstructure:"bound_proposers"`
	Proposers      int   `json:"proposers" mapstructure:"proposers"`
	Seed           int64 `json:"seed,omitempty" mapstructure:"seed"` // 0 = time based
}

type Log struct {
	Level string `json:"level" mapstructure:"level"`
	JSON  bool   `json:"json,omitempty" mapstructure:"json"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Database: Database{
			Provider: "postgresql",
			URLEnv:   "DATABASE_URL",
			Table:    "execution_configs",
		},
		Seed: Seed{
			Defaults:       10,
			BoundProposers: 20,
			Proposers:      100000,
		},
		Log: Log{Level: "info"},
	}
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	def := Default()
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = def.Database.Provider
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = def.Database.URLEnv
	}
	if cfg.Database.Table == "" {
		cfg.Database.Table = def.Database.Table
	}
	if !viper.IsSet("seed.defaults") {
		cfg.Seed.Defaults = def.Seed.Defaults
	}
	if !viper.IsSet("seed.bound_proposers") {
		cfg.Seed.BoundProposers = def.Seed.BoundProposers
	}
	if !viper.IsSet("seed.proposers") {
		cfg.Seed.Proposers = def.Seed.Proposers
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if !database.IsValidIdentifier(c.Database.Table) {
		return fmt.Errorf("invalid table name: %q", c.Database.Table)
	}

	if c.Seed.Defaults < 0 || c.Seed.BoundProposers < 0 || c.Seed.Proposers < 0 {
		return fmt.Errorf("seed counts cannot be negative")
	}

	if c.Seed.BoundProposers > c.Seed.Proposers {
		return fmt.Errorf("bound_proposers (%d) cannot exceed proposers (%d)", c.Seed.BoundProposers, c.Seed.Proposers)
	}

	return nil
}

// GetDatabaseURL reads the connection string from the configured environment
// variable and checks that the provider's driver can parse it.
func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := strings.TrimSpace(os.Getenv(c.Database.URLEnv))
	if dbURL == "" {
		return "", fmt.Errorf("%w: environment variable %s is empty", ErrMissingDatabaseURL, c.Database.URLEnv)
	}

	if err := database.ValidateURL(c.Database.Provider, dbURL); err != nil {
		return "", err
	}

	return dbURL, nil
}

func (c *Config) ProviderName() string {
	return normalizeProvider(c.Database.Provider)
}

func normalizeProvider(provider string) string {
	switch provider {
	case "postgresql", "postgres":
		return "postgresql"
	case "mysql":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return "postgresql"
	}
}
