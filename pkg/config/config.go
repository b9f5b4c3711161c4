// Package config provides configuration for the exchange ledger.
// Values come from an optional YAML file plus environment variables
// (loaded from .env when present); the environment wins.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Ledger LedgerConfig `yaml:"ledger"`
	Report ReportConfig `yaml:"report"`
}

// AppConfig identifies the application instance.
type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Device  string `yaml:"device"`
	Debug   bool   `yaml:"debug"`
}

// LedgerConfig locates the data files.
type LedgerConfig struct {
	// DataDir is the root directory for all ledger data.
	DataDir string `yaml:"data_dir"`
	// DBPath overrides the default {DataDir}/ledger.db location.
	DBPath string `yaml:"db_path"`
	// SettingsPath overrides the default {DataDir}/settings.db location.
	SettingsPath string `yaml:"settings_path"`
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	Title      string   `yaml:"title"`
	Currencies []string `yaml:"currencies"`
}

// Load reads configuration. A .env file in the current directory is loaded
// if present; yamlPath (or the FX_LEDGER_CONFIG variable) names an optional
// YAML file; individual environment variables override both.
func Load(yamlPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    "fx-ledger",
			Version: "1.0.0",
		},
		Ledger: LedgerConfig{
			DataDir: defaultDataDir(),
		},
		Report: ReportConfig{
			Title:      "Exchange Statement",
			Currencies: []string{"CNY", "USDT"},
		},
	}

	if yamlPath == "" {
		yamlPath = os.Getenv("FX_LEDGER_CONFIG")
	}
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Ledger.DataDir == "" {
		return nil, fmt.Errorf("data directory is not configured")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FX_LEDGER_DATA_DIR"); v != "" {
		cfg.Ledger.DataDir = v
	}
	if v := os.Getenv("FX_LEDGER_DB_PATH"); v != "" {
		cfg.Ledger.DBPath = v
	}
	if v := os.Getenv("FX_LEDGER_SETTINGS_PATH"); v != "" {
		cfg.Ledger.SettingsPath = v
	}
	if v := os.Getenv("FX_LEDGER_DEVICE"); v != "" {
		cfg.App.Device = v
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.App.Debug = true
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fx-ledger"
	}
	return home + string(os.PathSeparator) + ".fx-ledger"
}
