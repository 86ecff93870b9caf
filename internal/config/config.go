// Package config provides configuration management for the backtester.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DataConfig holds option chain data source configuration.
type DataConfig struct {
	// CSVPath is the default chain file used when the CLI is not given one.
	CSVPath string `mapstructure:"csv_path"`
	// CachePath is the sqlite quote cache location.
	CachePath string `mapstructure:"cache_path"`
	// StartDate/EndDate trim loaded expirations, inclusive ("2006-01-02").
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`
	// HasDelta/HasVolume declare which optional columns the CSV carries.
	HasDelta  bool `mapstructure:"has_delta"`
	HasVolume bool `mapstructure:"has_volume"`
}

// BacktestConfig holds the default strategy parameters. Zero values fall
// back to the engine defaults.
type BacktestConfig struct {
	DTEInterval     int     `mapstructure:"dte_interval"`
	MaxEntryDTE     int     `mapstructure:"max_entry_dte"`
	ExitDTE         int     `mapstructure:"exit_dte"`
	OTMPctInterval  float64 `mapstructure:"otm_pct_interval"`
	MaxOTMPct       float64 `mapstructure:"max_otm_pct"`
	MinBidAsk       float64 `mapstructure:"min_bid_ask"`
	Slippage        string  `mapstructure:"slippage"`
	FillRatio       float64 `mapstructure:"fill_ratio"`
	ReferenceVolume int     `mapstructure:"reference_volume"`
	Raw             bool    `mapstructure:"raw"`
}

// CalendarConfig holds the entry DTE windows for calendar and diagonal
// spreads.
type CalendarConfig struct {
	FrontDTEMin int `mapstructure:"front_dte_min"`
	FrontDTEMax int `mapstructure:"front_dte_max"`
	BackDTEMin  int `mapstructure:"back_dte_min"`
	BackDTEMax  int `mapstructure:"back_dte_max"`
	ExitDTE     int `mapstructure:"exit_dte"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// UIConfig holds output formatting configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-backtester"
	}
	return filepath.Join(home, ".config", "options-backtester")
}

// Load loads configuration from the specified directory. If configDir is
// empty, uses the default config directory. A missing config file is not an
// error: a template is written and defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("data.cache_path", filepath.Join(configDir, "quotes.db"))

	v.SetDefault("backtest.dte_interval", 7)
	v.SetDefault("backtest.max_entry_dte", 90)
	v.SetDefault("backtest.exit_dte", 0)
	v.SetDefault("backtest.otm_pct_interval", 0.05)
	v.SetDefault("backtest.max_otm_pct", 0.5)
	v.SetDefault("backtest.min_bid_ask", 0.05)
	v.SetDefault("backtest.slippage", "mid")
	v.SetDefault("backtest.fill_ratio", 0.5)
	v.SetDefault("backtest.reference_volume", 1000)

	v.SetDefault("calendar.front_dte_min", 20)
	v.SetDefault("calendar.front_dte_max", 40)
	v.SetDefault("calendar.back_dte_min", 50)
	v.SetDefault("calendar.back_dte_max", 90)
	v.SetDefault("calendar.exit_dte", 7)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "backtester.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BACKTESTER_DATA_CSV"); v != "" {
		cfg.Data.CSVPath = v
	}
	if v := os.Getenv("BACKTESTER_CACHE_DB"); v != "" {
		cfg.Data.CachePath = v
	}
	if v := os.Getenv("BACKTESTER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Backtest.Slippage {
	case "", "mid", "spread", "liquidity":
	default:
		return fmt.Errorf("invalid slippage mode: %s (must be 'mid', 'spread', or 'liquidity')", c.Backtest.Slippage)
	}
	if c.Backtest.FillRatio < 0 || c.Backtest.FillRatio > 1 {
		return fmt.Errorf("fill_ratio must be between 0 and 1")
	}
	if c.Backtest.MaxEntryDTE < 0 || c.Backtest.ExitDTE < 0 {
		return fmt.Errorf("DTE settings must be non-negative")
	}
	if c.Calendar.FrontDTEMax >= c.Calendar.BackDTEMin {
		return fmt.Errorf("calendar front_dte_max must be < back_dte_min")
	}
	if c.Backtest.Slippage == "liquidity" && !c.Data.HasVolume {
		return fmt.Errorf("liquidity slippage requires has_volume data")
	}
	return nil
}
