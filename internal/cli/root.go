// Package cli provides the command-line interface for the backtester.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-backtester/internal/config"
	"options-backtester/internal/logging"
	"options-backtester/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-01-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Data.CachePath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize quote cache, caching disabled")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Data.CachePath).Msg("SQLite quote cache initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "backtester",
		Short: "Options strategy backtester",
		Long: `Backtester evaluates options strategies against historical end-of-day
option chain data.

It supports thirty multi-leg strategies (calls, puts, straddles, strangles,
vertical spreads, butterflies, iron condors, calendars and diagonals),
aggregated profit statistics by entry time and moneyness, and chronological
trade simulation with position limits.

Use 'backtester help <command>' for more information about a command.
Use 'backtester examples' to see common workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-backtester)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addRunCommands(rootCmd, app)
	addSimulateCommands(rootCmd, app)
	addStrategyCommands(rootCmd, app)
	addHelpCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Options Backtester v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Data Configuration")
	output.Printf("  CSV Path:        %s\n", cfg.Data.CSVPath)
	output.Printf("  Cache Path:      %s\n", cfg.Data.CachePath)
	output.Printf("  Has Delta:       %v\n", cfg.Data.HasDelta)
	output.Printf("  Has Volume:      %v\n", cfg.Data.HasVolume)
	output.Println()

	output.Bold("Backtest Defaults")
	output.Printf("  DTE Interval:    %d\n", cfg.Backtest.DTEInterval)
	output.Printf("  Max Entry DTE:   %d\n", cfg.Backtest.MaxEntryDTE)
	output.Printf("  Exit DTE:        %d\n", cfg.Backtest.ExitDTE)
	output.Printf("  OTM%% Interval:   %.2f\n", cfg.Backtest.OTMPctInterval)
	output.Printf("  Max OTM%%:        %.2f\n", cfg.Backtest.MaxOTMPct)
	output.Printf("  Min Bid/Ask:     %.2f\n", cfg.Backtest.MinBidAsk)
	output.Printf("  Slippage:        %s\n", cfg.Backtest.Slippage)
	output.Printf("  Fill Ratio:      %.2f\n", cfg.Backtest.FillRatio)
	output.Printf("  Ref Volume:      %d\n", cfg.Backtest.ReferenceVolume)
	output.Println()

	output.Bold("Calendar Defaults")
	output.Printf("  Front DTE:       %d-%d\n", cfg.Calendar.FrontDTEMin, cfg.Calendar.FrontDTEMax)
	output.Printf("  Back DTE:        %d-%d\n", cfg.Calendar.BackDTEMin, cfg.Calendar.BackDTEMax)
	output.Printf("  Exit DTE:        %d\n", cfg.Calendar.ExitDTE)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  Console:         %v\n", cfg.Logging.Console)
	output.Printf("  File:            %v\n", cfg.Logging.File)

	return nil
}
