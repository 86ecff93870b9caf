package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Backtester Configuration

[data]
# Default option chain CSV file
csv_path = ""
# SQLite quote cache location (empty for default)
cache_path = ""
# Trim loaded expirations to this inclusive window (YYYY-MM-DD, empty for none)
start_date = ""
end_date = ""
# Optional columns present in the CSV
has_delta = false
has_volume = false

[backtest]
# DTE bucket width for grouped output
dte_interval = 7
# Maximum days-to-expiration at entry
max_entry_dte = 90
# Days-to-expiration at which positions exit (0 = hold to expiration)
exit_dte = 0
# OTM percentage bucket width
otm_pct_interval = 0.05
# Maximum OTM percentage considered
max_otm_pct = 0.5
# Minimum bid/ask spread at entry
min_bid_ask = 0.05
# Fill price model: "mid", "spread", or "liquidity"
slippage = "mid"
# Base fill ratio for liquidity mode (0.0 - 1.0)
fill_ratio = 0.5
# Volume at which an option counts as fully liquid
reference_volume = 1000
# Emit per-trade rows instead of grouped statistics
raw = false

[calendar]
# Entry DTE window of the front leg
front_dte_min = 20
front_dte_max = 40
# Entry DTE window of the back leg
back_dte_min = 50
back_dte_max = 90
# Exit when the front leg reaches this DTE
exit_dte = 7

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to console
console = true
# Log to rotating file
file = true
# Log file path (empty for default)
file_path = ""

[ui]
# Enable colored output
color_enabled = true
# Date format for tables
date_format = "2006-01-02"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
