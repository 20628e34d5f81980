package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fvgtrader",
	Short: "A fair-value-gap detection and risk-gated trading engine",
	Long: `fvgtrader watches a single instrument for fair value gaps (imbalance
zones), confirms breakouts through them and turns confirmed breakouts
into risk-gated positions with staged exits.

It provides tools for:
  - Live detection on Bybit kline streams
  - Replaying historical candles from CSV through the same engine
  - Account-level risk limits: daily loss budget and equity floor
  - Trade journaling to CSV or SQLite
  - Telegram notifications and Prometheus metrics`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
