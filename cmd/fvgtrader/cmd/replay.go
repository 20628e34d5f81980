package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fvgtrader/config"
	"github.com/rustyeddy/fvgtrader/engine"
	"github.com/rustyeddy/fvgtrader/feed"
	"github.com/rustyeddy/fvgtrader/market"
	"github.com/rustyeddy/fvgtrader/notify"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay historical candles from CSV through the engine",
	Long: `Replay a CSV file of candles (time,open,high,low,close,volume) through
the full detection and risk pipeline. Any position still open at the end
of the file is force-closed at the last close.

Example:
  fvgtrader replay --config fvgtrader.yaml --candles data/btcusdt-5m.csv`,
	RunE: runReplay,
}

var (
	replayConfigPath  string
	replayCandlesPath string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayConfigPath, "config", "f", "", "path to config file (required)")
	replayCmd.Flags().StringVarP(&replayCandlesPath, "candles", "c", "", "CSV file of candles (required)")
	replayCmd.MarkFlagRequired("config")
	replayCmd.MarkFlagRequired("candles")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(replayConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger()

	j, err := buildJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	// Replays never notify.
	eng, err := buildEngine(cfg, j, notify.Noop{}, log)
	if err != nil {
		return err
	}

	fmt.Printf("Replaying candles from: %s\n", replayCandlesPath)

	ctx := context.Background()
	candles := make(chan market.Candle, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- feed.NewCSV(replayCandlesPath).Run(ctx, candles)
	}()

	if err := eng.Run(ctx, candles); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("replay error: %w", err)
	}

	fmt.Printf("\nReplay complete!\n")
	printSummary(eng.Snapshot(), cfg.Account.Balance)

	if cfg.Journal.Type == "csv" {
		fmt.Printf("\nResults saved to:\n  - %s\n  - %s\n", cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	} else if cfg.Journal.Type == "sqlite" {
		fmt.Printf("\nResults saved to: %s\n", cfg.Journal.DBPath)
	}
	return nil
}

func printSummary(snap engine.Snapshot, balance float64) {
	fmt.Printf("  Balance: $%.2f\n", snap.Risk.AccountBalance)
	fmt.Printf("  Equity: $%.2f\n", snap.Risk.CurrentEquity)
	fmt.Printf("  Profit/Loss: $%.2f\n", snap.Risk.CurrentEquity-balance)
	fmt.Printf("  Trades today: %d (%d wins)\n", snap.Risk.TradesToday, snap.Risk.WinsToday)
	if !snap.Risk.TradingEnabled {
		fmt.Println("  Trading halted by risk limits")
	}
}
