package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/fvgtrader/config"
	"github.com/rustyeddy/fvgtrader/feed"
	"github.com/rustyeddy/fvgtrader/market"
	"github.com/rustyeddy/fvgtrader/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live detection loop against a Bybit kline stream",
	Long: `Run the engine against the Bybit public kline websocket, trading the
symbol and interval from the configuration file.

Secrets are read from the environment (a .env file is loaded if present):
TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID for the Telegram notifier.

Example:
  fvgtrader run --config fvgtrader.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger()

	j, err := buildJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	n, err := buildNotifier(cfg.Notify)
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg, j, n, log)
	if err != nil {
		return err
	}

	src, err := feed.NewBybit(feed.Config{
		URL:      cfg.Feed.URL,
		Symbol:   cfg.Strategy.Symbol,
		Interval: cfg.Strategy.Interval,
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("serving metrics")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	candles := make(chan market.Candle, 64)
	go func() {
		if err := src.Run(ctx, candles); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("feed stopped")
		}
	}()

	log.Info().
		Str("symbol", cfg.Strategy.Symbol).
		Str("interval", cfg.Strategy.Interval).
		Float64("balance", cfg.Account.Balance).
		Msg("engine starting")

	if err := eng.Run(ctx, candles); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("engine: %w", err)
	}

	printSummary(eng.Snapshot(), cfg.Account.Balance)
	return nil
}
