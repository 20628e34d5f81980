package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/fvgtrader/config"
	"github.com/rustyeddy/fvgtrader/engine"
	"github.com/rustyeddy/fvgtrader/fvg"
	"github.com/rustyeddy/fvgtrader/journal"
	"github.com/rustyeddy/fvgtrader/notify"
)

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
}

func buildJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return journal.Noop{}, nil
	}
}

// buildNotifier reads the Telegram credentials from the environment so
// they never land in config files.
func buildNotifier(cfg config.NotifyConfig) (notify.Notifier, error) {
	if cfg.Type != "telegram" {
		return notify.Noop{}, nil
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		return nil, fmt.Errorf("telegram notifier needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}
	return notify.NewTelegramSender(token, chatID), nil
}

func buildEngine(cfg *config.Config, j journal.Journal, n notify.Notifier, log zerolog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Options{
		Symbol: cfg.Strategy.Symbol,
		Detector: fvg.DetectorConfig{
			MinGapPct: cfg.Strategy.MinGapPct,
			VolMult:   cfg.Strategy.VolMult,
			VolPeriod: cfg.Strategy.VolPeriod,
		},
		Exits:      cfg.Strategy.Exits,
		Policy:     cfg.Policy(),
		Balance:    cfg.Account.Balance,
		ATRPeriod:  cfg.Strategy.ATRPeriod,
		ExpiryBars: cfg.Strategy.ExpiryBars,
		BiasFilter: cfg.Strategy.BiasFilter,
		Journal:    j,
		Notifier:   n,
		Log:        log,
	})
}
