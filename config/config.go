// Package config loads and validates the engine configuration. Files may be
// YAML or JSON; YAML is tried first. Secrets (Telegram token, API keys) come
// from the environment, not from the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/fvgtrader/position"
	"github.com/rustyeddy/fvgtrader/risk"
)

// Config is the complete engine configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Feed     FeedConfig     `json:"feed" yaml:"feed"`
	Notify   NotifyConfig   `json:"notify" yaml:"notify"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// AccountConfig contains session account parameters.
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// RiskConfig mirrors the risk policy limits as fractions of balance.
type RiskConfig struct {
	MaxDailyLossPct    float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
	MaxRiskPerTradePct float64 `json:"max_risk_per_trade_pct" yaml:"max_risk_per_trade_pct"`
	EquityFloorPct     float64 `json:"equity_floor_pct" yaml:"equity_floor_pct"`
	MinUnit            float64 `json:"min_unit" yaml:"min_unit"`
}

// StrategyConfig contains the per-symbol detection and exit parameters.
type StrategyConfig struct {
	Symbol     string  `json:"symbol" yaml:"symbol"`
	Interval   string  `json:"interval" yaml:"interval"`
	MinGapPct  float64 `json:"min_gap_pct" yaml:"min_gap_pct"`
	VolMult    float64 `json:"vol_mult" yaml:"vol_mult"`
	VolPeriod  int     `json:"vol_period" yaml:"vol_period"`
	ATRPeriod  int     `json:"atr_period" yaml:"atr_period"`
	ExpiryBars int     `json:"expiry_bars" yaml:"expiry_bars"`

	// BiasFilter gates entries on the SMA(20) trend direction when true.
	BiasFilter bool `json:"bias_filter" yaml:"bias_filter"`

	Exits position.Config `json:"exits" yaml:"exits"`
}

// JournalConfig selects and parameterizes the trade journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// FeedConfig parameterizes the websocket market-data feed.
type FeedConfig struct {
	URL string `json:"url" yaml:"url"`
}

// NotifyConfig selects the notification channel. The Telegram token and chat
// ID are read from TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.
type NotifyConfig struct {
	Type string `json:"type" yaml:"type"` // "telegram" or "none"
}

// MetricsConfig parameterizes the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML first, JSON fallback)
// and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (format chosen by extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Risk.MaxDailyLossPct <= 0 || c.Risk.MaxDailyLossPct >= 1 {
		return fmt.Errorf("risk.max_daily_loss_pct must be between 0 and 1")
	}
	if c.Risk.MaxRiskPerTradePct <= 0 || c.Risk.MaxRiskPerTradePct >= 1 {
		return fmt.Errorf("risk.max_risk_per_trade_pct must be between 0 and 1")
	}
	if c.Risk.EquityFloorPct <= 0 || c.Risk.EquityFloorPct >= 1 {
		return fmt.Errorf("risk.equity_floor_pct must be between 0 and 1")
	}
	if c.Risk.MinUnit <= 0 {
		return fmt.Errorf("risk.min_unit must be positive")
	}
	if c.Strategy.Symbol == "" {
		return fmt.Errorf("strategy.symbol is required")
	}
	if c.Strategy.MinGapPct <= 0 {
		return fmt.Errorf("strategy.min_gap_pct must be positive")
	}
	if c.Strategy.VolMult <= 0 {
		return fmt.Errorf("strategy.vol_mult must be positive")
	}
	if c.Strategy.VolPeriod <= 0 {
		return fmt.Errorf("strategy.vol_period must be positive")
	}
	if c.Strategy.ATRPeriod <= 0 {
		return fmt.Errorf("strategy.atr_period must be positive")
	}
	if c.Strategy.ExpiryBars <= 0 {
		return fmt.Errorf("strategy.expiry_bars must be positive")
	}
	if c.Strategy.Exits.TimeStopBars <= 0 {
		return fmt.Errorf("strategy.exits.time_stop_bars must be positive")
	}
	if f := c.Strategy.Exits.RunnerFraction; f <= 0 || f >= 1 {
		return fmt.Errorf("strategy.exits.runner_fraction must be between 0 and 1")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	if c.Notify.Type != "telegram" && c.Notify.Type != "none" {
		return fmt.Errorf("notify.type must be 'telegram' or 'none'")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr required when metrics are enabled")
	}
	return nil
}

// Policy converts the risk section into a risk policy.
func (c *Config) Policy() risk.Policy {
	return risk.Policy{
		MaxDailyLossPct:    c.Risk.MaxDailyLossPct,
		MaxRiskPerTradePct: c.Risk.MaxRiskPerTradePct,
		EquityFloorPct:     c.Risk.EquityFloorPct,
		MinUnit:            c.Risk.MinUnit,
	}
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "FVG-001",
			Currency: "USDT",
			Balance:  10000,
		},
		Risk: RiskConfig{
			MaxDailyLossPct:    0.05,
			MaxRiskPerTradePct: 0.03,
			EquityFloorPct:     0.90,
			MinUnit:            1.0,
		},
		Strategy: StrategyConfig{
			Symbol:     "BTCUSDT",
			Interval:   "5",
			MinGapPct:  0.005,
			VolMult:    1.2,
			VolPeriod:  20,
			ATRPeriod:  14,
			ExpiryBars: 5,
			Exits:      position.DefaultConfig(),
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Feed: FeedConfig{
			URL: "wss://stream.bybit.com/v5/public/linear",
		},
		Notify: NotifyConfig{Type: "none"},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}
