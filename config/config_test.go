package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero balance",
			mutate:  func(c *Config) { c.Account.Balance = 0 },
			wantErr: "account.balance",
		},
		{
			name:    "daily loss out of range",
			mutate:  func(c *Config) { c.Risk.MaxDailyLossPct = 1.5 },
			wantErr: "max_daily_loss_pct",
		},
		{
			name:    "missing symbol",
			mutate:  func(c *Config) { c.Strategy.Symbol = "" },
			wantErr: "strategy.symbol",
		},
		{
			name:    "bad runner fraction",
			mutate:  func(c *Config) { c.Strategy.Exits.RunnerFraction = 1.0 },
			wantErr: "runner_fraction",
		},
		{
			name: "csv journal without paths",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "csv"}
			},
			wantErr: "trades_file",
		},
		{
			name:    "unknown journal type",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: "journal.type",
		},
		{
			name:    "metrics enabled without addr",
			mutate:  func(c *Config) { c.Metrics = MetricsConfig{Enabled: true} },
			wantErr: "metrics.addr",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRoundTripYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	orig := Default()
	orig.Strategy.Symbol = "ETHUSDT"
	orig.Risk.MinUnit = 0.01
	require.NoError(t, orig.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", got.Strategy.Symbol)
	assert.InDelta(t, 0.01, got.Risk.MinUnit, 1e-12)
	assert.InDelta(t, orig.Strategy.MinGapPct, got.Strategy.MinGapPct, 1e-12)
}

func TestRoundTripJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	orig := Default()
	orig.Journal = JournalConfig{Type: "sqlite", DBPath: "./journal.db"}
	require.NoError(t, orig.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", got.Journal.Type)
	assert.Equal(t, "./journal.db", got.Journal.DBPath)
}

func TestPolicyConversion(t *testing.T) {
	t.Parallel()

	cfg := Default()
	p := cfg.Policy()
	assert.InDelta(t, 500.0, p.MaxDailyLoss(cfg.Account.Balance), 1e-9)
	assert.InDelta(t, 300.0, p.MaxTradeRisk(cfg.Account.Balance), 1e-9)
	assert.InDelta(t, 9000.0, p.EquityFloor(cfg.Account.Balance), 1e-9)
}
