package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrade() TradeRecord {
	return TradeRecord{
		TradeID:      "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Symbol:       "BTCUSDT",
		Direction:    "bullish",
		Size:         3,
		EntryPrice:   10150,
		ExitPrice:    10550,
		OpenTime:     time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		CloseTime:    time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
		RealizedPL:   1200,
		Reason:       "TakeProfit",
		MaxFavorable: 10600,
	}
}

func TestCSVJournalWritesRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tp := filepath.Join(dir, "trades.csv")
	ep := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tp, ep)
	require.NoError(t, err)

	require.NoError(t, j.RecordTrade(sampleTrade()))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:           time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
		Balance:        10000,
		Equity:         11200,
		DailyPnL:       1200,
		TradesToday:    1,
		TradingEnabled: true,
	}))
	require.NoError(t, j.Close())

	trades, err := os.ReadFile(tp)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(trades)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "trade_id")
	assert.Contains(t, lines[1], "BTCUSDT")
	assert.Contains(t, lines[1], "TakeProfit")

	equity, err := os.ReadFile(ep)
	require.NoError(t, err)
	assert.Contains(t, string(equity), "11200.000000")
	assert.Contains(t, string(equity), "true")
}

func TestSQLiteJournalRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	want := sampleTrade()
	require.NoError(t, j.RecordTrade(want))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:    time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
		Balance: 10000,
		Equity:  11200,
	}))

	got, err := j.ListTrades()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.TradeID, got[0].TradeID)
	assert.Equal(t, want.Reason, got[0].Reason)
	assert.InDelta(t, want.RealizedPL, got[0].RealizedPL, 1e-9)
}
