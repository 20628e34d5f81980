package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fvgtrader/market"
)

func TestCSVFeedStreamsRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "candles.csv")
	data := "time,open,high,low,close,volume\n" +
		"2026-01-05T10:00:00Z,10000,10010,9990,10005,100\n" +
		"1767607500,10005,10020,10000,10015,120\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	out := make(chan market.Candle, 4)
	require.NoError(t, NewCSV(path).Run(context.Background(), out))

	var got []market.Candle
	for c := range out {
		got = append(got, c)
	}
	require.Len(t, got, 2)
	assert.InDelta(t, 10000, got[0].Open, 1e-9)
	assert.InDelta(t, 120, got[1].Volume, 1e-9)
	assert.Equal(t, 2026, got[0].Time.Year())
	assert.True(t, got[1].Time.After(got[0].Time))
}

func TestCSVFeedBadRow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "candles.csv")
	data := "2026-01-05T10:00:00Z,10000,10010,9990,10005,100\n" +
		"2026-01-05T10:05:00Z,oops,10020,10000,10015,120\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	out := make(chan market.Candle, 4)
	err := NewCSV(path).Run(context.Background(), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCSVFeedMissingFile(t *testing.T) {
	t.Parallel()

	out := make(chan market.Candle, 1)
	assert.Error(t, NewCSV("/nonexistent/candles.csv").Run(context.Background(), out))
}
