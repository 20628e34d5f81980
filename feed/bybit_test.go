package feed

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(t *testing.T) *BybitFeed {
	t.Helper()
	f, err := NewBybit(Config{
		URL:      "wss://stream.bybit.com/v5/public/linear",
		Symbol:   "BTCUSDT",
		Interval: "5",
		Log:      zerolog.Nop(),
	})
	require.NoError(t, err)
	return f
}

func TestParseConfirmedKline(t *testing.T) {
	t.Parallel()

	f := newTestFeed(t)
	raw := []byte(`{
		"topic": "kline.5.BTCUSDT",
		"data": [{
			"start": 1767607200000,
			"interval": "5",
			"open": "10100.5",
			"high": "10160",
			"low": "10090",
			"close": "10150.25",
			"volume": "200.75",
			"confirm": true
		}]
	}`)

	candles, err := f.parse(raw)
	require.NoError(t, err)
	require.Len(t, candles, 1)

	c := candles[0]
	assert.Equal(t, time.UnixMilli(1767607200000).UTC(), c.Time)
	assert.InDelta(t, 10100.5, c.Open, 1e-9)
	assert.InDelta(t, 10160, c.High, 1e-9)
	assert.InDelta(t, 10090, c.Low, 1e-9)
	assert.InDelta(t, 10150.25, c.Close, 1e-9)
	assert.InDelta(t, 200.75, c.Volume, 1e-9)
}

func TestParseDropsUnconfirmedBars(t *testing.T) {
	t.Parallel()

	f := newTestFeed(t)
	raw := []byte(`{
		"topic": "kline.5.BTCUSDT",
		"data": [{
			"start": 1767607200000,
			"open": "10100", "high": "10160", "low": "10090",
			"close": "10150", "volume": "200",
			"confirm": false
		}]
	}`)

	candles, err := f.parse(raw)
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestParseDeduplicatesByStartTime(t *testing.T) {
	t.Parallel()

	f := newTestFeed(t)
	raw := []byte(`{
		"topic": "kline.5.BTCUSDT",
		"data": [{
			"start": 1767607200000,
			"open": "10100", "high": "10160", "low": "10090",
			"close": "10150", "volume": "200",
			"confirm": true
		}]
	}`)

	first, err := f.parse(raw)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.parse(raw)
	require.NoError(t, err)
	assert.Empty(t, second, "replayed bar must not be forwarded twice")
}

func TestParseIgnoresOtherTopics(t *testing.T) {
	t.Parallel()

	f := newTestFeed(t)

	candles, err := f.parse([]byte(`{"op":"pong","success":true}`))
	require.NoError(t, err)
	assert.Empty(t, candles)

	candles, err = f.parse([]byte(`{
		"topic": "kline.5.ETHUSDT",
		"data": [{"start": 1, "open": "1", "high": "1", "low": "1",
			"close": "1", "volume": "1", "confirm": true}]
	}`))
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestParseRejectsBadNumbers(t *testing.T) {
	t.Parallel()

	f := newTestFeed(t)
	_, err := f.parse([]byte(`{
		"topic": "kline.5.BTCUSDT",
		"data": [{"start": 1767607200000, "open": "abc", "high": "1",
			"low": "1", "close": "1", "volume": "1", "confirm": true}]
	}`))
	assert.Error(t, err)
}

func TestNewBybitValidation(t *testing.T) {
	t.Parallel()

	_, err := NewBybit(Config{Symbol: "BTCUSDT", Interval: "5"})
	assert.Error(t, err)

	_, err = NewBybit(Config{URL: "wss://x", Interval: "5"})
	assert.Error(t, err)
}
