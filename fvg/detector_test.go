package fvg

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fvgtrader/indicators"
	"github.com/rustyeddy/fvgtrader/market"
)

func bar(o, h, l, c, v float64) market.Candle {
	return market.Candle{Time: time.Unix(0, 0), Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestDetectBullishScenario(t *testing.T) {
	t.Parallel()

	// prev high=10000 close=9950; current open=10100 high=10250 close=10200
	// vol 150 vs avg 100: gap = 250 = 2.5% of 9950 > 0.5%, volume 150 > 120.
	window := []market.Candle{
		bar(9900, 9980, 9850, 9920, 100),
		bar(9920, 10000, 9900, 9950, 100),
		bar(10100, 10250, 10090, 10200, 150),
	}

	z := Detect(window, DetectorConfig{})
	require.NotNil(t, z)
	assert.Equal(t, Bullish, z.Direction)
	assert.InDelta(t, 10000.0, z.Low, 1e-9)
	assert.InDelta(t, 10100.0, z.High, 1e-9)
	assert.Equal(t, Unfilled, z.Fill)
	assert.Equal(t, Pending, z.State)
	assert.NotEmpty(t, z.ID)
}

func TestDetectBearishMirror(t *testing.T) {
	t.Parallel()

	window := []market.Candle{
		bar(10100, 10150, 10020, 10080, 100),
		bar(10080, 10100, 10000, 10050, 100),
		bar(9900, 9910, 9750, 9800, 150),
	}

	z := Detect(window, DetectorConfig{})
	require.NotNil(t, z)
	assert.Equal(t, Bearish, z.Direction)
	assert.InDelta(t, 9900.0, z.Low, 1e-9)
	assert.InDelta(t, 10000.0, z.High, 1e-9)
}

func TestDetectEdgeCases(t *testing.T) {
	t.Parallel()

	gapUp := bar(10100, 10250, 10090, 10200, 150)
	prev := bar(9920, 10000, 9900, 9950, 100)
	older := bar(9900, 9980, 9850, 9920, 100)

	tests := []struct {
		name   string
		window []market.Candle
	}{
		{"too_few_candles", []market.Candle{prev, gapUp}},
		{"empty", nil},
		{"volume_filter_fails", []market.Candle{older, prev, bar(10100, 10250, 10090, 10200, 110)}},
		{"gap_too_small", []market.Candle{older, prev, bar(10010, 10040, 10005, 10030, 150)}},
		{"bearish_close_on_gap_up", []market.Candle{older, prev, bar(10100, 10250, 10040, 10050, 150)}},
		{"no_gap", []market.Candle{older, prev, bar(9960, 10300, 9940, 10200, 150)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Nil(t, Detect(tt.window, DetectorConfig{}))
		})
	}
}

func TestDetectIsStateless(t *testing.T) {
	t.Parallel()

	window := []market.Candle{
		bar(9900, 9980, 9850, 9920, 100),
		bar(9920, 10000, 9900, 9950, 100),
		bar(10100, 10250, 10090, 10200, 150),
	}

	a := Detect(window, DetectorConfig{})
	b := Detect(window, DetectorConfig{})
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.Low, b.Low)
	assert.Equal(t, a.High, b.High)
	assert.Equal(t, a.Direction, b.Direction)
}

// randomCandle builds a valid OHLCV candle around a base price.
func randomCandle(rng *rand.Rand, base float64) market.Candle {
	open := base * (0.97 + rng.Float64()*0.06)
	close := base * (0.97 + rng.Float64()*0.06)
	hi := open
	if close > hi {
		hi = close
	}
	lo := open
	if close < lo {
		lo = close
	}
	return market.Candle{
		Time:   time.Unix(0, 0),
		Open:   open,
		High:   hi * (1 + rng.Float64()*0.02),
		Low:    lo * (1 - rng.Float64()*0.02),
		Close:  close,
		Volume: 50 + rng.Float64()*150,
	}
}

// Bullish detection must hold exactly when the three numeric conditions
// and the volume filter hold simultaneously.
func TestDetectBullishBiconditional(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	cfg := DetectorConfig{}.withDefaults()

	for i := 0; i < 5000; i++ {
		window := []market.Candle{
			randomCandle(rng, 100),
			randomCandle(rng, 100),
			randomCandle(rng, 100+rng.Float64()*8),
		}
		cur, prev := window[2], window[1]
		avgVol := indicators.AvgVolume(window[:2], cfg.VolPeriod)

		want := cur.Close > cur.Open &&
			cur.Open > prev.High &&
			(cur.High-prev.High) > cfg.MinGapPct*prev.Close &&
			cur.Volume > avgVol*cfg.VolMult

		z := Detect(window, cfg)
		gotBullish := z != nil && z.Direction == Bullish

		require.Equal(t, want, gotBullish,
			"iteration %d: cur=%+v prev=%+v avgVol=%g", i, cur, prev, avgVol)
		if gotBullish {
			assert.Equal(t, prev.High, z.Low)
			assert.Equal(t, cur.Open, z.High)
			assert.Less(t, z.Low, z.High)
		}
	}
}
