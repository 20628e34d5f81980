package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/fvgtrader/market"
)

func bar(o, h, l, c float64) market.Candle {
	return market.Candle{Time: time.Unix(0, 0), Open: o, High: h, Low: l, Close: c, Volume: 100}
}

func TestATRFuncInsufficientHistory(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{bar(100, 110, 95, 105)}
	assert.Zero(t, ATRFunc(candles, 14))
	assert.Zero(t, ATRFunc(nil, 14))
	assert.Zero(t, ATRFunc(candles, 0))
}

func TestATRFuncSimpleMean(t *testing.T) {
	t.Parallel()

	// Ranges: bar2 TR = max(10, |110-105|, |100-105|) = 10
	//         bar3 TR = max(6, |112-108|, |106-108|) = 6
	candles := []market.Candle{
		bar(100, 108, 98, 105),
		bar(105, 110, 100, 108),
		bar(108, 112, 106, 110),
	}

	got := ATRFunc(candles, 2)
	assert.InDelta(t, 8.0, got, 1e-9)
}

func TestATRFuncGapTrueRange(t *testing.T) {
	t.Parallel()

	// Gap up: high-prev.close dominates high-low.
	candles := []market.Candle{
		bar(100, 101, 99, 100),
		bar(110, 111, 109, 110),
	}

	got := ATRFunc(candles, 1)
	assert.InDelta(t, 11.0, got, 1e-9) // |111 - 100|
}

func TestStreamingATRMatchesFunc(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		bar(100, 108, 98, 105),
		bar(105, 110, 100, 108),
		bar(108, 112, 106, 110),
		bar(110, 115, 109, 114),
		bar(114, 116, 110, 111),
	}

	a := NewATR(3)
	for _, c := range candles {
		a.Update(c)
	}

	assert.True(t, a.Ready())
	assert.InDelta(t, ATRFunc(candles, 3), a.Value(), 1e-9)
	assert.Equal(t, 4, a.Warmup())
}

func TestStreamingATRWarmup(t *testing.T) {
	t.Parallel()

	a := NewATR(14)
	assert.False(t, a.Ready())
	assert.Zero(t, a.Value())

	a.Update(bar(100, 110, 95, 105))
	assert.False(t, a.Ready())

	a.Reset()
	assert.False(t, a.Ready())
	assert.Zero(t, a.Value())
}

func TestSMA(t *testing.T) {
	t.Parallel()

	s := NewSMA(3)
	for _, close := range []float64{10, 20, 30, 40} {
		s.Update(bar(close, close, close, close))
	}

	assert.True(t, s.Ready())
	assert.InDelta(t, 30.0, s.Value(), 1e-9) // mean of 20,30,40
}

func TestBollinger(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		bar(10, 10, 10, 10),
		bar(20, 20, 20, 20),
		bar(30, 30, 30, 30),
	}

	b, ok := Bollinger(candles, 3, 2.0)
	assert.True(t, ok)
	assert.InDelta(t, 20.0, b.Middle, 1e-9)
	// σ = sqrt(((−10)²+0+10²)/3) ≈ 8.1650
	assert.InDelta(t, 36.3299, b.Upper, 1e-3)
	assert.InDelta(t, 3.6701, b.Lower, 1e-3)

	_, ok = Bollinger(candles[:2], 3, 2.0)
	assert.False(t, ok)
}

func TestAvgVolume(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{
		{Volume: 100}, {Volume: 200}, {Volume: 300},
	}

	assert.InDelta(t, 250.0, AvgVolume(candles, 2), 1e-9)
	assert.InDelta(t, 200.0, AvgVolume(candles, 20), 1e-9)
	assert.Zero(t, AvgVolume(nil, 20))
}
