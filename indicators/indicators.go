// Package indicators provides the technical measures the detection and
// risk layers consume: ATR, SMA, Bollinger bands and rolling volume.
package indicators

import "github.com/rustyeddy/fvgtrader/market"

// Indicator computes a single streaming value from closed candles.
// It is deterministic and safe to use in live and replay runs.
type Indicator interface {
	// Name returns a stable identifier like "ATR(14)" or "SMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* candle and updates internal state.
	Update(c market.Candle)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value. If !Ready() it returns 0;
	// callers should always check Ready().
	Value() float64
}

// AvgVolume returns the mean volume of the most recent period candles, or
// of all candles if fewer are available. Zero candles yields zero.
func AvgVolume(candles []market.Candle, period int) float64 {
	n := len(candles)
	if n > period {
		candles = candles[n-period:]
		n = period
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range candles {
		sum += c.Volume
	}
	return sum / float64(n)
}
