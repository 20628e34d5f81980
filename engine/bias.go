package engine

import (
	"github.com/rustyeddy/fvgtrader/fvg"
	"github.com/rustyeddy/fvgtrader/indicators"
	"github.com/rustyeddy/fvgtrader/market"
)

// Bias is the higher-timeframe trend direction used by the optional
// entry filter.
type Bias int

const (
	BiasNeutral Bias = iota
	BiasBullish
	BiasBearish
)

func (b Bias) String() string {
	switch b {
	case BiasBullish:
		return "bullish"
	case BiasBearish:
		return "bearish"
	default:
		return "neutral"
	}
}

const (
	biasPeriod    = 20
	biasThreshold = 0.002
)

// detectBias compares the last close against the SMA(20): more than 0.2%
// above is bullish, more than 0.2% below is bearish, otherwise neutral.
// Insufficient history is neutral.
func detectBias(window []market.Candle) Bias {
	bands, ok := indicators.Bollinger(window, biasPeriod, 2)
	if !ok || bands.Middle <= 0 {
		return BiasNeutral
	}

	last := window[len(window)-1].Close
	switch {
	case last > bands.Middle*(1+biasThreshold):
		return BiasBullish
	case last < bands.Middle*(1-biasThreshold):
		return BiasBearish
	}
	return BiasNeutral
}

// allows reports whether the bias permits entering in the given direction.
// Neutral allows nothing; the filter only takes aligned trades.
func (b Bias) allows(d fvg.Direction) bool {
	return (b == BiasBullish && d == fvg.Bullish) ||
		(b == BiasBearish && d == fvg.Bearish)
}
