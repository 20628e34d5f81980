package fvg

import (
	"github.com/rustyeddy/fvgtrader/indicators"
	"github.com/rustyeddy/fvgtrader/market"
)

// DetectorConfig carries the gap filters. Zero values are replaced with
// the defaults below.
type DetectorConfig struct {
	// MinGapPct is the minimum gap size as a fraction of the previous close.
	MinGapPct float64
	// VolMult is the volume multiplier over the rolling average a gap
	// candle must exceed.
	VolMult float64
	// VolPeriod is the lookback for the rolling volume average.
	VolPeriod int
}

const (
	DefaultMinGapPct = 0.005
	DefaultVolMult   = 1.2
	DefaultVolPeriod = 20
)

func (cfg DetectorConfig) withDefaults() DetectorConfig {
	if cfg.MinGapPct <= 0 {
		cfg.MinGapPct = DefaultMinGapPct
	}
	if cfg.VolMult <= 0 {
		cfg.VolMult = DefaultVolMult
	}
	if cfg.VolPeriod <= 0 {
		cfg.VolPeriod = DefaultVolPeriod
	}
	return cfg
}

// Detect scans the most recent candles of the window for a qualifying
// imbalance and returns the zone, or nil. It is stateless: the same window
// always yields the same result.
//
// Bullish: the current candle closes above its open, opens above the
// previous high, the high clears the previous high by more than
// MinGapPct of the previous close, and volume exceeds VolMult times the
// rolling average. The zone spans [previous.High, current.Open]. Bearish
// is the mirror with zone [current.Open, previous.Low].
//
// Fewer than three candles yields no detection, not an error. A gap that
// passes the size test but fails the volume filter is dropped as noise.
func Detect(window []market.Candle, cfg DetectorConfig) *Zone {
	if len(window) < 3 {
		return nil
	}
	cfg = cfg.withDefaults()

	cur := window[len(window)-1]
	prev := window[len(window)-2]

	avgVol := indicators.AvgVolume(window[:len(window)-1], cfg.VolPeriod)
	if avgVol <= 0 || cur.Volume <= avgVol*cfg.VolMult {
		return nil
	}

	if cur.Bullish() && cur.Open > prev.High && (cur.High-prev.High) > cfg.MinGapPct*prev.Close {
		return newZone(Bullish, prev.High, cur.Open, cur)
	}
	if cur.Bearish() && cur.Open < prev.Low && (prev.Low-cur.Low) > cfg.MinGapPct*prev.Close {
		return newZone(Bearish, cur.Open, prev.Low, cur)
	}
	return nil
}
