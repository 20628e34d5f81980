// Package fvg implements fair value gap detection and breakout
// confirmation: the three-candle imbalance scan, the per-zone
// Pending -> Confirmed | Expired state machine and the trade signal a
// confirmed breakout produces.
package fvg

import (
	"time"

	"github.com/rustyeddy/fvgtrader/internal/id"
	"github.com/rustyeddy/fvgtrader/market"
)

// Direction is the side of a zone or trade.
type Direction int

const (
	Bullish Direction = iota + 1
	Bearish
)

func (d Direction) String() string {
	switch d {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "unknown"
	}
}

// FillState tracks how much of a zone's range price has revisited.
// Fill tracking is independent of confirmation, but a filled zone can no
// longer confirm.
type FillState int

const (
	Unfilled FillState = iota
	PartiallyFilled
	Filled
)

func (f FillState) String() string {
	switch f {
	case PartiallyFilled:
		return "partial"
	case Filled:
		return "filled"
	default:
		return "unfilled"
	}
}

// State is the confirmation state of a zone. Confirmed and Expired are
// terminal and mutually exclusive.
type State int

const (
	Pending State = iota
	Confirmed
	Expired
)

func (s State) String() string {
	switch s {
	case Confirmed:
		return "confirmed"
	case Expired:
		return "expired"
	default:
		return "pending"
	}
}

// Zone is a detected price imbalance. Low < High always; for a bullish
// zone Low is the previous high and High the gapping open, mirrored for
// bearish. Once Filled or superseded the zone is immutable history.
type Zone struct {
	ID          string
	Direction   Direction
	Low         float64
	High        float64
	ImpulseHigh float64
	ImpulseLow  float64
	Created     time.Time

	Fill  FillState
	State State

	// age counts candles seen since detection; used for expiry.
	age int
}

func newZone(dir Direction, low, high float64, impulse market.Candle) *Zone {
	return &Zone{
		ID:          id.New(),
		Direction:   dir,
		Low:         low,
		High:        high,
		ImpulseHigh: impulse.High,
		ImpulseLow:  impulse.Low,
		Created:     impulse.Time,
	}
}

// Width returns the zone's price span.
func (z *Zone) Width() float64 { return z.High - z.Low }

// farBoundary is the level a close must breach to confirm the breakout:
// High for bullish, Low for bearish.
func (z *Zone) farBoundary() float64 {
	if z.Direction == Bullish {
		return z.High
	}
	return z.Low
}

// nearBoundary is the level a full reversal crosses to invalidate the
// zone: Low for bullish, High for bearish.
func (z *Zone) nearBoundary() float64 {
	if z.Direction == Bullish {
		return z.Low
	}
	return z.High
}

// updateFill advances the fill state from the candle's range. A revisit of
// any part of the zone marks it partially filled; a full cross to the
// opposite boundary marks it filled.
func (z *Zone) updateFill(c market.Candle) {
	if z.Fill == Filled {
		return
	}

	switch z.Direction {
	case Bullish:
		if c.Low <= z.Low {
			z.Fill = Filled
			return
		}
		if c.Low <= z.High {
			z.Fill = PartiallyFilled
		}
	case Bearish:
		if c.High >= z.High {
			z.Fill = Filled
			return
		}
		if c.High >= z.Low {
			z.Fill = PartiallyFilled
		}
	}
}

// reversed reports whether the close crossed back through the near
// boundary, invalidating a pending zone.
func (z *Zone) reversed(c market.Candle) bool {
	if z.Direction == Bullish {
		return c.Close < z.nearBoundary()
	}
	return c.Close > z.nearBoundary()
}

// breakout reports whether the candle's close breached the far boundary in
// the trade direction.
func (z *Zone) breakout(c market.Candle) bool {
	if z.Direction == Bullish {
		return c.Close > z.farBoundary()
	}
	return c.Close < z.farBoundary()
}
