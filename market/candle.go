// Package market defines the core price types shared by every other
// package: the OHLCV candle and the bounded candle store the decision
// loop reads from.
package market

import (
	"fmt"
	"time"
)

// Candle represents one completed OHLCV bar. Candles are immutable once
// created; the store hands out copies, never references.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ValidationError reports a candle that violates the OHLC invariants.
// A bad candle is rejected individually; the store keeps running.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid candle: " + e.Reason
}

// Validate checks the OHLC invariants: low <= {open, close} <= high,
// volume >= 0 and open > 0.
func (c Candle) Validate() error {
	if c.Open <= 0 {
		return &ValidationError{Reason: fmt.Sprintf("open must be positive, got %g", c.Open)}
	}
	if c.Low > c.Open || c.Low > c.Close {
		return &ValidationError{Reason: fmt.Sprintf("low %g above open %g or close %g", c.Low, c.Open, c.Close)}
	}
	if c.High < c.Open || c.High < c.Close {
		return &ValidationError{Reason: fmt.Sprintf("high %g below open %g or close %g", c.High, c.Open, c.Close)}
	}
	if c.Volume < 0 {
		return &ValidationError{Reason: fmt.Sprintf("negative volume %g", c.Volume)}
	}
	return nil
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish reports whether the candle closed below its open.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Range returns high minus low.
func (c Candle) Range() float64 { return c.High - c.Low }
