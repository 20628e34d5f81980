package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fvgtrader/market"
)

// ATRFunc computes the Average True Range over the last period true
// ranges: the simple mean of TR_i = max(high-low, |high-prev.close|,
// |low-prev.close|). It returns 0 when fewer than period+1 candles are
// available — a zero ATR means "not ready", and a zero-width stop is never
// valid, so callers must skip the decision cycle.
func ATRFunc(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}

	start := len(candles) - period - 1
	sum := 0.0
	for i := start + 1; i < len(candles); i++ {
		sum += trueRange(candles[i], candles[i-1])
	}
	return sum / float64(period)
}

// ATR is the streaming Average True Range indicator: a rolling mean over
// the last period true ranges.
type ATR struct {
	period      int
	trs         []float64
	next        int
	count       int
	sum         float64
	prevCandle  market.Candle
	hasPrevious bool
}

// NewATR creates a streaming ATR with the given period.
func NewATR(period int) *ATR {
	if period <= 0 {
		panic("period must be > 0")
	}
	return &ATR{
		period: period,
		trs:    make([]float64, period),
	}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

func (a *ATR) Warmup() int {
	// Need period+1 candles because TR requires the previous close.
	return a.period + 1
}

func (a *ATR) Reset() {
	a.next = 0
	a.count = 0
	a.sum = 0
	a.hasPrevious = false
}

func (a *ATR) Update(c market.Candle) {
	if !a.hasPrevious {
		a.prevCandle = c
		a.hasPrevious = true
		return
	}

	tr := trueRange(c, a.prevCandle)
	if a.count == a.period {
		a.sum -= a.trs[a.next]
	} else {
		a.count++
	}
	a.trs[a.next] = tr
	a.sum += tr
	a.next = (a.next + 1) % a.period

	a.prevCandle = c
}

func (a *ATR) Ready() bool {
	return a.count >= a.period
}

func (a *ATR) Value() float64 {
	if !a.Ready() {
		return 0
	}
	return a.sum / float64(a.period)
}

// trueRange calculates the True Range for a candle given the previous one.
func trueRange(current, previous market.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}
