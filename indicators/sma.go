package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fvgtrader/market"
)

// SMA is a streaming simple moving average over closing prices.
type SMA struct {
	period int
	closes []float64
	next   int
	count  int
	sum    float64
}

func NewSMA(period int) *SMA {
	if period <= 0 {
		panic("period must be > 0")
	}
	return &SMA{
		period: period,
		closes: make([]float64, period),
	}
}

func (s *SMA) Name() string { return fmt.Sprintf("SMA(%d)", s.period) }

func (s *SMA) Warmup() int { return s.period }

func (s *SMA) Reset() {
	s.next = 0
	s.count = 0
	s.sum = 0
}

func (s *SMA) Update(c market.Candle) {
	if s.count == s.period {
		s.sum -= s.closes[s.next]
	} else {
		s.count++
	}
	s.closes[s.next] = c.Close
	s.sum += c.Close
	s.next = (s.next + 1) % s.period
}

func (s *SMA) Ready() bool { return s.count >= s.period }

func (s *SMA) Value() float64 {
	if !s.Ready() {
		return 0
	}
	return s.sum / float64(s.period)
}

// Bands holds the standard Bollinger band triple (SMA ± mult·σ).
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger computes Bollinger bands over the last period closes.
// Returns false when there is not enough history.
func Bollinger(candles []market.Candle, period int, mult float64) (Bands, bool) {
	if len(candles) < period {
		return Bands{}, false
	}

	closes := candles[len(candles)-period:]
	mean := 0.0
	for _, c := range closes {
		mean += c.Close
	}
	mean /= float64(period)

	variance := 0.0
	for _, c := range closes {
		d := c.Close - mean
		variance += d * d
	}
	variance /= float64(period)
	sd := math.Sqrt(variance)

	return Bands{
		Upper:  mean + mult*sd,
		Middle: mean,
		Lower:  mean - mult*sd,
	}, true
}
