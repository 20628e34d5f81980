package fvg

import "time"

// Signal is a trade proposal produced by a confirmed breakout. The
// supervisor's sizing step fills StopLoss, the take profits and Size; the
// risk gate then validates (and may shrink) it. A rejected signal is
// discarded, an accepted one becomes the open position.
type Signal struct {
	Direction   Direction
	Zone        *Zone
	Entry       float64
	StopLoss    float64
	TakeProfit1 float64
	TakeProfit2 float64
	Size        float64
	RiskAmount  float64
	Time        time.Time
}
