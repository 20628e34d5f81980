// Package position owns the lifecycle of the single open position: entry
// planning (stop and take-profit placement), per-candle supervision
// (partial exits, time stop, risk override) and closure accounting.
package position

import (
	"time"

	"github.com/rustyeddy/fvgtrader/fvg"
)

// CloseReason explains why a position (or part of one) was closed.
type CloseReason string

const (
	ReasonStopLoss     CloseReason = "StopLoss"
	ReasonTakeProfit   CloseReason = "TakeProfit"
	ReasonTimeStop     CloseReason = "TimeStop"
	ReasonRiskOverride CloseReason = "RiskOverride"
)

// State is the supervisor's lifecycle state.
type State int

const (
	Flat State = iota
	Open
	Closing // partial exit taken, runner remains
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "flat"
	}
}

// Position is the single mutable open-trade record. Exactly zero or one
// instance exists at any time.
type Position struct {
	ID        string
	Direction fvg.Direction
	Entry     float64
	EntryTime time.Time

	// OriginalSize is fixed at entry; RemainingSize shrinks on partial
	// exits (to 30% of original after the first take profit).
	OriginalSize  float64
	RemainingSize float64

	StopLoss    float64
	TakeProfit1 float64
	TakeProfit2 float64
	RiskAmount  float64

	RealizedPnL   float64
	UnrealizedPnL float64

	// MaxFavorable is the running favorable price extremum since entry.
	MaxFavorable float64

	BarsHeld int
	tp1Done  bool
}

// sign is +1 for bullish positions, -1 for bearish.
func (p *Position) sign() float64 {
	if p.Direction == fvg.Bullish {
		return 1
	}
	return -1
}

// pnlAt returns the P&L of the given size between entry and price.
func (p *Position) pnlAt(price, size float64) float64 {
	return (price - p.Entry) * size * p.sign()
}

// Closed is the immutable record of a finished trade.
type Closed struct {
	ID           string
	Direction    fvg.Direction
	Entry        float64
	Exit         float64
	Size         float64
	EntryTime    time.Time
	CloseTime    time.Time
	PnL          float64
	Reason       CloseReason
	MaxFavorable float64
}

// OrderIntent is what the supervisor asks the execution collaborator to
// do on entry. The core assumes intents fill at the requested levels; fill
// confirmation is out of scope.
type OrderIntent struct {
	Direction   fvg.Direction
	Size        float64
	EntryPrice  float64
	StopLoss    float64
	TakeProfit1 float64
	TakeProfit2 float64
}

// CloseIntent is emitted on partial or full closes.
type CloseIntent struct {
	SizeFraction float64 // fraction of the original size to close
	Reason       CloseReason
}
