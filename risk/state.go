package risk

import (
	"math"
	"time"
)

// State is the running account-level risk record. It is owned by the
// decision loop and passed by reference into each cycle — no ambient
// singleton. The gate reads it, only the position supervisor's closures
// and the daily reset mutate it.
type State struct {
	// AccountBalance is fixed at session start.
	AccountBalance float64

	// CurrentEquity is balance plus cumulative realized and open
	// unrealized P&L.
	CurrentEquity float64

	// DailyRealized and DailyUnrealized reset at the day boundary.
	DailyRealized   float64
	DailyUnrealized float64

	TradingEnabled bool
	TradesToday    int
	WinsToday      int

	// Day marks the UTC day the daily counters belong to.
	Day time.Time

	// realized accumulates closed P&L across days so equity survives the
	// daily reset.
	realized float64
}

// NewState initializes the session risk state.
func NewState(balance float64, now time.Time) *State {
	return &State{
		AccountBalance: balance,
		CurrentEquity:  balance,
		TradingEnabled: true,
		Day:            now.UTC().Truncate(24 * time.Hour),
	}
}

// DailyPnL is the combined realized plus unrealized P&L for the day.
func (s *State) DailyPnL() float64 {
	return s.DailyRealized + s.DailyUnrealized
}

// RemainingDailyBudget returns the daily loss budget still available,
// floored at zero.
func (s *State) RemainingDailyBudget(p Policy) float64 {
	return math.Max(p.MaxDailyLoss(s.AccountBalance)-math.Abs(s.DailyPnL()), 0)
}

// MarkToMarket records the open position's unrealized P&L and re-derives
// equity. Call with zero when flat.
func (s *State) MarkToMarket(unrealized float64) {
	s.DailyUnrealized = unrealized
	s.CurrentEquity = s.AccountBalance + s.realized + unrealized
}

// ApplyClose realizes a closed trade's P&L into the daily and cumulative
// totals, updates the win counter, and latches TradingEnabled off when the
// daily loss limit or the equity floor is breached.
func (s *State) ApplyClose(pnl float64, p Policy) {
	s.realized += pnl
	s.DailyRealized += pnl
	s.DailyUnrealized = 0
	s.CurrentEquity = s.AccountBalance + s.realized
	s.TradesToday++
	if pnl > 0 {
		s.WinsToday++
	}

	if s.DailyRealized < -p.MaxDailyLoss(s.AccountBalance) {
		s.TradingEnabled = false
	}
	if s.CurrentEquity < p.EquityFloor(s.AccountBalance) {
		s.TradingEnabled = false
	}
}

// FloorBreached reports whether equity sits below the policy floor.
func (s *State) FloorBreached(p Policy) bool {
	return s.CurrentEquity < p.EquityFloor(s.AccountBalance)
}

// DailyReset is the day-boundary transition: zero the daily counters and
// re-arm trading unless the equity floor is already breached.
func (s *State) DailyReset(now time.Time, p Policy) {
	s.DailyRealized = 0
	s.DailyUnrealized = 0
	s.TradesToday = 0
	s.WinsToday = 0
	s.Day = now.UTC().Truncate(24 * time.Hour)
	s.TradingEnabled = !s.FloorBreached(p)
}

// Disable latches trading off, used on invariant violations.
func (s *State) Disable() { s.TradingEnabled = false }

// Snapshot returns a read-only copy for external reporting.
func (s *State) Snapshot() State { return *s }
