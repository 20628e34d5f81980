package position

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/fvgtrader/fvg"
	"github.com/rustyeddy/fvgtrader/internal/id"
	"github.com/rustyeddy/fvgtrader/market"
)

// Config carries the exit-placement parameters.
type Config struct {
	// StopATRMult scales the ATR distance beyond the zone boundary for the
	// stop: zone low minus ATR·mult for bullish, zone high plus for bearish.
	StopATRMult float64 `json:"stop_atr_mult" yaml:"stop_atr_mult"`

	// TP1GapMult and TP2GapMult scale the zone width into the two
	// take-profit distances from entry.
	TP1GapMult float64 `json:"tp1_gap_mult" yaml:"tp1_gap_mult"`
	TP2GapMult float64 `json:"tp2_gap_mult" yaml:"tp2_gap_mult"`

	// MinRewardRisk floors TP1: if the gap-based target yields less than
	// this reward-to-risk ratio, TP1 is pushed out to exactly it.
	MinRewardRisk float64 `json:"min_reward_risk" yaml:"min_reward_risk"`

	// RunnerFraction is the share of the original size left after the
	// first take profit.
	RunnerFraction float64 `json:"runner_fraction" yaml:"runner_fraction"`

	// TimeStopBars closes the position after this many bars.
	TimeStopBars int `json:"time_stop_bars" yaml:"time_stop_bars"`
}

// DefaultConfig matches the strategy defaults: 1×ATR stop, 2× and 3.5×
// gap targets with a 2:1 floor, 30% runner, 7-bar time stop.
func DefaultConfig() Config {
	return Config{
		StopATRMult:    1.0,
		TP1GapMult:     2.0,
		TP2GapMult:     3.5,
		MinRewardRisk:  2.0,
		RunnerFraction: 0.30,
		TimeStopBars:   7,
	}
}

// InvariantViolation indicates a logic defect (for example opening a
// second position). It aborts the decision cycle and disables trading
// pending investigation; it is never a market condition.
type InvariantViolation struct {
	Op  string
	Msg string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Msg)
}

// TickResult reports what a per-candle evaluation did. At most one of
// Partial and Closed is set.
type TickResult struct {
	// Unrealized is the open P&L after the tick; meaningless once Closed.
	Unrealized float64

	// Partial is set when the first take profit reduced the position.
	Partial *CloseIntent

	// Closed is set when the position was fully closed this tick.
	Closed *Closed

	// Intent mirrors Partial/Closed for the execution collaborator.
	Intent *CloseIntent
}

// Supervisor runs the Flat -> Open -> Closing -> Flat state machine for at
// most one position. All methods are called from the decision loop only;
// transitions are applied fully or not at all.
type Supervisor struct {
	cfg   Config
	state State
	pos   *Position
}

func NewSupervisor(cfg Config) *Supervisor {
	if cfg.TimeStopBars <= 0 {
		cfg = DefaultConfig()
	}
	return &Supervisor{cfg: cfg}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State { return s.state }

// HasOpen reports whether a position exists.
func (s *Supervisor) HasOpen() bool { return s.pos != nil }

// Position returns a copy of the open position for external reporting, or
// false when flat.
func (s *Supervisor) Position() (Position, bool) {
	if s.pos == nil {
		return Position{}, false
	}
	return *s.pos, true
}

// Plan fills the signal's stop-loss and take-profit levels from the zone
// and the current ATR. It must run before sizing: the risk gate needs the
// entry-stop distance. A zero ATR is a caller error; the engine skips the
// cycle instead.
func (s *Supervisor) Plan(sig fvg.Signal, atr float64) fvg.Signal {
	z := sig.Zone

	if sig.Direction == fvg.Bullish {
		sig.StopLoss = z.Low - atr*s.cfg.StopATRMult
	} else {
		sig.StopLoss = z.High + atr*s.cfg.StopATRMult
	}

	risk := math.Abs(sig.Entry - sig.StopLoss)
	gap := z.Width()
	sign := 1.0
	if sig.Direction == fvg.Bearish {
		sign = -1
	}

	tp1Dist := gap * s.cfg.TP1GapMult
	// Floor: TP1 must pay at least MinRewardRisk times the risk.
	if tp1Dist < risk*s.cfg.MinRewardRisk {
		tp1Dist = risk * s.cfg.MinRewardRisk
	}
	sig.TakeProfit1 = sig.Entry + sign*tp1Dist
	sig.TakeProfit2 = sig.Entry + sign*gap*s.cfg.TP2GapMult
	return sig
}

// Open transitions Flat -> Open from an accepted, sized signal and returns
// the order intent for the execution collaborator. Opening while a
// position exists is an InvariantViolation.
func (s *Supervisor) Open(sig fvg.Signal) (OrderIntent, error) {
	if s.pos != nil {
		return OrderIntent{}, &InvariantViolation{
			Op:  "open",
			Msg: fmt.Sprintf("position %s already open", s.pos.ID),
		}
	}
	if sig.Size <= 0 {
		return OrderIntent{}, &InvariantViolation{Op: "open", Msg: "non-positive size"}
	}

	s.pos = &Position{
		ID:            id.New(),
		Direction:     sig.Direction,
		Entry:         sig.Entry,
		EntryTime:     sig.Time,
		OriginalSize:  sig.Size,
		RemainingSize: sig.Size,
		StopLoss:      sig.StopLoss,
		TakeProfit1:   sig.TakeProfit1,
		TakeProfit2:   sig.TakeProfit2,
		RiskAmount:    math.Abs(sig.Entry-sig.StopLoss) * sig.Size,
		MaxFavorable:  sig.Entry,
	}
	s.state = Open

	return OrderIntent{
		Direction:   sig.Direction,
		Size:        sig.Size,
		EntryPrice:  sig.Entry,
		StopLoss:    sig.StopLoss,
		TakeProfit1: sig.TakeProfit1,
		TakeProfit2: sig.TakeProfit2,
	}, nil
}

// Update evaluates one completed candle against the open position.
// Priority order: stop-loss, take-profit, time stop, risk override.
// riskBreached signals an account-level floor or daily-drawdown breach
// observed by the engine; it forces a full close regardless of price.
//
// Re-evaluating the same candle twice is safe: the take-profit-1 reduction
// happens at most once per position.
func (s *Supervisor) Update(c market.Candle, riskBreached bool) TickResult {
	if s.pos == nil {
		return TickResult{}
	}
	p := s.pos
	p.BarsHeld++
	s.trackExcursion(c)

	switch {
	case s.stopTouched(c):
		return s.closeAll(p.StopLoss, c.Time, ReasonStopLoss)

	case !p.tp1Done && s.tp1Touched(c):
		return s.partialExit()

	case p.tp1Done && s.tp2Touched(c):
		return s.closeAll(p.TakeProfit2, c.Time, ReasonTakeProfit)

	case p.BarsHeld > s.cfg.TimeStopBars:
		return s.closeAll(c.Close, c.Time, ReasonTimeStop)

	case riskBreached:
		return s.closeAll(c.Close, c.Time, ReasonRiskOverride)
	}

	p.UnrealizedPnL = p.pnlAt(c.Close, p.RemainingSize)
	return TickResult{Unrealized: p.UnrealizedPnL}
}

// ForceClose closes the position at the given price regardless of levels,
// used on shutdown or operator request. No-op when flat.
func (s *Supervisor) ForceClose(price float64, now time.Time, reason CloseReason) *TickResult {
	if s.pos == nil {
		return nil
	}
	r := s.closeAll(price, now, reason)
	return &r
}

func (s *Supervisor) trackExcursion(c market.Candle) {
	p := s.pos
	if p.Direction == fvg.Bullish {
		if c.High > p.MaxFavorable {
			p.MaxFavorable = c.High
		}
	} else if c.Low < p.MaxFavorable {
		p.MaxFavorable = c.Low
	}
}

func (s *Supervisor) stopTouched(c market.Candle) bool {
	if s.pos.Direction == fvg.Bullish {
		return c.Low <= s.pos.StopLoss
	}
	return c.High >= s.pos.StopLoss
}

func (s *Supervisor) tp1Touched(c market.Candle) bool {
	if s.pos.Direction == fvg.Bullish {
		return c.High >= s.pos.TakeProfit1
	}
	return c.Low <= s.pos.TakeProfit1
}

func (s *Supervisor) tp2Touched(c market.Candle) bool {
	if s.pos.Direction == fvg.Bullish {
		return c.High >= s.pos.TakeProfit2
	}
	return c.Low <= s.pos.TakeProfit2
}

// partialExit closes (1 - RunnerFraction) of the original size at TP1 and
// moves the remaining stop to breakeven.
func (s *Supervisor) partialExit() TickResult {
	p := s.pos

	closedSize := p.OriginalSize * (1 - s.cfg.RunnerFraction)
	p.RealizedPnL += p.pnlAt(p.TakeProfit1, closedSize)
	p.RemainingSize = p.OriginalSize * s.cfg.RunnerFraction
	p.StopLoss = p.Entry
	p.tp1Done = true
	s.state = Closing

	p.UnrealizedPnL = p.pnlAt(p.TakeProfit1, p.RemainingSize)
	intent := &CloseIntent{SizeFraction: 1 - s.cfg.RunnerFraction, Reason: ReasonTakeProfit}
	return TickResult{
		Unrealized: p.UnrealizedPnL,
		Partial:    intent,
		Intent:     intent,
	}
}

// closeAll finalizes the position into a Closed record and returns to Flat.
func (s *Supervisor) closeAll(price float64, now time.Time, reason CloseReason) TickResult {
	p := s.pos

	pnl := p.RealizedPnL + p.pnlAt(price, p.RemainingSize)
	closed := &Closed{
		ID:           p.ID,
		Direction:    p.Direction,
		Entry:        p.Entry,
		Exit:         price,
		Size:         p.OriginalSize,
		EntryTime:    p.EntryTime,
		CloseTime:    now,
		PnL:          pnl,
		Reason:       reason,
		MaxFavorable: p.MaxFavorable,
	}

	fraction := p.RemainingSize / p.OriginalSize
	s.pos = nil
	s.state = Flat

	intent := &CloseIntent{SizeFraction: fraction, Reason: reason}
	return TickResult{Closed: closed, Intent: intent}
}
