package risk

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fvgtrader/fvg"
)

// RejectReason identifies which gate check failed. The first failing check
// determines the reason; there is no partial acceptance.
type RejectReason string

const (
	TradingHalted       RejectReason = "TradingHalted"
	EquityFloorBreached RejectReason = "EquityFloorBreached"
	DailyLimitExhausted RejectReason = "DailyLimitExhausted"
	SizeBelowMinimum    RejectReason = "SizeBelowMinimum"
)

// SignalRejected is the expected business outcome of a failed validation.
// It is logged, never fatal.
type SignalRejected struct {
	Reason RejectReason
}

func (e *SignalRejected) Error() string {
	return fmt.Sprintf("signal rejected: %s", e.Reason)
}

// Decision is the gate's verdict. When accepted, Signal carries the final
// (possibly reduced) size and the risk amount re-derived from it.
type Decision struct {
	Accepted bool
	Reason   RejectReason
	Signal   fvg.Signal
}

// Err returns the rejection as an error, or nil when accepted.
func (d Decision) Err() error {
	if d.Accepted {
		return nil
	}
	return &SignalRejected{Reason: d.Reason}
}

// SuggestSize proposes a position size for an entry/stop pair: the largest
// size whose risk fits both the per-trade ceiling and the remaining daily
// budget, floored to the policy's minimum unit.
func SuggestSize(entry, stop float64, s *State, p Policy) float64 {
	riskPerUnit := math.Abs(entry - stop)
	if riskPerUnit <= 0 {
		return 0
	}
	budget := math.Min(p.MaxTradeRisk(s.AccountBalance), s.RemainingDailyBudget(p))
	return floorToUnit(budget/riskPerUnit, p.MinUnit)
}

// Validate is the single most safety-critical function in the system. It
// decides whether a proposed signal may trade and at what size. It is pure
// and deterministic given identical inputs, never increases the proposed
// size, and is re-evaluated independently for every signal — no verdict is
// ever cached or retried.
//
// Checks run in order; the first failure is the rejection reason:
//  1. trading must be enabled;
//  2. equity must sit at or above the floor;
//  3. the daily loss budget must not be exhausted;
//  4. the risk amount is capped at min(per-trade ceiling, remaining daily
//     budget) — an oversized proposal is shrunk to fit, not rejected;
//  5. the equity buffer above the floor must cover the risk amount,
//     scaling size down proportionally if not.
func Validate(sig fvg.Signal, s *State, p Policy) Decision {
	if !s.TradingEnabled {
		return Decision{Reason: TradingHalted}
	}

	if s.FloorBreached(p) {
		return Decision{Reason: EquityFloorBreached}
	}

	remaining := s.RemainingDailyBudget(p)
	if remaining <= 0 {
		return Decision{Reason: DailyLimitExhausted}
	}

	riskPerUnit := math.Abs(sig.Entry - sig.StopLoss)
	if riskPerUnit <= 0 {
		return Decision{Reason: SizeBelowMinimum}
	}

	size := sig.Size
	budget := math.Min(p.MaxTradeRisk(s.AccountBalance), remaining)
	if riskPerUnit*size > budget {
		size = floorToUnit(budget/riskPerUnit, p.MinUnit)
	}
	if size <= 0 {
		return Decision{Reason: SizeBelowMinimum}
	}
	risk := riskPerUnit * size

	// The buffer above the equity floor must absorb a full stop-out.
	buffer := s.CurrentEquity - p.EquityFloor(s.AccountBalance)
	if buffer < risk {
		size = floorToUnit(size*buffer/risk, p.MinUnit)
		if size <= 0 {
			return Decision{Reason: SizeBelowMinimum}
		}
		risk = riskPerUnit * size
	}

	sized := sig
	sized.Size = size
	sized.RiskAmount = risk
	return Decision{Accepted: true, Signal: sized}
}

func floorToUnit(size, unit float64) float64 {
	if unit <= 0 {
		unit = 1
	}
	return math.Floor(size/unit) * unit
}
