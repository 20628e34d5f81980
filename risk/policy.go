// Package risk owns the account-level guardian: the running equity and
// drawdown state, the limit policy, and the gate every trade signal must
// pass before it becomes a position.
package risk

// Policy carries the account-level risk ceilings. Percentages are
// fractions of the session-start balance.
type Policy struct {
	// MaxDailyLossPct caps cumulative daily loss before entries are blocked.
	MaxDailyLossPct float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`

	// MaxRiskPerTradePct caps the risk amount of a single trade.
	MaxRiskPerTradePct float64 `json:"max_risk_per_trade_pct" yaml:"max_risk_per_trade_pct"`

	// EquityFloorPct is the minimum equity/balance ratio; below it all
	// trading halts and open positions are force-closed.
	EquityFloorPct float64 `json:"equity_floor_pct" yaml:"equity_floor_pct"`

	// MinUnit is the smallest tradable size increment (exchange lot step).
	MinUnit float64 `json:"min_unit" yaml:"min_unit"`
}

// DefaultPolicy: 5% daily loss, 3% per trade, 90% equity floor,
// whole-unit sizing.
func DefaultPolicy() Policy {
	return Policy{
		MaxDailyLossPct:    0.05,
		MaxRiskPerTradePct: 0.03,
		EquityFloorPct:     0.90,
		MinUnit:            1.0,
	}
}

// MaxDailyLoss returns the daily loss ceiling in account currency.
func (p Policy) MaxDailyLoss(balance float64) float64 {
	return balance * p.MaxDailyLossPct
}

// MaxTradeRisk returns the per-trade risk ceiling in account currency.
func (p Policy) MaxTradeRisk(balance float64) float64 {
	return balance * p.MaxRiskPerTradePct
}

// EquityFloor returns the forced-liquidation equity level.
func (p Policy) EquityFloor(balance float64) float64 {
	return balance * p.EquityFloorPct
}
