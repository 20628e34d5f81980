// Package journal persists closed trades and equity snapshots for later
// analysis, to CSV files or a SQLite database.
package journal

import "time"

// TradeRecord is the finalized record of one closed trade.
type TradeRecord struct {
	TradeID      string
	Symbol       string
	Direction    string
	Size         float64
	EntryPrice   float64
	ExitPrice    float64
	OpenTime     time.Time
	CloseTime    time.Time
	RealizedPL   float64
	Reason       string
	MaxFavorable float64
}

// EquitySnapshot captures the account state at a point in time.
type EquitySnapshot struct {
	Time           time.Time
	Balance        float64
	Equity         float64
	DailyPnL       float64
	TradesToday    int
	TradingEnabled bool
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Noop discards everything; useful in tests and dry runs.
type Noop struct{}

func (Noop) RecordTrade(TradeRecord) error     { return nil }
func (Noop) RecordEquity(EquitySnapshot) error { return nil }
func (Noop) Close() error                      { return nil }
