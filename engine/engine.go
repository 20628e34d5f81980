// Package engine runs the per-candle decision loop: ingest, detect,
// confirm, gate, supervise. One goroutine owns all mutation of the risk
// and position state; collaborators (feed, journal, notifier, executor)
// hang off the edges.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/fvgtrader/fvg"
	"github.com/rustyeddy/fvgtrader/indicators"
	"github.com/rustyeddy/fvgtrader/journal"
	"github.com/rustyeddy/fvgtrader/market"
	"github.com/rustyeddy/fvgtrader/metrics"
	"github.com/rustyeddy/fvgtrader/notify"
	"github.com/rustyeddy/fvgtrader/position"
	"github.com/rustyeddy/fvgtrader/risk"
)

// Options assembles an Engine. Zero-value collaborators fall back to
// no-ops so tests can construct an engine from just the strategy knobs.
type Options struct {
	Symbol string

	Detector  fvg.DetectorConfig
	Exits     position.Config
	Policy    risk.Policy
	Balance   float64
	ATRPeriod int

	// ExpiryBars bounds how long an unconfirmed zone survives.
	ExpiryBars int

	// BiasFilter gates entries on the SMA trend direction when true.
	BiasFilter bool

	Journal  journal.Journal
	Notifier notify.Notifier
	Executor Executor
	Log      zerolog.Logger

	// Now supplies the session start time; defaults to time.Now.
	Now func() time.Time
}

// Engine owns the decision loop state: the candle store, the pending-zone
// confirmer, the account risk state and the position supervisor. OnCandle
// must be called from a single goroutine; the store's own mutex covers a
// concurrent ingestion path.
type Engine struct {
	opts Options
	log  zerolog.Logger

	store     *market.Store
	confirmer *fvg.Confirmer
	state     *risk.State
	sup       *position.Supervisor

	journal  journal.Journal
	notifier notify.Notifier
	exec     Executor
}

// New builds an engine from options. The balance must be positive.
func New(opts Options) (*Engine, error) {
	if opts.Balance <= 0 {
		return nil, fmt.Errorf("engine: balance must be positive, got %v", opts.Balance)
	}
	if opts.ATRPeriod <= 0 {
		opts.ATRPeriod = 14
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Journal == nil {
		opts.Journal = journal.Noop{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	if opts.Executor == nil {
		opts.Executor = &LogExecutor{Log: opts.Log}
	}

	return &Engine{
		opts:      opts,
		log:       opts.Log.With().Str("symbol", opts.Symbol).Logger(),
		store:     market.NewStore(market.DefaultCapacity),
		confirmer: fvg.NewConfirmer(opts.Detector.VolMult, opts.ExpiryBars),
		state:     risk.NewState(opts.Balance, opts.Now()),
		sup:       position.NewSupervisor(opts.Exits),
		journal:   opts.Journal,
		notifier:  opts.Notifier,
		exec:      opts.Executor,
	}, nil
}

// Snapshot is a read-only view of the engine for reporting.
type Snapshot struct {
	Risk     risk.State
	Position *position.Position
	Pending  int
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Risk:    e.state.Snapshot(),
		Pending: len(e.confirmer.Active()),
	}
	if p, ok := e.sup.Position(); ok {
		snap.Position = &p
	}
	return snap
}

// Run consumes candles until the channel closes or the context is
// cancelled. On shutdown an open position is force-closed at the last
// known close so the journal never loses a trade.
func (e *Engine) Run(ctx context.Context, candles <-chan market.Candle) error {
	defer e.shutdown(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-candles:
			if !ok {
				return nil
			}
			if err := e.OnCandle(ctx, c); err != nil {
				return err
			}
		}
	}
}

// OnCandle runs one decision cycle for a completed candle. It returns an
// error only on an invariant violation; per-candle problems (bad OHLC,
// rejected signals) are logged and absorbed.
func (e *Engine) OnCandle(ctx context.Context, c market.Candle) error {
	e.checkDayBoundary(c.Time)

	if err := e.store.Append(c); err != nil {
		var verr *market.ValidationError
		if errors.As(err, &verr) {
			metrics.CandleRejected()
			e.log.Warn().Err(err).Time("candle", c.Time).Msg("candle rejected")
			return nil
		}
		return err
	}

	if e.sup.HasOpen() {
		e.superviseOpen(ctx, c)
		return nil
	}

	window := e.store.Window(market.DefaultCapacity)
	avgVol := indicators.AvgVolume(window[:len(window)-1], e.opts.Detector.VolPeriod)

	// Pending zones see the new candle before detection runs on it, so a
	// zone can only be confirmed by a candle later than the one that
	// created it.
	sig := e.confirmer.Update(c, avgVol)

	if z := fvg.Detect(window, e.opts.Detector); z != nil {
		e.confirmer.Track(z)
		metrics.ZoneDetected(z.Direction.String())
		e.log.Info().
			Str("zone", z.ID).
			Str("direction", z.Direction.String()).
			Float64("low", z.Low).
			Float64("high", z.High).
			Msg("imbalance zone detected")
	}

	if sig == nil {
		return nil
	}
	metrics.BreakoutConfirmed(sig.Direction.String())

	return e.tryEnter(ctx, *sig, window)
}

// superviseOpen advances the open position by one candle and settles any
// resulting closure into the risk state. No new entry is considered in the
// cycle a position closes.
func (e *Engine) superviseOpen(ctx context.Context, c market.Candle) {
	riskBreached := e.state.FloorBreached(e.opts.Policy) ||
		e.state.RemainingDailyBudget(e.opts.Policy) <= 0

	res := e.sup.Update(c, riskBreached)

	switch {
	case res.Closed != nil:
		e.settleClose(ctx, res.Closed, res.Intent)

	case res.Partial != nil:
		if err := e.exec.ClosePosition(ctx, *res.Partial); err != nil {
			e.log.Error().Err(err).Msg("partial close intent failed")
		}
		e.state.MarkToMarket(res.Unrealized)
		metrics.Equity(e.state.CurrentEquity)
		e.log.Info().
			Float64("fraction", res.Partial.SizeFraction).
			Float64("unrealized", res.Unrealized).
			Msg("partial exit at first target, stop to breakeven")

	default:
		e.state.MarkToMarket(res.Unrealized)
		metrics.Equity(e.state.CurrentEquity)
	}
}

// settleClose realizes a finished trade: executor intent, risk accounting,
// journal, metrics, notification.
func (e *Engine) settleClose(ctx context.Context, closed *position.Closed, intent *position.CloseIntent) {
	if intent != nil {
		if err := e.exec.ClosePosition(ctx, *intent); err != nil {
			e.log.Error().Err(err).Msg("close intent failed")
		}
	}

	e.state.MarkToMarket(0)
	e.state.ApplyClose(closed.PnL, e.opts.Policy)
	metrics.Equity(e.state.CurrentEquity)
	metrics.TradeClosed(string(closed.Reason), closed.PnL)

	if err := e.journal.RecordTrade(journal.TradeRecord{
		TradeID:      closed.ID,
		Symbol:       e.opts.Symbol,
		Direction:    closed.Direction.String(),
		Size:         closed.Size,
		EntryPrice:   closed.Entry,
		ExitPrice:    closed.Exit,
		OpenTime:     closed.EntryTime,
		CloseTime:    closed.CloseTime,
		RealizedPL:   closed.PnL,
		Reason:       string(closed.Reason),
		MaxFavorable: closed.MaxFavorable,
	}); err != nil {
		e.log.Error().Err(err).Msg("journal trade failed")
	}
	e.recordEquity(closed.CloseTime)

	e.log.Info().
		Str("trade", closed.ID).
		Str("reason", string(closed.Reason)).
		Float64("pnl", closed.PnL).
		Float64("equity", e.state.CurrentEquity).
		Msg("position closed")

	e.notifyAsync("Trade closed", fmt.Sprintf(
		"%s %s %.4f @ %.2f -> %.2f\nP&L: %+.2f (%s)\nEquity: %.2f",
		e.opts.Symbol, closed.Direction, closed.Size, closed.Entry,
		closed.Exit, closed.PnL, closed.Reason, e.state.CurrentEquity,
	))

	if !e.state.TradingEnabled {
		e.log.Warn().
			Float64("daily_pnl", e.state.DailyPnL()).
			Float64("equity", e.state.CurrentEquity).
			Msg("trading halted by risk limits")
		e.notifyAsync("Trading halted", fmt.Sprintf(
			"Daily P&L %.2f, equity %.2f. Entries blocked until reset.",
			e.state.DailyPnL(), e.state.CurrentEquity,
		))
	}
}

// tryEnter plans, sizes and gates a confirmed signal, then opens the
// position if the gate accepts.
func (e *Engine) tryEnter(ctx context.Context, sig fvg.Signal, window []market.Candle) error {
	atr := indicators.ATRFunc(window, e.opts.ATRPeriod)
	if atr <= 0 {
		e.log.Debug().Msg("atr not ready, skipping cycle")
		return nil
	}

	if e.opts.BiasFilter {
		if b := detectBias(window); !b.allows(sig.Direction) {
			e.log.Debug().
				Str("bias", b.String()).
				Str("direction", sig.Direction.String()).
				Msg("signal against bias, skipped")
			return nil
		}
	}

	planned := e.sup.Plan(sig, atr)
	planned.Size = risk.SuggestSize(planned.Entry, planned.StopLoss, e.state, e.opts.Policy)

	decision := risk.Validate(planned, e.state, e.opts.Policy)
	if !decision.Accepted {
		metrics.SignalRejected(string(decision.Reason))
		e.log.Info().
			Str("reason", string(decision.Reason)).
			Str("direction", sig.Direction.String()).
			Float64("entry", planned.Entry).
			Msg("signal rejected")
		return nil
	}

	intent, err := e.sup.Open(decision.Signal)
	if err != nil {
		var iv *position.InvariantViolation
		if errors.As(err, &iv) {
			e.state.Disable()
			e.log.Error().Err(err).Msg("invariant violation, trading disabled")
			e.notifyAsync("Invariant violation", iv.Error())
		}
		return err
	}

	if err := e.exec.PlaceOrder(ctx, intent); err != nil {
		e.log.Error().Err(err).Msg("order intent failed")
	}

	s := decision.Signal
	e.log.Info().
		Str("direction", s.Direction.String()).
		Float64("entry", s.Entry).
		Float64("stop", s.StopLoss).
		Float64("tp1", s.TakeProfit1).
		Float64("tp2", s.TakeProfit2).
		Float64("size", s.Size).
		Float64("risk", s.RiskAmount).
		Msg("position opened")

	e.notifyAsync("Trade opened", fmt.Sprintf(
		"%s %s %.4f @ %.2f\nStop %.2f | TP1 %.2f | TP2 %.2f\nRisk %.2f",
		e.opts.Symbol, s.Direction, s.Size, s.Entry,
		s.StopLoss, s.TakeProfit1, s.TakeProfit2, s.RiskAmount,
	))
	return nil
}

// checkDayBoundary resets the daily risk counters when the candle time
// crosses into a new UTC day. Candle time drives the reset so replays
// behave exactly like live runs.
func (e *Engine) checkDayBoundary(now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	if !day.After(e.state.Day) {
		return
	}

	prev := e.state.Snapshot()
	e.state.DailyReset(now, e.opts.Policy)
	e.confirmer.Reset()
	e.recordEquity(now)

	e.log.Info().
		Float64("prev_daily_pnl", prev.DailyRealized).
		Int("prev_trades", prev.TradesToday).
		Bool("trading_enabled", e.state.TradingEnabled).
		Msg("daily reset")

	e.notifyAsync("Daily summary", fmt.Sprintf(
		"%s: %d trades, %d wins, daily P&L %+.2f, equity %.2f",
		e.opts.Symbol, prev.TradesToday, prev.WinsToday,
		prev.DailyRealized, prev.CurrentEquity,
	))
}

func (e *Engine) recordEquity(now time.Time) {
	if err := e.journal.RecordEquity(journal.EquitySnapshot{
		Time:           now,
		Balance:        e.state.AccountBalance,
		Equity:         e.state.CurrentEquity,
		DailyPnL:       e.state.DailyPnL(),
		TradesToday:    e.state.TradesToday,
		TradingEnabled: e.state.TradingEnabled,
	}); err != nil {
		e.log.Error().Err(err).Msg("journal equity failed")
	}
}

// notifyAsync dispatches a notification without blocking the decision
// loop. Failures are logged, never propagated.
func (e *Engine) notifyAsync(title, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.notifier.Send(ctx, title, message); err != nil {
			e.log.Warn().Err(err).Str("title", title).Msg("notification failed")
		}
	}()
}

// shutdown force-closes any open position at the last stored close.
func (e *Engine) shutdown(ctx context.Context) {
	if !e.sup.HasOpen() {
		return
	}
	last, ok := e.store.Last()
	if !ok {
		return
	}

	if res := e.sup.ForceClose(last.Close, last.Time, position.ReasonRiskOverride); res != nil && res.Closed != nil {
		e.log.Info().Str("trade", res.Closed.ID).Msg("force-closing open position on shutdown")
		e.settleClose(ctx, res.Closed, res.Intent)
	}
}
