// Package metrics exposes the Prometheus instrumentation the engine
// updates during operation:
//
//   - fvg_zones_detected_total{direction}   – zones emitted by the detector
//   - fvg_breakouts_confirmed_total{direction} – confirmed breakouts
//   - fvg_signals_rejected_total{reason}    – risk-gate rejections
//   - fvg_trades_closed_total{reason,result} – closed trades
//   - fvg_equity_usd                        – current equity snapshot
//   - fvg_candles_rejected_total            – candles failing validation
//
// Registered in init() and served by Handler() in the Prometheus text
// exposition format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	zonesDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvg_zones_detected_total",
			Help: "Imbalance zones emitted by the gap detector",
		},
		[]string{"direction"},
	)

	breakoutsConfirmed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvg_breakouts_confirmed_total",
			Help: "Zones confirmed into trade signals",
		},
		[]string{"direction"},
	)

	signalsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvg_signals_rejected_total",
			Help: "Signals rejected by the risk gate, by reason",
		},
		[]string{"reason"},
	)

	tradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fvg_trades_closed_total",
			Help: "Closed trades by close reason and result (win|loss)",
		},
		[]string{"reason", "result"},
	)

	equity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fvg_equity_usd",
			Help: "Current equity in account currency",
		},
	)

	candlesRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fvg_candles_rejected_total",
			Help: "Candles rejected by OHLC validation",
		},
	)
)

func init() {
	prometheus.MustRegister(
		zonesDetected,
		breakoutsConfirmed,
		signalsRejected,
		tradesClosed,
		equity,
		candlesRejected,
	)
}

func ZoneDetected(direction string)      { zonesDetected.WithLabelValues(direction).Inc() }
func BreakoutConfirmed(direction string) { breakoutsConfirmed.WithLabelValues(direction).Inc() }
func SignalRejected(reason string)       { signalsRejected.WithLabelValues(reason).Inc() }
func CandleRejected()                    { candlesRejected.Inc() }
func Equity(v float64)                   { equity.Set(v) }

func TradeClosed(reason string, pnl float64) {
	result := "loss"
	if pnl > 0 {
		result = "win"
	}
	tradesClosed.WithLabelValues(reason, result).Inc()
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
