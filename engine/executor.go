package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/fvgtrader/position"
)

// Executor is the execution collaborator: it receives entry and close
// intents. The engine assumes intents fill at the requested levels; fill
// confirmation and exchange order management are out of scope.
type Executor interface {
	PlaceOrder(ctx context.Context, intent position.OrderIntent) error
	ClosePosition(ctx context.Context, intent position.CloseIntent) error
}

// LogExecutor logs every intent and fills nothing. It is the default
// executor for replay and dry runs.
type LogExecutor struct {
	Log zerolog.Logger
}

func (e *LogExecutor) PlaceOrder(_ context.Context, intent position.OrderIntent) error {
	e.Log.Info().
		Str("direction", intent.Direction.String()).
		Float64("size", intent.Size).
		Float64("entry", intent.EntryPrice).
		Float64("stop", intent.StopLoss).
		Float64("tp1", intent.TakeProfit1).
		Float64("tp2", intent.TakeProfit2).
		Msg("place order")
	return nil
}

func (e *LogExecutor) ClosePosition(_ context.Context, intent position.CloseIntent) error {
	e.Log.Info().
		Float64("fraction", intent.SizeFraction).
		Str("reason", string(intent.Reason)).
		Msg("close position")
	return nil
}
