// Package feed streams completed candles from the Bybit public kline
// websocket into the decision loop. Only confirmed bars are forwarded;
// in-progress updates for the open bar are dropped.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/fvgtrader/market"
)

const (
	handshakeTimeout = 10 * time.Second
	pingPeriod       = 20 * time.Second
	writeTimeout     = 5 * time.Second
	readLimit        = 1 << 20

	// maxBackoff caps the reconnect delay; the delay doubles from one
	// second on each consecutive failure.
	maxBackoff = 60 * time.Second
)

// Config parameterizes the Bybit feed.
type Config struct {
	// URL is the public websocket endpoint, for example
	// wss://stream.bybit.com/v5/public/linear.
	URL string

	// Symbol and Interval form the kline topic, e.g. "BTCUSDT" and "5".
	Symbol   string
	Interval string

	Log zerolog.Logger
}

// BybitFeed maintains the websocket subscription and pushes confirmed
// candles to its output channel. It reconnects with exponential backoff
// and deduplicates bars across reconnects by their start time.
type BybitFeed struct {
	cfg Config
	log zerolog.Logger

	// lastStart is the start time of the newest forwarded bar.
	lastStart int64
}

func NewBybit(cfg Config) (*BybitFeed, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("feed: url is required")
	}
	if cfg.Symbol == "" || cfg.Interval == "" {
		return nil, fmt.Errorf("feed: symbol and interval are required")
	}
	return &BybitFeed{
		cfg: cfg,
		log: cfg.Log.With().Str("symbol", cfg.Symbol).Str("interval", cfg.Interval).Logger(),
	}, nil
}

// Topic returns the kline subscription topic.
func (f *BybitFeed) Topic() string {
	return fmt.Sprintf("kline.%s.%s", f.cfg.Interval, f.cfg.Symbol)
}

// Run connects, subscribes and forwards confirmed candles to out until the
// context is cancelled. The channel is closed on return.
func (f *BybitFeed) Run(ctx context.Context, out chan<- market.Candle) error {
	defer close(out)

	backoff := time.Second
	for {
		if err := f.session(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Dur("backoff", backoff).Msg("feed disconnected, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// session runs one connect-subscribe-read cycle and returns on any error.
func (f *BybitFeed) session(ctx context.Context, out chan<- market.Candle) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, f.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.cfg.URL, err)
	}
	defer conn.Close()

	conn.SetReadLimit(readLimit)

	sub := map[string]any{"op": "subscribe", "args": []string{f.Topic()}}
	if err := f.writeJSON(conn, sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	f.log.Info().Str("topic", f.Topic()).Msg("subscribed")

	// Close the connection when the context ends so the blocked read
	// below returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	go func() {
		for {
			select {
			case <-ping.C:
				if err := f.writeJSON(conn, map[string]any{"op": "ping"}); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		candles, err := f.parse(data)
		if err != nil {
			f.log.Warn().Err(err).Msg("unparseable kline message")
			continue
		}

		for _, c := range candles {
			select {
			case out <- c:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (f *BybitFeed) writeJSON(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// klineMessage is the Bybit v5 kline push format. OHLCV fields arrive as
// strings; Confirm marks the bar as closed.
type klineMessage struct {
	Topic string `json:"topic"`
	Data  []struct {
		Start    int64  `json:"start"`
		Interval string `json:"interval"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
		Confirm  bool   `json:"confirm"`
	} `json:"data"`
}

// parse extracts confirmed, not-yet-seen candles from a raw message.
// Non-kline messages (subscription acks, pongs) yield an empty slice.
func (f *BybitFeed) parse(raw []byte) ([]market.Candle, error) {
	var msg klineMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode kline: %w", err)
	}
	if msg.Topic != f.Topic() {
		return nil, nil
	}

	var out []market.Candle
	for _, k := range msg.Data {
		if !k.Confirm || k.Start <= f.lastStart {
			continue
		}

		c, err := toCandle(k.Start, k.Open, k.High, k.Low, k.Close, k.Volume)
		if err != nil {
			return nil, err
		}
		f.lastStart = k.Start
		out = append(out, c)
	}
	return out, nil
}

func toCandle(start int64, open, high, low, close_, volume string) (market.Candle, error) {
	var (
		c   market.Candle
		err error
	)
	c.Time = time.UnixMilli(start).UTC()

	fields := []struct {
		dst *float64
		src string
	}{
		{&c.Open, open}, {&c.High, high}, {&c.Low, low},
		{&c.Close, close_}, {&c.Volume, volume},
	}
	for _, fld := range fields {
		if *fld.dst, err = strconv.ParseFloat(fld.src, 64); err != nil {
			return market.Candle{}, fmt.Errorf("parse %q: %w", fld.src, err)
		}
	}
	return c, nil
}
