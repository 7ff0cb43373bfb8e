// Package ws streams closed-and-forming kline updates from a perpetual
// futures exchange's WebSocket feed, normalizing them into model.Candle
// and reconnecting with exponential backoff on any drop.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"signalengine/internal/model"
)

// DefaultBaseURL is the USDT-margined perpetual futures raw-stream
// endpoint (one stream per connection). Overridable for testing against a
// local fixture server.
const DefaultBaseURL = "wss://fstream.binance.com/ws"

// IngestConfig configures one symbol/interval kline stream.
type IngestConfig struct {
	BaseURL  string
	Symbol   string // e.g. "BTCUSDT"
	Interval string // e.g. "5m"

	// OnReconnect, if set, is invoked after every successful reconnect
	// (not after the first connect) so callers can bump a metrics counter.
	OnReconnect func()
}

// Ingest owns the WebSocket connection lifecycle for one kline stream.
type Ingest struct {
	cfg IngestConfig
}

// New creates an Ingest for the given config, filling in BaseURL if unset.
func New(cfg IngestConfig) *Ingest {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Ingest{cfg: cfg}
}

// streamURL builds the exchange's kline stream URL, e.g.
// wss://fstream.binance.com/ws/btcusdt@kline_5m.
func (ing *Ingest) streamURL() string {
	stream := fmt.Sprintf("%s@kline_%s", strings.ToLower(ing.cfg.Symbol), ing.cfg.Interval)
	return ing.cfg.BaseURL + "/" + stream
}

// Run connects and streams candles into candleCh until ctx is cancelled,
// reconnecting with exponential backoff whenever the connection drops.
// It only returns once ctx is done.
func (ing *Ingest) Run(ctx context.Context, candleCh chan<- model.Candle) {
	first := true
	for ctx.Err() == nil {
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 0 // retry forever; caller controls lifetime via ctx

		err := backoff.Retry(func() error {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return ing.connectAndStream(ctx, candleCh, &first)
		}, backoff.WithContext(bo, ctx))

		first = false
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("ws: retry loop exited unexpectedly, restarting")
		}
	}
}

func (ing *Ingest) connectAndStream(ctx context.Context, candleCh chan<- model.Candle, first *bool) error {
	url := ing.streamURL()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("ws: dial %s: %w", url, err)
	}
	defer conn.Close()

	if !*first && ing.cfg.OnReconnect != nil {
		ing.cfg.OnReconnect()
	}
	*first = false
	log.Info().Str("symbol", ing.cfg.Symbol).Str("interval", ing.cfg.Interval).Msg("ws: connected")

	conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
				return backoff.Permanent(ctx.Err())
			default:
				return fmt.Errorf("ws: read: %w", err)
			}
		}

		candle, err := parseKlineEvent(msg)
		if err != nil {
			log.Warn().Err(err).Msg("ws: dropping malformed frame")
			continue
		}

		select {
		case candleCh <- candle:
		case <-ctx.Done():
			return backoff.Permanent(ctx.Err())
		default:
			log.Warn().Msg("ws: candle channel full, dropping frame")
		}
	}
}

// klineEvent mirrors the exchange's single-stream kline event payload
// (kline fields under "k").
type klineEvent struct {
	Kline struct {
		OpenTime int64  `json:"t"`
		Open     string `json:"o"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Close    string `json:"c"`
		Volume   string `json:"v"`
		IsClosed bool   `json:"x"`
	} `json:"k"`
}

func parseKlineEvent(msg []byte) (model.Candle, error) {
	var ev klineEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return model.Candle{}, fmt.Errorf("unmarshal kline event: %w", err)
	}

	open, err1 := strconv.ParseFloat(ev.Kline.Open, 64)
	high, err2 := strconv.ParseFloat(ev.Kline.High, 64)
	low, err3 := strconv.ParseFloat(ev.Kline.Low, 64)
	closePrice, err4 := strconv.ParseFloat(ev.Kline.Close, 64)
	volume, err5 := strconv.ParseFloat(ev.Kline.Volume, 64)
	for _, e := range []error{err1, err2, err3, err4, err5} {
		if e != nil {
			return model.Candle{}, fmt.Errorf("parse kline fields: %w", e)
		}
	}

	return model.Candle{
		OpenTime: ev.Kline.OpenTime,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		Volume:   volume,
		IsClosed: ev.Kline.IsClosed,
	}, nil
}
