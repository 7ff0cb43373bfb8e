// Package rest fetches historical klines over HTTP to seed a candle
// buffer before the WebSocket feed's first frame arrives, so indicator
// kernels don't spend their first N candles in warm-up on every restart.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"signalengine/internal/model"
)

// DefaultBaseURL is the USDT-margined perpetual futures REST endpoint.
const DefaultBaseURL = "https://fapi.binance.com"

// Fetcher retrieves historical candles for one symbol/interval pair.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFetcher creates a Fetcher with sane defaults.
func NewFetcher() *Fetcher {
	return &Fetcher{
		BaseURL: DefaultBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Backfill fetches up to limit historical candles ending at "now" via
// the continuous-contract klines endpoint, retrying transient failures
// (5xx, timeouts) with exponential backoff.
func (f *Fetcher) Backfill(ctx context.Context, pair, contractType, interval string, limit int) ([]model.Candle, error) {
	var candles []model.Candle

	op := func() error {
		u, err := f.klinesURL(pair, contractType, interval, limit)
		if err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := f.Client.Do(req)
		if err != nil {
			return fmt.Errorf("rest: backfill request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("rest: backfill: server error %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("rest: backfill: unexpected status %d", resp.StatusCode))
		}

		parsed, err := parseKlines(resp.Body, time.Now().UnixMilli())
		if err != nil {
			return backoff.Permanent(err)
		}
		candles = parsed
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return candles, nil
}

func (f *Fetcher) klinesURL(pair, contractType, interval string, limit int) (string, error) {
	base, err := url.Parse(f.BaseURL + "/fapi/v1/continuousKlines")
	if err != nil {
		return "", fmt.Errorf("rest: parse base url: %w", err)
	}
	q := base.Query()
	q.Set("pair", pair)
	q.Set("contractType", contractType)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// rawKline mirrors one element of the exchange's klines array response:
// [openTime, open, high, low, close, volume, closeTime, ...].
type rawKline []json.RawMessage

func parseKlines(body io.Reader, nowMs int64) ([]model.Candle, error) {
	var raw []rawKline
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("rest: decode klines: %w", err)
	}

	out := make([]model.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 7 {
			return nil, fmt.Errorf("rest: kline row has %d fields, want >= 7", len(k))
		}
		c, err := decodeKlineRow(k, nowMs)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeKlineRow(k rawKline, nowMs int64) (model.Candle, error) {
	var openTime, closeTime int64
	var open, high, low, close, volume string

	if err := json.Unmarshal(k[0], &openTime); err != nil {
		return model.Candle{}, fmt.Errorf("rest: decode open_time: %w", err)
	}
	if err := json.Unmarshal(k[6], &closeTime); err != nil {
		return model.Candle{}, fmt.Errorf("rest: decode close_time: %w", err)
	}
	fields := []*string{&open, &high, &low, &close, &volume}
	for i, f := range fields {
		if err := json.Unmarshal(k[i+1], f); err != nil {
			return model.Candle{}, fmt.Errorf("rest: decode kline field %d: %w", i+1, err)
		}
	}

	o, err1 := strconv.ParseFloat(open, 64)
	h, err2 := strconv.ParseFloat(high, 64)
	l, err3 := strconv.ParseFloat(low, 64)
	c, err4 := strconv.ParseFloat(close, 64)
	v, err5 := strconv.ParseFloat(volume, 64)
	for _, e := range []error{err1, err2, err3, err4, err5} {
		if e != nil {
			return model.Candle{}, fmt.Errorf("rest: parse kline numeric field: %w", e)
		}
	}

	return model.Candle{
		OpenTime: openTime,
		Open:     o,
		High:     h,
		Low:      l,
		Close:    c,
		Volume:   v,
		IsClosed: closeTime < nowMs,
	}, nil
}
