package model

import "encoding/json"

// Candle represents one OHLCV bar for a symbol/interval pair, and doubles as
// the shape of a raw exchange tick before it has been reconciled into a
// buffer: a tick and a sealed candle carry identical fields, differing only
// in whether IsClosed is already true when it arrives.
//
// Invariant: Low <= Open,Close <= High and Volume >= 0. Callers that parse
// exchange payloads are responsible for enforcing this before the candle
// ever reaches a CandleBuffer; the buffer itself never validates prices.
type Candle struct {
	OpenTime int64   `json:"open_time"` // ms since epoch, interval-aligned
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
	IsClosed bool    `json:"is_closed"`
}

// JSON returns the JSON-encoded candle (errors ignored for hot-path usage).
func (c Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}
