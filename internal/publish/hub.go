// Package publish fans out emitted trading signals and verification
// results to connected WebSocket clients. It has no storage layer of
// its own: every envelope it broadcasts is also the caller's to persist
// via internal/output if it wants durability.
package publish

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"signalengine/internal/model"
)

// Envelope is the wire shape every broadcast message shares.
type Envelope struct {
	Channel    string          `json:"channel"`
	Data       json.RawMessage `json:"data"`
	TS         string          `json:"ts"`
	Seq        int64           `json:"seq"`
	ChannelSeq int64           `json:"channel_seq"`
}

type latestEntry struct {
	Data json.RawMessage
	TS   time.Time
	Seq  int64
}

// Hub tracks connected WebSocket clients and broadcasts symbol-scoped
// signal/verification updates to them. It buffers recent envelopes per
// channel, readable through GetReplayRange; a connecting client is sent
// only the latest envelope of each channel, and the client protocol has
// no message that requests a replay.
type Hub struct {
	Symbol string

	mu          sync.RWMutex
	clients     map[*Client]bool
	latest      map[string]latestEntry
	channelSeqs map[string]int64
	replayBufs  map[string]*ReplayBuffer
	seq         int64

	Latency *LatencyTracker
}

// NewHub creates a Hub scoped to a single symbol's signal/verification
// stream.
func NewHub(symbol string) *Hub {
	return &Hub{
		Symbol:      symbol,
		clients:     make(map[*Client]bool),
		latest:      make(map[string]latestEntry),
		channelSeqs: make(map[string]int64),
		replayBufs:  make(map[string]*ReplayBuffer),
		Latency:     NewLatencyTracker(10000),
	}
}

// PublishSignal broadcasts a freshly generated signal on the "signal"
// channel and records candle-close-to-publish latency.
func (h *Hub) PublishSignal(sig model.TradingSignal, candleCloseTime time.Time) {
	data, err := json.Marshal(sig)
	if err != nil {
		log.Error().Err(err).Msg("publish: marshal signal")
		return
	}
	if !candleCloseTime.IsZero() {
		h.Latency.Record(float64(time.Since(candleCloseTime).Microseconds()) / 1000.0)
	}
	h.broadcast("signal", data)
}

// PublishVerification broadcasts a resolved horizon result on the
// "verify" channel.
func (h *Hub) PublishVerification(signalID string, horizon int, result model.HorizonResult) {
	payload := struct {
		SignalID string             `json:"signal_id"`
		Horizon  int                `json:"horizon_minutes"`
		Result   model.HorizonResult `json:"result"`
	}{signalID, horizon, result}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("publish: marshal verification")
		return
	}
	h.broadcast("verify", data)
}

// PublishSnapshot broadcasts the immutable per-tick state on the
// "snapshot" channel. Callers must only call this once a tick's full
// pipeline pass has finished building snap, so a client never observes a
// torn mix of pre- and post-update state.
func (h *Hub) PublishSnapshot(snap model.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Msg("publish: marshal snapshot")
		return
	}
	h.broadcast("snapshot", data)
}

func (h *Hub) broadcast(channel string, data []byte) {
	now := time.Now().UTC()

	h.mu.Lock()
	h.channelSeqs[channel]++
	channelSeq := h.channelSeqs[channel]
	h.latest[channel] = latestEntry{Data: data, TS: now, Seq: channelSeq}
	h.seq++
	seq := h.seq

	rb, ok := h.replayBufs[channel]
	if !ok {
		rb = NewReplayBuffer(500)
		h.replayBufs[channel] = rb
	}
	h.mu.Unlock()

	env := Envelope{Channel: channel, Data: data, TS: now.Format(time.RFC3339Nano), Seq: seq, ChannelSeq: channelSeq}
	buf, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Msg("publish: marshal envelope")
		return
	}
	rb.Push(channelSeq, buf)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- buf:
		default:
			log.Warn().Str("channel", channel).Msg("publish: client send buffer full, dropping")
		}
	}
}

// AddClient registers a newly upgraded connection and starts its pumps.
func (h *Hub) AddClient(conn *websocket.Conn) {
	client := &Client{conn: conn, send: make(chan []byte, 256), hub: h}
	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Info().Int("clients", count).Str("symbol", h.Symbol).Msg("publish: client connected")

	go client.sendInitialState()
	go client.writePump()
	go client.readPump()
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	close(c.send)
}

// ClientCount returns the number of connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetReplayRange returns buffered envelopes for a channel in
// [fromSeq, toSeq], for a client resyncing after a short drop.
func (h *Hub) GetReplayRange(channel string, fromSeq, toSeq int64) [][]byte {
	h.mu.RLock()
	rb, ok := h.replayBufs[channel]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	entries := rb.Range(fromSeq, toSeq)
	out := make([][]byte, len(entries))
	for i, e := range entries {
		out[i] = e.Data
	}
	return out
}

// LatencyPercentiles reports the p50/p95/p99 candle-close-to-publish
// latency in milliseconds.
func (h *Hub) LatencyPercentiles() (p50, p95, p99 float64) {
	return h.Latency.Percentiles()
}
