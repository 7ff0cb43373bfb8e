// Package candlebuf reconciles a stream of raw exchange ticks into an
// ordered candle series: a bounded ring of sealed candles plus one active,
// still-forming candle. The merge/seal rules mirror an incremental
// timeframe resampler, adapted from "N one-second candles fold into one
// TF candle" to "N ticks sharing an open_time fold into one candle."
package candlebuf

import (
	"signalengine/internal/model"
	"signalengine/internal/ringbuf"
)

// DefaultCapacity is the default bounded ring size.
const DefaultCapacity = 300

// Buffer holds the closed-candle ring plus the single active candle for one
// symbol/interval pair. Not safe for concurrent use — the concurrency
// model serializes updates per timeframe onto one goroutine.
type Buffer struct {
	closed         *ringbuf.Ring
	active         *model.Candle
	lastClosedTime int64
	hasClosed      bool
}

// New creates an empty buffer whose closed ring is sized from capacity.
// The ring rounds capacity up to the next power of two, so New(300) keeps
// up to 512 closed candles.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{closed: ringbuf.New(capacity)}
}

// Update applies one tick per four merge/seal rules. It never fails and
// never panics — malformed ticks are rejected upstream, before Update is
// entered.
func (b *Buffer) Update(tick model.Candle) {
	// Rule 1: replay protection for closed-bar ticks behind last_closed_time.
	if tick.IsClosed && b.hasClosed && tick.OpenTime <= b.lastClosedTime {
		return
	}

	if b.active != nil && b.active.OpenTime == tick.OpenTime {
		// Rule 2: merge into the active candle.
		if tick.High > b.active.High {
			b.active.High = tick.High
		}
		if tick.Low < b.active.Low {
			b.active.Low = tick.Low
		}
		b.active.Close = tick.Close
		b.active.Volume = tick.Volume // cumulative interval volume, last value wins
		b.active.IsClosed = tick.IsClosed
	} else {
		// Rule 3: a new open_time. Seal any existing active candle first.
		if b.active != nil {
			b.seal(*b.active)
		}
		c := tick
		b.active = &c
	}

	// Rule 4: if the (possibly just-merged) active candle is now closed,
	// seal it immediately.
	if b.active != nil && b.active.IsClosed {
		sealed := *b.active
		b.active = nil
		b.seal(sealed)
	}
}

// seal appends a candle to the closed ring, evicting the oldest entry if
// the ring is at capacity, and advances last_closed_time.
func (b *Buffer) seal(c model.Candle) {
	c.IsClosed = true
	if b.closed.Full() {
		b.closed.DropOldest()
	}
	b.closed.Push(c)
	b.lastClosedTime = c.OpenTime
	b.hasClosed = true
}

// Active returns the current forming candle, or nil if none exists yet.
func (b *Buffer) Active() *model.Candle {
	if b.active == nil {
		return nil
	}
	c := *b.active
	return &c
}

// LastClosedTime returns the open_time of the most recently sealed candle,
// and whether any candle has been sealed yet.
func (b *Buffer) LastClosedTime() (int64, bool) {
	return b.lastClosedTime, b.hasClosed
}

// Closed returns every sealed candle, oldest first. Callers get a fresh
// clone (candles are POD, so this is a cheap copy) rather than an interior
// reference — the buffer exclusively owns its candles.
func (b *Buffer) Closed() []model.Candle {
	return b.closed.Snapshot()
}

// PriceArrays returns the derived OHLCV view every indicator kernel
// consumes: closed candles, optionally followed by the active candle.
func (b *Buffer) PriceArrays(includeActive bool) model.PriceArrays {
	closed := b.closed.Snapshot()
	n := len(closed)
	if includeActive && b.active != nil {
		n++
	}

	out := model.PriceArrays{
		Opens:   make([]float64, 0, n),
		Highs:   make([]float64, 0, n),
		Lows:    make([]float64, 0, n),
		Closes:  make([]float64, 0, n),
		Volumes: make([]float64, 0, n),
	}
	for _, c := range closed {
		out.Opens = append(out.Opens, c.Open)
		out.Highs = append(out.Highs, c.High)
		out.Lows = append(out.Lows, c.Low)
		out.Closes = append(out.Closes, c.Close)
		out.Volumes = append(out.Volumes, c.Volume)
	}
	if includeActive && b.active != nil {
		out.Opens = append(out.Opens, b.active.Open)
		out.Highs = append(out.Highs, b.active.High)
		out.Lows = append(out.Lows, b.active.Low)
		out.Closes = append(out.Closes, b.active.Close)
		out.Volumes = append(out.Volumes, b.active.Volume)
	}
	return out
}

// Len returns the number of sealed candles currently held.
func (b *Buffer) Len() int {
	return b.closed.Len()
}

// DroppedCandles returns the ring's own overflow counter. seal() always
// evicts the oldest entry before pushing, so this stays at zero under
// normal operation; a nonzero value means Push observed a full ring
// despite that eviction, which would indicate a concurrent caller.
func (b *Buffer) DroppedCandles() uint64 {
	return b.closed.Overflow()
}
