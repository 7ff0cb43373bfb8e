package candlebuf

import "signalengine/internal/model"

import "testing"

func mustTick(openTime int64, o, h, l, c, v float64, closed bool) model.Candle {
	return model.Candle{OpenTime: openTime, Open: o, High: h, Low: l, Close: c, Volume: v, IsClosed: closed}
}

// TestSealing covers four ticks across two bars, the third tick sealing
// the first bar, and a re-application of that sealing tick being a
// no-op (replay idempotence).
func TestSealing(t *testing.T) {
	b := New(4)

	b.Update(mustTick(0, 10, 11, 9, 10, 5, false))
	b.Update(mustTick(0, 10, 12, 9, 10.5, 8, false))
	b.Update(mustTick(0, 10, 12, 8, 11, 12, true))
	b.Update(mustTick(60, 11, 11.5, 10.8, 11.2, 3, false))

	closed := b.Closed()
	if len(closed) != 1 {
		t.Fatalf("expected 1 closed candle, got %d", len(closed))
	}
	if closed[0].OpenTime != 0 || !closed[0].IsClosed {
		t.Fatalf("unexpected closed candle: %+v", closed[0])
	}
	if closed[0].High != 12 || closed[0].Low != 8 || closed[0].Close != 11 {
		t.Fatalf("merge correctness violated: %+v", closed[0])
	}

	active := b.Active()
	if active == nil || active.OpenTime != 60 {
		t.Fatalf("expected active candle at t=60, got %+v", active)
	}

	// Re-apply the sealing tick: must be a no-op (dropped by replay
	// protection since its open_time <= last_closed_time).
	before := b.Closed()
	b.Update(mustTick(0, 10, 12, 8, 11, 12, true))
	after := b.Closed()
	if len(before) != len(after) {
		t.Fatalf("replay of sealed tick mutated closed ring: before=%d after=%d", len(before), len(after))
	}
}

// TestMergeCorrectness is invariant 3: for a run of ticks sharing one
// open_time, final high=max, low=min, close=last, volume=last.
func TestMergeCorrectness(t *testing.T) {
	b := New(4)
	b.Update(mustTick(100, 5, 5, 5, 5, 1, false))
	b.Update(mustTick(100, 5, 7, 5, 6, 4, false))
	b.Update(mustTick(100, 5, 6, 3, 4, 9, false))
	b.Update(mustTick(200, 4, 4, 4, 4, 1, false)) // forces the seal of t=100

	closed := b.Closed()
	if len(closed) != 1 {
		t.Fatalf("expected 1 sealed candle, got %d", len(closed))
	}
	got := closed[0]
	if got.High != 7 || got.Low != 3 || got.Close != 4 || got.Volume != 9 {
		t.Fatalf("merge correctness violated: %+v", got)
	}
}

// TestBoundedEviction: pushing more sealed candles than capacity evicts
// the oldest rather than growing unbounded.
func TestBoundedEviction(t *testing.T) {
	b := New(2)
	for i := int64(0); i < 5; i++ {
		b.Update(mustTick(i*10, 1, 1, 1, 1, 1, true))
	}
	closed := b.Closed()
	if len(closed) != 2 {
		t.Fatalf("expected ring capped at 2, got %d", len(closed))
	}
	if closed[0].OpenTime != 30 || closed[1].OpenTime != 40 {
		t.Fatalf("expected oldest evicted, got %+v", closed)
	}
}

func TestPriceArraysIncludesActive(t *testing.T) {
	b := New(4)
	b.Update(mustTick(0, 1, 2, 0.5, 1.5, 10, true))
	b.Update(mustTick(60, 2, 3, 1.5, 2.5, 20, false))

	withActive := b.PriceArrays(true)
	if withActive.Len() != 2 {
		t.Fatalf("expected 2 bars including active, got %d", withActive.Len())
	}
	withoutActive := b.PriceArrays(false)
	if withoutActive.Len() != 1 {
		t.Fatalf("expected 1 bar excluding active, got %d", withoutActive.Len())
	}
}
