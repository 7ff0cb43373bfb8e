// Package verify tracks emitted trading signals through their prediction
// horizons and accumulates live accuracy statistics.
package verify

import "signalengine/internal/model"

// DefaultHorizons are the prediction windows in minutes.
var DefaultHorizons = []int{10, 30, 60}

// DefaultMaxPending is the cap on the pending set that New applies; it is
// not read from configuration. Once
// full, the oldest fully-resolved entry is evicted to make room, and if
// none is resolved yet the oldest pending entry is evicted.
const DefaultMaxPending = 50

// Tracker owns the pending/completed signal records exclusively; nothing
// else in the pipeline reaches back into signal history.
type Tracker struct {
	horizons   []int
	maxPending int

	pending   []*model.PendingVerification
	completed []*model.PendingVerification
	accuracy  map[int]model.AccuracyStats

	lastDirection  model.Direction
	lastCandleOpen int64

	// OnResolve, if set, fires synchronously each time a horizon resolves
	// during Tick, so callers can publish/persist it without polling
	// Completed() for the diff.
	OnResolve func(p *model.PendingVerification, horizon int, result model.HorizonResult)
}

// New returns a Tracker configured with the default horizons and
// pending-set cap.
func New() *Tracker {
	return &Tracker{
		horizons:   append([]int(nil), DefaultHorizons...),
		maxPending: DefaultMaxPending,
		accuracy:   make(map[int]model.AccuracyStats, len(DefaultHorizons)),
	}
}

// Record appends a PendingVerification for a freshly emitted signal,
// subject to the dedup rule: a repeat of the same direction within the
// same candle's open-time is dropped. A HOLD resets the dedup memory so a
// later non-HOLD in the same bar is recorded.
func (t *Tracker) Record(sig model.TradingSignal, candleOpenTime int64) {
	if sig.Direction == model.Hold {
		t.lastDirection = model.Hold
		return
	}
	if sig.Direction == t.lastDirection && candleOpenTime == t.lastCandleOpen {
		return
	}
	t.lastDirection = sig.Direction
	t.lastCandleOpen = candleOpenTime

	checkTimes := make(map[int]int64, len(t.horizons))
	for _, h := range t.horizons {
		checkTimes[h] = sig.Timestamp + int64(h)*60_000
	}

	t.pending = append(t.pending, &model.PendingVerification{
		SignalID:   sig.ID,
		Signal:     sig,
		EntryPrice: sig.EntryPrice,
		EntryTime:  sig.Timestamp,
		CandleOpen: candleOpenTime,
		CheckTimes: checkTimes,
		Results:    make(map[int]model.HorizonResult, len(t.horizons)),
	})

	t.evictIfFull()
}

// Tick probes every pending record's unresolved horizons against the
// latest close. now is epoch milliseconds and closePrice is the latest
// close price; a horizon
// resolves once now >= its check_times deadline.
func (t *Tracker) Tick(now int64, closePrice float64) {
	remaining := t.pending[:0]
	for _, p := range t.pending {
		for h, deadline := range p.CheckTimes {
			if _, done := p.Results[h]; done {
				continue
			}
			if now < deadline {
				continue
			}
			t.resolveHorizon(p, h, now, closePrice)
		}
		if p.Resolved() {
			t.completed = append(t.completed, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	t.pending = remaining
}

func (t *Tracker) resolveHorizon(p *model.PendingVerification, horizon int, now int64, closePrice float64) {
	sign := closePrice - p.EntryPrice
	profitPct := (closePrice - p.EntryPrice) / p.EntryPrice * 100
	if p.Signal.Direction == model.Sell {
		sign = -sign
		profitPct = -profitPct
	}

	outcome := model.OutcomeWrong
	if sign > 0 {
		outcome = model.OutcomeCorrect
	}

	p.Results[horizon] = model.HorizonResult{
		Price: closePrice, Outcome: outcome, ProfitPct: profitPct, ResolvedAt: now,
	}

	stats := t.accuracy[horizon]
	stats.Checked++
	if outcome == model.OutcomeCorrect {
		stats.Correct++
	}
	t.accuracy[horizon] = stats

	if t.OnResolve != nil {
		t.OnResolve(p, horizon, p.Results[horizon])
	}
}

// evictIfFull enforces maxPending: prefer evicting the oldest fully
// resolved entry, falling back to the oldest pending entry outright if
// none are resolved yet.
func (t *Tracker) evictIfFull() {
	if len(t.pending) <= t.maxPending {
		return
	}
	for i, p := range t.pending {
		if p.Resolved() {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
	t.pending = t.pending[1:]
}

// Accuracy returns a snapshot of the accumulated stats per horizon.
func (t *Tracker) Accuracy() map[int]model.AccuracyStats {
	out := make(map[int]model.AccuracyStats, len(t.accuracy))
	for h, s := range t.accuracy {
		out[h] = s
	}
	return out
}

// Pending returns the currently open verification records.
func (t *Tracker) Pending() []*model.PendingVerification { return t.pending }

// Completed returns every fully resolved record seen so far.
func (t *Tracker) Completed() []*model.PendingVerification { return t.completed }
