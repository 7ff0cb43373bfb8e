package verify

import (
	"testing"

	"signalengine/internal/model"
)

func buySignal(id string, entry float64, ts int64) model.TradingSignal {
	return model.TradingSignal{
		StrategySignal: model.StrategySignal{Direction: model.Buy, EntryPrice: entry},
		ID:             id,
		Timestamp:      ts,
	}
}

// TestScenarioG covers a BUY at entry=100, t=0.
// At t=600s the close is 101 -> 10-min CORRECT, profit_pct=+1.0. At
// t=1800s close=99 -> 30-min WRONG, profit_pct=-1.0.
func TestScenarioG(t *testing.T) {
	tr := New()
	tr.Record(buySignal("sig-1", 100, 0), 0)

	tr.Tick(600_000, 101)
	tr.Tick(1_800_000, 99)

	acc := tr.Accuracy()
	if acc[10].Checked != 1 || acc[10].Correct != 1 {
		t.Fatalf("expected 10m accuracy 1/1, got %+v", acc[10])
	}
	if acc[30].Checked != 1 || acc[30].Correct != 0 {
		t.Fatalf("expected 30m accuracy 0/1, got %+v", acc[30])
	}
	if acc[10].Accuracy() != 1.0 {
		t.Fatalf("expected 10m accuracy ratio 1.0, got %v", acc[10].Accuracy())
	}
	if acc[30].Accuracy() != 0.0 {
		t.Fatalf("expected 30m accuracy ratio 0.0, got %v", acc[30].Accuracy())
	}

	var found *model.HorizonResult
	for _, p := range append(tr.Pending(), tr.Completed()...) {
		if r, ok := p.Results[10]; ok {
			found = &r
		}
	}
	if found == nil {
		t.Fatal("expected a resolved 10m result")
	}
	if found.ProfitPct != 1.0 {
		t.Fatalf("expected profit_pct=+1.0, got %v", found.ProfitPct)
	}
}

func TestDedup_SameDirectionSameCandle(t *testing.T) {
	tr := New()
	tr.Record(buySignal("a", 100, 0), 500)
	tr.Record(buySignal("b", 100, 0), 500)
	if len(tr.Pending()) != 1 {
		t.Fatalf("expected dedup to drop the repeat, got %d pending", len(tr.Pending()))
	}
}

func TestDedup_HoldResetsMemory(t *testing.T) {
	tr := New()
	tr.Record(buySignal("a", 100, 0), 500)
	tr.Record(model.TradingSignal{StrategySignal: model.StrategySignal{Direction: model.Hold}}, 500)
	tr.Record(buySignal("b", 100, 0), 500)
	if len(tr.Pending()) != 2 {
		t.Fatalf("expected HOLD to reset dedup memory, got %d pending", len(tr.Pending()))
	}
}

func TestDedup_DifferentCandleAllowsRepeat(t *testing.T) {
	tr := New()
	tr.Record(buySignal("a", 100, 0), 500)
	tr.Record(buySignal("b", 100, 100), 1000)
	if len(tr.Pending()) != 2 {
		t.Fatalf("expected a new candle open-time to allow a repeat, got %d pending", len(tr.Pending()))
	}
}

func TestVerificationConservation(t *testing.T) {
	tr := New()
	tr.Record(buySignal("a", 100, 0), 0)
	tr.Tick(600_000, 105)
	tr.Tick(1_800_000, 95)
	tr.Tick(3_600_000, 110)

	for h, s := range tr.Accuracy() {
		if s.Correct > s.Checked {
			t.Fatalf("horizon %d: correct exceeds checked: %+v", h, s)
		}
	}
	if len(tr.Pending()) != 0 || len(tr.Completed()) != 1 {
		t.Fatalf("expected the signal to move to completed once all horizons resolve: pending=%d completed=%d", len(tr.Pending()), len(tr.Completed()))
	}
}
