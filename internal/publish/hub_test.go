package publish

import (
	"encoding/json"
	"testing"
	"time"

	"signalengine/internal/model"
)

func TestHub_PublishSignalBuffersForReplay(t *testing.T) {
	h := NewHub("BTCUSDT")
	sig := model.TradingSignal{
		Symbol:    "BTCUSDT",
		Timestamp: time.Now().UnixMilli(),
	}
	sig.Direction = model.Buy

	h.PublishSignal(sig, time.Now().Add(-50*time.Millisecond))

	buffered := h.GetReplayRange("signal", 1, 1)
	if len(buffered) != 1 {
		t.Fatalf("expected 1 buffered signal envelope, got %d", len(buffered))
	}

	var env Envelope
	if err := json.Unmarshal(buffered[0], &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Channel != "signal" {
		t.Fatalf("expected channel=signal, got %q", env.Channel)
	}

	p50, _, _ := h.LatencyPercentiles()
	if p50 <= 0 {
		t.Fatalf("expected a positive recorded latency sample, got %v", p50)
	}
}

func TestHub_PublishVerification(t *testing.T) {
	h := NewHub("BTCUSDT")
	h.PublishVerification("sig-1", 10, model.HorizonResult{Price: 101, Outcome: model.OutcomeCorrect, ProfitPct: 1.0})

	buffered := h.GetReplayRange("verify", 1, 1)
	if len(buffered) != 1 {
		t.Fatalf("expected 1 buffered verification envelope, got %d", len(buffered))
	}
}

func TestHub_PublishSnapshot(t *testing.T) {
	h := NewHub("BTCUSDT")
	h.PublishSnapshot(model.Snapshot{
		Symbol:          "BTCUSDT",
		PrimaryInterval: "5m",
		Seq:             1,
		MarketState:     model.MarketStateResult{State: model.StateRanging},
	})

	buffered := h.GetReplayRange("snapshot", 1, 1)
	if len(buffered) != 1 {
		t.Fatalf("expected 1 buffered snapshot envelope, got %d", len(buffered))
	}
	var env Envelope
	if err := json.Unmarshal(buffered[0], &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Channel != "snapshot" {
		t.Fatalf("expected channel=snapshot, got %q", env.Channel)
	}
}

func TestHub_ClientCountStartsZero(t *testing.T) {
	h := NewHub("BTCUSDT")
	if h.ClientCount() != 0 {
		t.Fatalf("expected 0 clients on a fresh hub, got %d", h.ClientCount())
	}
}
