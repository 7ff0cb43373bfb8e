package mtf

import (
	"testing"

	"signalengine/internal/model"
)

func uptrendCloses(n int) (highs, lows, closes, volumes []float64) {
	price := 100.0
	for i := 0; i < n; i++ {
		price += 0.3
		highs = append(highs, price+0.2)
		lows = append(lows, price-0.2)
		closes = append(closes, price)
		volumes = append(volumes, 1000)
	}
	return
}

func TestConfirm_HoldNeedsNoConfirmation(t *testing.T) {
	c := New()
	result := c.Confirm(model.Hold, 0.8, nil)
	if result.IsConfirmed {
		t.Fatal("HOLD must never be confirmed")
	}
}

func TestConfirm_UptrendConfirmsBuy(t *testing.T) {
	h15, l15, c15, v15 := uptrendCloses(40)
	h1h, l1h, c1h, v1h := uptrendCloses(40)

	c := New()
	result := c.Confirm(model.Buy, 0.8, map[string]TimeframeInputs{
		"15m": {Highs: h15, Lows: l15, Closes: c15, Volumes: v15},
		"1h":  {Highs: h1h, Lows: l1h, Closes: c1h, Volumes: v1h},
	})

	if result.RejectionCount == len(c.ConfirmationTimeframes) {
		t.Fatalf("expected an uptrend not to be universally rejected: %+v", result)
	}
	if result.AdjustedStrength <= 0 {
		t.Fatalf("expected a positive adjusted strength, got %v", result.AdjustedStrength)
	}
}

func TestConfirm_InsufficientDataIsNeutral(t *testing.T) {
	c := New()
	result := c.Confirm(model.Buy, 0.6, map[string]TimeframeInputs{
		"15m": {Closes: []float64{1, 2, 3}},
	})
	tf := result.PerTimeframe["15m"]
	if tf.Result != Neutral {
		t.Fatalf("expected NEUTRAL for insufficient data, got %v", tf.Result)
	}
}
