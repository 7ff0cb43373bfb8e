package market

import (
	"testing"

	"signalengine/internal/indicator"
	"signalengine/internal/model"
)

func buildBreakoutSeries(n int) (highs, lows, closes, volumes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	volumes = make([]float64, n)
	for i := 0; i < n-1; i++ {
		closes[i] = 100
		highs[i] = 100.3
		lows[i] = 99.7
		volumes[i] = 1000
	}
	// final bar breaks well above the 20-bar high with volume + ATR expansion
	closes[n-1] = 110
	highs[n-1] = 110.5
	lows[n-1] = 109.5
	volumes[n-1] = 3000
	return
}

func TestClassify_Breakout(t *testing.T) {
	highs, lows, closes, volumes := buildBreakoutSeries(40)
	adx := indicator.CalculateADX(highs, lows, closes, 14)
	atr := indicator.CalculateATR(highs, lows, closes, 14)
	vol := indicator.CalculateVolume(volumes, 20, 5)

	result := Classify(highs, lows, closes, volumes, adx.Series, atr.Series, vol, DefaultThresholds())
	if result.State != model.StateBreakoutUp {
		t.Fatalf("expected BREAKOUT_UP, got %v (conf=%v)", result.State, result.Confidence)
	}
	if result.Confidence < 0.85 {
		t.Fatalf("expected confidence >= 0.85, got %v", result.Confidence)
	}
}

func TestIsSuitableForTrading(t *testing.T) {
	r := model.MarketStateResult{State: model.StateRanging, Confidence: 0.7}
	if !r.IsSuitableForTrading() {
		t.Fatal("expected suitable for trading")
	}
	r2 := model.MarketStateResult{State: model.StateUnknown, Confidence: 0.9}
	if r2.IsSuitableForTrading() {
		t.Fatal("UNKNOWN state must never be suitable")
	}
}
