package strategy

import (
	"testing"

	"signalengine/internal/indicator"
	"signalengine/internal/model"
)

// TestRanging_ScenarioE covers ADX=15 (ranging),
// %B=-0.05, RSI=28, KDJ K crossing above D. Expected BUY with strength
// >= 0.7 and at least 2 qualifying signals.
func TestRanging_ScenarioE(t *testing.T) {
	in := Inputs{
		Close:     100,
		RSI:       28,
		PrevRSI:   32,
		KDJ:       indicator.KDJBar{K: 18, D: 15, J: 24},
		PrevKDJ:   indicator.KDJBar{K: 12, D: 14, J: 8},
		Bollinger: indicator.BollingerBand{Mid: 100, Upper: 105, Lower: 95, PercentB: -0.05},
		ATR:       1.5,
		Volume:    indicator.VolumeResult{LatestCondition: indicator.VolNormal, LatestRatio: 1.0},
	}

	r := NewRanging()
	sig := r.Analyze(in)

	if sig.Direction != model.Buy {
		t.Fatalf("expected BUY, got %v (reasons=%v)", sig.Direction, sig.Reasons)
	}
	if sig.Strength < 0.7 {
		t.Fatalf("expected strength >= 0.7, got %v", sig.Strength)
	}
	if len(sig.Reasons) < 2 {
		t.Fatalf("expected at least 2 qualifying reasons, got %v", sig.Reasons)
	}
}

// TestBreakout_ScenarioF covers a strong breakout
// (ADX=45, distance 1.2*ATR) with no volume confirmation (ratio 0.9) must
// still qualify on the strength of the other conditions, but at reduced
// strength relative to the volume-confirmed case.
func TestBreakout_ScenarioF(t *testing.T) {
	atrSeries := model.Series{model.None(), model.None(), model.None(), 1.0, 1.0, 1.3}
	base := Inputs{
		Close:                100,
		ATR:                  1.3,
		ATRSeries:            atrSeries,
		ATRSeriesIdx:         5,
		PlusDI:               30,
		MinusDI:              15,
		MACD:                 indicator.MACDResult{LatestHistogram: 0.5, Histogram: model.Series{0.2, 0.3, 0.5}},
		BreakoutUp:           true,
		BreakoutDistanceATR:  1.2,
		Support:              model.None(),
		Resistance:           model.None(),
	}

	unconfirmed := base
	unconfirmed.Volume = indicator.VolumeResult{LatestCondition: indicator.VolNormal, LatestRatio: 0.9}

	confirmed := base
	confirmed.Volume = indicator.VolumeResult{LatestCondition: indicator.VolHigh, LatestRatio: 1.8}

	b := NewBreakout()
	sigUnconfirmed := b.Analyze(unconfirmed)
	sigConfirmed := b.Analyze(confirmed)

	if sigConfirmed.Direction != model.Buy {
		t.Fatalf("expected the volume-confirmed case to signal BUY, got %v (reasons=%v)", sigConfirmed.Direction, sigConfirmed.Reasons)
	}
	if sigUnconfirmed.Direction == model.Buy && sigUnconfirmed.Strength >= sigConfirmed.Strength {
		t.Fatalf("expected the unconfirmed breakout to score lower: unconfirmed=%v confirmed=%v", sigUnconfirmed.Strength, sigConfirmed.Strength)
	}

	found := false
	for _, r := range sigUnconfirmed.Reasons {
		if r == "no volume confirmation, possible false breakout" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the unconfirmed breakout to record its penalty reason, got %v", sigUnconfirmed.Reasons)
	}
}

func TestTrending_HoldsWithoutTrend(t *testing.T) {
	in := Inputs{Close: 100, EMA5: 100, EMA20: 100, EMA60: 100}
	tr := NewTrending()
	sig := tr.Analyze(in)
	if sig.Direction != model.Hold {
		t.Fatalf("expected HOLD with no EMA separation, got %v", sig.Direction)
	}
}

// TestBreakout_StopsAtLookbackExtreme covers the primary stop-loss rule:
// when the lookback support/resistance is known it takes priority over
// the generic ATR-multiple stop.
func TestBreakout_StopsAtLookbackExtreme(t *testing.T) {
	atrSeries := model.Series{model.None(), model.None(), model.None(), 1.0, 1.0, 1.3}
	buyIn := Inputs{
		Close:               110,
		ATR:                 1.3,
		ATRSeries:           atrSeries,
		ATRSeriesIdx:        5,
		PlusDI:              30,
		MinusDI:             15,
		MACD:                indicator.MACDResult{LatestHistogram: 0.5, Histogram: model.Series{0.2, 0.3, 0.5}},
		Volume:              indicator.VolumeResult{LatestCondition: indicator.VolHigh, LatestRatio: 1.8},
		BreakoutUp:          true,
		BreakoutDistanceATR: 1.2,
		Support:             104.0,
		Resistance:          model.None(),
	}

	b := NewBreakout()
	sig := b.Analyze(buyIn)
	if sig.Direction != model.Buy {
		t.Fatalf("expected BUY, got %v (reasons=%v)", sig.Direction, sig.Reasons)
	}
	if sig.StopLoss != 104.0 {
		t.Fatalf("expected the stop to sit at the lookback support (104), got %v", sig.StopLoss)
	}

	sellIn := buyIn
	sellIn.BreakoutUp = false
	sellIn.BreakoutDown = true
	sellIn.Support = model.None()
	sellIn.Resistance = 116.0

	sig = b.Analyze(sellIn)
	if sig.Direction != model.Sell {
		t.Fatalf("expected SELL, got %v (reasons=%v)", sig.Direction, sig.Reasons)
	}
	if sig.StopLoss != 116.0 {
		t.Fatalf("expected the stop to sit at the lookback resistance (116), got %v", sig.StopLoss)
	}
}

// TestBreakout_UsesConfiguredATRSpikeThreshold covers the ATR-expansion
// check honoring whatever ATRSpikeThr the generator wired in, the same
// value the market classifier uses, rather than a hardcoded constant.
func TestBreakout_UsesConfiguredATRSpikeThreshold(t *testing.T) {
	atrSeries := model.Series{model.None(), model.None(), model.None(), 1.0, 1.0, 1.3}
	in := Inputs{
		Close:               100,
		ATR:                 1.3,
		ATRSeries:           atrSeries,
		ATRSeriesIdx:        5,
		PlusDI:              30,
		MinusDI:             15,
		MACD:                indicator.MACDResult{LatestHistogram: 0.5, Histogram: model.Series{0.2, 0.3, 0.5}},
		Volume:              indicator.VolumeResult{LatestCondition: indicator.VolNormal, LatestRatio: 0.9},
		BreakoutUp:          true,
		BreakoutDistanceATR: 1.2,
		Support:             model.None(),
		Resistance:          model.None(),
	}

	lenient := NewBreakout()
	lenient.ATRSpikeThr = 1.3
	sigLenient := lenient.Analyze(in)

	strict := NewBreakout()
	strict.ATRSpikeThr = 2.0
	sigStrict := strict.Analyze(in)

	if sigLenient.Direction != model.Buy {
		t.Fatalf("expected the 1.3 ratio to clear a 1.3 threshold and signal BUY, got %v (reasons=%v)", sigLenient.Direction, sigLenient.Reasons)
	}
	found := false
	for _, r := range sigLenient.Reasons {
		if r == "ATR expanding" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the ATR expansion reason at threshold 1.3, got %v", sigLenient.Reasons)
	}

	for _, r := range sigStrict.Reasons {
		if r == "ATR expanding" {
			t.Fatalf("expected no ATR expansion reason once ATRSpikeThr is raised to 2.0, got %v", sigStrict.Reasons)
		}
	}
	if sigStrict.Direction == model.Buy && sigStrict.Strength >= sigLenient.Strength {
		t.Fatalf("expected raising ATRSpikeThr to reduce strength: strict=%v lenient=%v", sigStrict.Strength, sigLenient.Strength)
	}
}
