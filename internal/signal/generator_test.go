package signal

import (
	"testing"

	"signalengine/internal/config"
	"signalengine/internal/model"
)

func rangingArrays(n int) model.PriceArrays {
	var highs, lows, closes, volumes []float64
	price := 100.0
	for i := 0; i < n; i++ {
		// tight chop with a late dip so RSI/%B/KDJ line up near the
		// oversold end without ever trending.
		price += 0.05
		if i > n-6 {
			price -= 0.5
		}
		highs = append(highs, price+0.3)
		lows = append(lows, price-0.3)
		closes = append(closes, price)
		volumes = append(volumes, 900)
	}
	return model.PriceArrays{Highs: highs, Lows: lows, Closes: closes, Volumes: volumes}
}

func testConfig(t *testing.T) *config.StrategyConfig {
	t.Helper()
	cfg := &config.StrategyConfig{}
	*cfg = config.StrategyConfig{
		Symbol:   "BTCUSDT",
		Interval: "5m",
		Periods: config.IndicatorPeriods{
			RSI: 14, MACDFast: 12, MACDSlow: 26, MACDSig: 9,
			EMAFast: 5, EMAMedium: 20, EMASlow: 60,
			Bollinger: 20, ATR: 14, ADX: 14, CCI: 20, KDJ: 9, KDJSmooth: 3, VolumeMA: 20,
		},
		Classifier: config.ClassifierThresholds{RangingThr: 20, TrendingThr: 25, StrongThr: 40, VolumeSpikeThr: 1.5, ATRSpikeThr: 1.3, BreakoutLookback: 20},
		Grades:     config.GradeThresholds{A: 0.75, B: 0.50, C: 0.30},
		MTF:        config.MTFConfig{PrimaryTimeframe: "5m", ConfirmationTimeframes: []string{"15m", "1h"}, MinConfirmations: 1, Weights: map[string]float64{"5m": 0.4, "15m": 0.35, "1h": 0.25}},
		Verify:     config.VerificationConfig{Horizons: []int{10, 30, 60}, MaxPending: 50},

		MinRangingSignals: 2, MinRangingStrength: 0.5,
		MinTrendingSignals: 3, MinTrendingStrength: 0.5,
		MinBreakoutSignals: 2, MinBreakoutStrength: 0.5,
	}
	return cfg
}

func TestGenerate_NoHigherTimeframeFallsBackToPrimaryStrength(t *testing.T) {
	gen := New(testConfig(t))
	prices := rangingArrays(80)
	sig := gen.Generate("BTCUSDT", prices, nil)

	if sig.Direction == model.Buy || sig.Direction == model.Sell {
		if sig.AdjustedStrength != sig.Strength {
			t.Fatalf("expected adjusted_strength to equal primary strength with no MTF data: adjusted=%v primary=%v", sig.AdjustedStrength, sig.Strength)
		}
	}
}

func TestGenerate_PredictionsDecayWithHorizon(t *testing.T) {
	gen := New(testConfig(t))
	prices := rangingArrays(80)
	sig := gen.Generate("BTCUSDT", prices, nil)

	if sig.Direction == model.Hold {
		t.Skip("synthetic series did not produce a qualifying signal on this run")
	}
	if len(sig.Predictions) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(sig.Predictions))
	}
	if sig.Predictions[2].Confidence >= sig.Predictions[0].Confidence {
		t.Fatalf("expected confidence to decay with horizon: 10m=%v 60m=%v", sig.Predictions[0].Confidence, sig.Predictions[2].Confidence)
	}
}

func TestGenerate_TooShortHistoryHolds(t *testing.T) {
	gen := New(testConfig(t))
	sig := gen.Generate("BTCUSDT", model.PriceArrays{}, nil)
	if sig.Direction != model.Hold {
		t.Fatalf("expected HOLD with no candle history, got %v", sig.Direction)
	}
}
