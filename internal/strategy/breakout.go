package strategy

import (
	"signalengine/internal/indicator"
	"signalengine/internal/model"
)

// Breakout implements the confirmed-breakout strategy for ADX above the
// strong-trend threshold, or ATR/volume expansion outside a trend.
type Breakout struct {
	MinSignals     int
	MinStrength    float64
	MinBreakoutATR float64 // breakout distance must exceed this many ATRs, default 0.5
	MinVolumeRatio float64 // default 1.5
	VolumeConfirm  bool
	ATRSpikeThr    float64 // same threshold as the classifier's atr_spike_thr, default 1.3
}

// NewBreakout returns a Breakout strategy with the default gates:
// at least 2 qualifying signals and combined strength >= 0.5.
func NewBreakout() *Breakout {
	return &Breakout{MinSignals: 2, MinStrength: 0.5, MinBreakoutATR: 0.5, MinVolumeRatio: 1.5, VolumeConfirm: true, ATRSpikeThr: 1.3}
}

func (b *Breakout) Name() string { return "breakout" }

func (b *Breakout) Analyze(in Inputs) model.StrategySignal {
	switch {
	case in.BreakoutUp && in.BreakoutDistanceATR > b.MinBreakoutATR:
		signals, strength, reasons := b.score(in, true)
		if signals >= b.MinSignals && strength >= b.MinStrength {
			sl := in.Close - 2*in.ATR
			if !model.IsNone(in.Support) {
				sl = in.Support
			}
			tp := in.Close + 3*in.ATR
			return model.StrategySignal{
				Direction: model.Buy, Strength: clampStrength(strength), StrategyName: b.Name(),
				Reasons: reasons, EntryPrice: in.Close, StopLoss: sl, TakeProfit: addPtr(tp),
				IndicatorValues: indicatorSnapshot(in),
			}
		}
	case in.BreakoutDown && in.BreakoutDistanceATR > b.MinBreakoutATR:
		signals, strength, reasons := b.score(in, false)
		if signals >= b.MinSignals && strength >= b.MinStrength {
			sl := in.Close + 2*in.ATR
			if !model.IsNone(in.Resistance) {
				sl = in.Resistance
			}
			tp := in.Close - 3*in.ATR
			return model.StrategySignal{
				Direction: model.Sell, Strength: clampStrength(strength), StrategyName: b.Name(),
				Reasons: reasons, EntryPrice: in.Close, StopLoss: sl, TakeProfit: addPtr(tp),
				IndicatorValues: indicatorSnapshot(in),
			}
		}
	}
	return hold(b.Name())
}

// score awards points for the direction-confirming volume, volatility, MACD
// and DI conditions. Missing volume confirmation is penalized rather than
// simply skipped, since an unconfirmed breakout is more likely false.
func (b *Breakout) score(in Inputs, up bool) (int, float64, []string) {
	signals := 1
	strength := 0.25
	reasons := []string{"price broke the lookback extreme"}

	if b.VolumeConfirm {
		switch {
		case in.Volume.LatestCondition == indicator.VolSpike:
			signals++
			strength += 0.25
			reasons = append(reasons, "volume spike confirms breakout")
		case !model.IsNone(in.Volume.LatestRatio) && in.Volume.LatestRatio >= b.MinVolumeRatio:
			signals++
			strength += 0.20
			reasons = append(reasons, "volume expansion confirms breakout")
		default:
			strength -= 0.15
			reasons = append(reasons, "no volume confirmation, possible false breakout")
		}
	}

	if checkATRExpandingLocal(in.ATRSeries, in.ATRSeriesIdx, b.ATRSpikeThr) {
		signals++
		strength += 0.15
		reasons = append(reasons, "ATR expanding")
	}

	hist := in.MACD.LatestHistogram
	if !model.IsNone(hist) {
		if (up && hist > 0) || (!up && hist < 0) {
			signals++
			strength += 0.15
			reasons = append(reasons, "MACD confirms direction")
			if converging(in.MACD.Histogram, hist, up) {
				strength += 0.05
				reasons = append(reasons, "MACD momentum building")
			}
		}
	}

	if !model.IsNone(in.PlusDI) && !model.IsNone(in.MinusDI) {
		if (up && in.PlusDI > in.MinusDI) || (!up && in.MinusDI > in.PlusDI) {
			signals++
			strength += 0.10
			reasons = append(reasons, "DI confirms direction")
		}
	}

	return signals, strength, reasons
}

// checkATRExpandingLocal mirrors the market classifier's expansion check
// against the ATR series a strategy was handed, so the strategy package
// stays decoupled from internal/market. spikeThr must be the same
// configured atr_spike_thr the classifier uses, so the two checks agree.
func checkATRExpandingLocal(atr model.Series, i int, spikeThr float64) bool {
	if i < 3 || i >= len(atr) || model.IsNone(atr[i]) {
		return false
	}
	sum, n := 0.0, 0
	for j := i - 3; j < i; j++ {
		if j >= 0 && !model.IsNone(atr[j]) {
			sum += atr[j]
			n++
		}
	}
	if n == 0 {
		return false
	}
	avg := sum / float64(n)
	if avg == 0 {
		return false
	}
	return atr[i]/avg >= spikeThr
}
