package strategy

import (
	"signalengine/internal/analyzer"
	"signalengine/internal/model"
)

// Ranging implements the ADX<20 mean-reversion strategy.
type Ranging struct {
	MinSignals int
	MinStrength float64
}

// NewRanging returns a Ranging strategy with the default gates:
// at least 2 qualifying signals and combined strength >= 0.5.
func NewRanging() *Ranging {
	return &Ranging{MinSignals: 2, MinStrength: 0.5}
}

func (r *Ranging) Name() string { return "ranging" }

func (r *Ranging) Analyze(in Inputs) model.StrategySignal {
	buySignals, buyStrength, buyReasons := r.scoreBuy(in)
	sellSignals, sellStrength, sellReasons := r.scoreSell(in)

	buyOK := buySignals >= r.MinSignals && buyStrength >= r.MinStrength
	sellOK := sellSignals >= r.MinSignals && sellStrength >= r.MinStrength

	switch {
	case buyOK && (!sellOK || buyStrength >= sellStrength):
		sl := in.Close - 2*in.ATR
		tp := in.Bollinger.Mid
		return model.StrategySignal{
			Direction: model.Buy, Strength: clampStrength(buyStrength), StrategyName: r.Name(),
			Reasons: buyReasons, EntryPrice: in.Close, StopLoss: sl, TakeProfit: addPtr(tp),
			IndicatorValues: indicatorSnapshot(in),
		}
	case sellOK:
		sl := in.Close + 2*in.ATR
		tp := in.Bollinger.Mid
		return model.StrategySignal{
			Direction: model.Sell, Strength: clampStrength(sellStrength), StrategyName: r.Name(),
			Reasons: sellReasons, EntryPrice: in.Close, StopLoss: sl, TakeProfit: addPtr(tp),
			IndicatorValues: indicatorSnapshot(in),
		}
	default:
		return hold(r.Name())
	}
}

func (r *Ranging) scoreBuy(in Inputs) (int, float64, []string) {
	signals := 0
	strength := 0.0
	var reasons []string

	if !model.IsNone(in.Bollinger.PercentB) {
		switch {
		case in.Bollinger.PercentB < 0:
			signals++
			strength += 0.35
			reasons = append(reasons, "%B < 0")
		case in.Bollinger.PercentB < 0.15:
			signals++
			strength += 0.25
			reasons = append(reasons, "%B < 0.15")
		}
	}

	switch {
	case in.RSI < 20:
		signals++
		strength += 0.30
		reasons = append(reasons, "RSI < 20")
	case in.RSI < 35:
		signals++
		strength += 0.20
		reasons = append(reasons, "RSI < 35 (oversold)")
	}

	switch {
	case in.KDJ.J < 10:
		signals++
		strength += 0.25
		reasons = append(reasons, "J < 10")
	case in.KDJ.K < 25:
		signals++
		strength += 0.15
		reasons = append(reasons, "K < 25")
	}

	if kdjVerdict := analyzer.AnalyzeKDJ(in.PrevKDJ.K, in.PrevKDJ.D, in.KDJ.K, in.KDJ.D); kdjVerdict.Verdict == analyzer.VerdictBuy {
		signals++
		strength += 0.20
		reasons = append(reasons, "KDJ K crossed above D")
	}

	if isLowVolume(in.Volume.LatestCondition) {
		signals++
		strength += 0.10
		reasons = append(reasons, "volume low")
	}

	return signals, strength, reasons
}

func (r *Ranging) scoreSell(in Inputs) (int, float64, []string) {
	signals := 0
	strength := 0.0
	var reasons []string

	if !model.IsNone(in.Bollinger.PercentB) {
		switch {
		case in.Bollinger.PercentB > 1:
			signals++
			strength += 0.35
			reasons = append(reasons, "%B > 1")
		case in.Bollinger.PercentB > 0.85:
			signals++
			strength += 0.25
			reasons = append(reasons, "%B > 0.85")
		}
	}

	switch {
	case in.RSI > 80:
		signals++
		strength += 0.30
		reasons = append(reasons, "RSI > 80")
	case in.RSI > 65:
		signals++
		strength += 0.20
		reasons = append(reasons, "RSI > 65 (overbought)")
	}

	switch {
	case in.KDJ.J > 90:
		signals++
		strength += 0.25
		reasons = append(reasons, "J > 90")
	case in.KDJ.K > 75:
		signals++
		strength += 0.15
		reasons = append(reasons, "K > 75")
	}

	if kdjVerdict := analyzer.AnalyzeKDJ(in.PrevKDJ.K, in.PrevKDJ.D, in.KDJ.K, in.KDJ.D); kdjVerdict.Verdict == analyzer.VerdictSell {
		signals++
		strength += 0.20
		reasons = append(reasons, "KDJ K crossed below D")
	}

	if isLowVolume(in.Volume.LatestCondition) {
		signals++
		strength += 0.10
		reasons = append(reasons, "volume low")
	}

	return signals, strength, reasons
}

func indicatorSnapshot(in Inputs) map[string]float64 {
	return map[string]float64{
		"rsi": in.RSI, "k": in.KDJ.K, "d": in.KDJ.D, "j": in.KDJ.J,
		"percent_b": in.Bollinger.PercentB, "atr": in.ATR, "volume_ratio": in.Volume.LatestRatio,
	}
}
