package strategy

import "signalengine/internal/model"

// Trending implements the pullback-entry strategy for ADX between the
// ranging and strong-trend thresholds.
type Trending struct {
	MinSignals         int
	MinStrength        float64
	PullbackThreshold  float64 // EMA20 proximity gate, default 0.015
	RSIHealthyLowBuy   float64 // default 40
	RSIHealthyHighBuy  float64 // default 70
	RSIHealthyLowSell  float64 // default 30
	RSIHealthyHighSell float64 // default 60
}

// NewTrending returns a Trending strategy with the default gates:
// at least 3 qualifying signals and combined strength >= 0.5.
func NewTrending() *Trending {
	return &Trending{
		MinSignals: 3, MinStrength: 0.5,
		PullbackThreshold:  0.015,
		RSIHealthyLowBuy:   40,
		RSIHealthyHighBuy:  70,
		RSIHealthyLowSell:  30,
		RSIHealthyHighSell: 60,
	}
}

func (t *Trending) Name() string { return "trending" }

func (t *Trending) Analyze(in Inputs) model.StrategySignal {
	dir := t.trendDirection(in)
	if dir == model.DirNone {
		return hold(t.Name())
	}

	var signals int
	var strength float64
	var reasons []string
	if dir == model.DirUp {
		signals, strength, reasons = t.scoreBuy(in)
	} else {
		signals, strength, reasons = t.scoreSell(in)
	}

	if signals < t.MinSignals || strength < t.MinStrength {
		return hold(t.Name())
	}

	if dir == model.DirUp {
		sl := in.Close - 2*in.ATR
		if model.IsNone(in.ATR) {
			sl = in.EMA60
		}
		tp := in.Close + 3*in.ATR
		return model.StrategySignal{
			Direction: model.Buy, Strength: clampStrength(strength), StrategyName: t.Name(),
			Reasons: reasons, EntryPrice: in.Close, StopLoss: sl, TakeProfit: addPtr(tp),
			IndicatorValues: indicatorSnapshot(in),
		}
	}
	sl := in.Close + 2*in.ATR
	if model.IsNone(in.ATR) {
		sl = in.EMA60
	}
	tp := in.Close - 3*in.ATR
	return model.StrategySignal{
		Direction: model.Sell, Strength: clampStrength(strength), StrategyName: t.Name(),
		Reasons: reasons, EntryPrice: in.Close, StopLoss: sl, TakeProfit: addPtr(tp),
		IndicatorValues: indicatorSnapshot(in),
	}
}

// trendDirection reads the EMA5/EMA20/EMA60 stack: a perfect alignment is
// a trend by itself, a partial alignment needs price on the correct side
// of EMA60 to count.
func (t *Trending) trendDirection(in Inputs) model.TrendDirection {
	switch {
	case in.EMA5 > in.EMA20 && in.EMA20 > in.EMA60:
		return model.DirUp
	case in.EMA5 < in.EMA20 && in.EMA20 < in.EMA60:
		return model.DirDown
	case in.EMA5 > in.EMA20 && in.Close > in.EMA60:
		return model.DirUp
	case in.EMA5 < in.EMA20 && in.Close < in.EMA60:
		return model.DirDown
	default:
		return model.DirNone
	}
}

func (t *Trending) scoreBuy(in Inputs) (int, float64, []string) {
	signals := 0
	strength := 0.0
	var reasons []string

	switch {
	case in.EMA5 > in.EMA20 && in.EMA20 > in.EMA60:
		signals++
		strength += 0.25
		reasons = append(reasons, "EMA bullish alignment")
	case in.EMA5 > in.EMA20:
		strength += 0.15
		reasons = append(reasons, "EMA5 > EMA20")
	}

	if in.EMA20 > 0 {
		dist := absF(in.Close-in.EMA20) / in.EMA20
		switch {
		case dist <= t.PullbackThreshold:
			signals++
			strength += 0.25
			reasons = append(reasons, "pullback to EMA20")
		case dist <= t.PullbackThreshold*2:
			strength += 0.10
			reasons = append(reasons, "near EMA20")
		}
	}

	if !model.IsNone(in.RSI) {
		switch {
		case in.RSI > t.RSIHealthyLowBuy && in.RSI < t.RSIHealthyHighBuy:
			signals++
			strength += 0.20
			reasons = append(reasons, "RSI in healthy range")
		case in.RSI < t.RSIHealthyLowBuy:
			strength += 0.10
			reasons = append(reasons, "RSI low but acceptable")
		}
	}

	hist := in.MACD.LatestHistogram
	if !model.IsNone(hist) {
		if hist > 0 {
			signals++
			strength += 0.20
			reasons = append(reasons, "MACD histogram positive")
		} else if converging(in.MACD.Histogram, hist, true) {
			strength += 0.10
			reasons = append(reasons, "MACD histogram converging upward")
		}
	}

	if isLowVolume(in.Volume.LatestCondition) {
		strength += 0.10
		reasons = append(reasons, "volume contracting on pullback")
	}

	return signals, strength, reasons
}

func (t *Trending) scoreSell(in Inputs) (int, float64, []string) {
	signals := 0
	strength := 0.0
	var reasons []string

	switch {
	case in.EMA5 < in.EMA20 && in.EMA20 < in.EMA60:
		signals++
		strength += 0.25
		reasons = append(reasons, "EMA bearish alignment")
	case in.EMA5 < in.EMA20:
		strength += 0.15
		reasons = append(reasons, "EMA5 < EMA20")
	}

	if in.EMA20 > 0 {
		dist := absF(in.Close-in.EMA20) / in.EMA20
		switch {
		case dist <= t.PullbackThreshold:
			signals++
			strength += 0.25
			reasons = append(reasons, "bounce to EMA20")
		case dist <= t.PullbackThreshold*2:
			strength += 0.10
			reasons = append(reasons, "near EMA20")
		}
	}

	if !model.IsNone(in.RSI) {
		switch {
		case in.RSI > t.RSIHealthyLowSell && in.RSI < t.RSIHealthyHighSell:
			signals++
			strength += 0.20
			reasons = append(reasons, "RSI in healthy range")
		case in.RSI > t.RSIHealthyHighSell:
			strength += 0.10
			reasons = append(reasons, "RSI high but acceptable")
		}
	}

	hist := in.MACD.LatestHistogram
	if !model.IsNone(hist) {
		if hist < 0 {
			signals++
			strength += 0.20
			reasons = append(reasons, "MACD histogram negative")
		} else if converging(in.MACD.Histogram, hist, false) {
			strength += 0.10
			reasons = append(reasons, "MACD histogram converging downward")
		}
	}

	if isLowVolume(in.Volume.LatestCondition) {
		strength += 0.10
		reasons = append(reasons, "volume contracting on bounce")
	}

	return signals, strength, reasons
}

// converging reports whether the histogram moved toward zero-crossing in
// the requested direction between the last two bars.
func converging(series model.Series, latest float64, up bool) bool {
	n := len(series)
	if n < 2 {
		return false
	}
	prev := series[n-2]
	if model.IsNone(prev) {
		return false
	}
	if up {
		return latest > prev
	}
	return latest < prev
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
