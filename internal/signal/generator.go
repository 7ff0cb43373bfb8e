// Package signal implements the per-tick orchestrator: build indicators,
// classify the market, run the selected strategy, confirm across
// timeframes, grade, and predict.
package signal

import (
	"signalengine/internal/config"
	"signalengine/internal/indicator"
	"signalengine/internal/market"
	"signalengine/internal/model"
	"signalengine/internal/mtf"
	"signalengine/internal/strategy"
)

// IndicatorSnapshot is the typed "dashboard pack" computed unconditionally
// on every tick — a struct-of-options, not a stringly-typed map, in the
// hot path. It doubles as the input every strategy scores against.
type IndicatorSnapshot struct {
	RSI       indicator.RSIResult
	MACD      indicator.MACDResult
	EMA5      indicator.EMAResult
	EMA20     indicator.EMAResult
	EMA60     indicator.EMAResult
	Bollinger indicator.BollingerResult
	ATR       indicator.ATRResult
	ADX       indicator.ADXResult
	KDJ       indicator.KDJResult
	CCI       indicator.CCIResult
	VWAP      indicator.VWAPResult
	Volume    indicator.VolumeResult
}

// ComputeSnapshot runs every indicator kernel over the given price arrays
// using the configured periods.
func ComputeSnapshot(prices model.PriceArrays, periods config.IndicatorPeriods) IndicatorSnapshot {
	closes := prices.Closes
	return IndicatorSnapshot{
		RSI:       indicator.CalculateRSI(closes, periods.RSI),
		MACD:      indicator.CalculateMACD(closes, periods.MACDFast, periods.MACDSlow, periods.MACDSig),
		EMA5:      indicator.CalculateEMA(closes, periods.EMAFast),
		EMA20:     indicator.CalculateEMA(closes, periods.EMAMedium),
		EMA60:     indicator.CalculateEMA(closes, periods.EMASlow),
		Bollinger: indicator.CalculateBollinger(closes, periods.Bollinger, 2.0),
		ATR:       indicator.CalculateATR(prices.Highs, prices.Lows, closes, periods.ATR),
		ADX:       indicator.CalculateADX(prices.Highs, prices.Lows, closes, periods.ADX),
		KDJ:       indicator.CalculateKDJ(prices.Highs, prices.Lows, closes, periods.KDJ, periods.KDJSmooth),
		CCI:       indicator.CalculateCCI(prices.Highs, prices.Lows, closes, periods.CCI),
		VWAP:      indicator.CalculateVWAP(prices.Highs, prices.Lows, closes, prices.Volumes),
		Volume:    indicator.CalculateVolume(prices.Volumes, periods.VolumeMA, 5),
	}
}

// Generator wires the market classifier, the three sub-strategies, and the
// MTF confirmer into one per-tick call. Not safe for concurrent use — like
// candlebuf.Buffer, the concurrency model serializes ticks for one symbol
// onto a single goroutine.
type Generator struct {
	cfg       *config.StrategyConfig
	thresholds market.Thresholds
	ranging   *strategy.Ranging
	trending  *strategy.Trending
	breakout  *strategy.Breakout
	confirmer *mtf.Confirmer

	lastSnapshot IndicatorSnapshot
	lastState    model.MarketStateResult
}

// New builds a Generator from a resolved config.
func New(cfg *config.StrategyConfig) *Generator {
	r := strategy.NewRanging()
	r.MinSignals, r.MinStrength = cfg.MinRangingSignals, cfg.MinRangingStrength

	t := strategy.NewTrending()
	t.MinSignals, t.MinStrength = cfg.MinTrendingSignals, cfg.MinTrendingStrength

	b := strategy.NewBreakout()
	b.MinSignals, b.MinStrength = cfg.MinBreakoutSignals, cfg.MinBreakoutStrength
	b.ATRSpikeThr = cfg.Classifier.ATRSpikeThr

	c := mtf.New()
	c.PrimaryTimeframe = cfg.MTF.PrimaryTimeframe
	c.ConfirmationTimeframes = cfg.MTF.ConfirmationTimeframes
	c.MinConfirmations = cfg.MTF.MinConfirmations
	c.Weights = cfg.MTF.Weights

	th := market.Thresholds{
		RangingThr:       cfg.Classifier.RangingThr,
		TrendingThr:      cfg.Classifier.TrendingThr,
		StrongThr:        cfg.Classifier.StrongThr,
		VolumeSpikeThr:   cfg.Classifier.VolumeSpikeThr,
		ATRSpikeThr:      cfg.Classifier.ATRSpikeThr,
		BreakoutLookback: cfg.Classifier.BreakoutLookback,
	}

	return &Generator{cfg: cfg, thresholds: th, ranging: r, trending: t, breakout: b, confirmer: c}
}

// Generate runs the full ten-step orchestration for the latest bar of
// prices. higherTF may be nil when no higher-timeframe data is available
// yet, in which case adjusted_strength falls back to primary_strength.
func (g *Generator) Generate(symbol string, prices model.PriceArrays, higherTF map[string]mtf.TimeframeInputs) model.TradingSignal {
	if len(prices.Closes) == 0 {
		snap := IndicatorSnapshot{RSI: indicator.RSIResult{Latest: model.None()}, ATR: indicator.ATRResult{Latest: model.None()}}
		state := model.MarketStateResult{State: model.StateUnknown}
		g.lastSnapshot, g.lastState = snap, state
		return holdSignal(symbol, "no candle history", snap, state)
	}

	snap := ComputeSnapshot(prices, g.cfg.Periods)
	i := len(prices.Closes) - 1

	state := g.classify(prices, snap)
	g.lastSnapshot, g.lastState = snap, state

	strat, disabled := g.selectStrategy(state.State)
	if disabled {
		return holdSignal(symbol, "strategy disabled", snap, state)
	}

	in := g.buildInputs(prices, snap, i)
	base := strat.Analyze(in)

	if base.Direction == model.Hold {
		sig := holdSignal(symbol, "", snap, state)
		sig.Warnings = append(sig.Warnings, base.Reasons...)
		return sig
	}

	confirmation := mtf.Confirmation{AdjustedStrength: base.Strength, FinalScore: 1.0}
	if len(higherTF) > 0 {
		confirmation = g.confirmer.Confirm(base.Direction, base.Strength, higherTF)
	}

	grade := model.GradeFor(confirmation.AdjustedStrength, g.cfg.Grades.A, g.cfg.Grades.B, g.cfg.Grades.C)

	predictions := predictionsFor(base.Direction, confirmation.AdjustedStrength, prices.Closes[i], snap.ATR.Latest, g.cfg.Verify.Horizons)

	sig := model.TradingSignal{
		StrategySignal:         base,
		Symbol:                 symbol,
		AdjustedStrength:       confirmation.AdjustedStrength,
		Grade:                  grade,
		MarketState:            state.State,
		IsConfirmed:            confirmation.IsConfirmed,
		ConfirmationCount:      confirmation.ConfirmationCount,
		TimeframeConfirmations: confirmedMap(confirmation),
		Predictions:            predictions,
	}
	sig.Warnings = collectWarnings(state, confirmation, grade, in)
	return sig
}

func (g *Generator) classify(prices model.PriceArrays, snap IndicatorSnapshot) model.MarketStateResult {
	return market.Classify(prices.Highs, prices.Lows, prices.Closes, prices.Volumes, snap.ADX.Series, snap.ATR.Series, snap.Volume, g.thresholds)
}

// selectStrategy maps market state to a strategy: RANGING->ranging,
// TRENDING_*->trending, BREAKOUT_*->breakout, UNKNOWN->trending as a
// fallback.
func (g *Generator) selectStrategy(state model.MarketState) (strategy.Strategy, bool) {
	switch state {
	case model.StateRanging:
		return g.ranging, false
	case model.StateTrendingUp, model.StateTrendingDn:
		return g.trending, false
	case model.StateBreakoutUp, model.StateBreakoutDn:
		return g.breakout, false
	default:
		return g.trending, false
	}
}

func (g *Generator) buildInputs(prices model.PriceArrays, snap IndicatorSnapshot, i int) strategy.Inputs {
	prevRSI, prevKDJ := model.None(), indicator.KDJBar{K: model.None(), D: model.None(), J: model.None()}
	if i > 0 {
		prevRSI = snap.RSI.Series[i-1]
		prevKDJ = snap.KDJ.Series[i-1]
	}

	up, down, dist, resistance, support := breakoutSignal(prices, snap, g.thresholds, i)

	return strategy.Inputs{
		Close:               prices.Closes[i],
		RSI:                 snap.RSI.Latest,
		PrevRSI:             prevRSI,
		KDJ:                 snap.KDJ.Latest,
		PrevKDJ:             prevKDJ,
		Bollinger:           snap.Bollinger.Latest,
		ATR:                 snap.ATR.Latest,
		ATRSeries:           snap.ATR.Series,
		ATRSeriesIdx:        i,
		Volume:              snap.Volume,
		EMA5:                snap.EMA5.Latest,
		EMA20:               snap.EMA20.Latest,
		EMA60:               snap.EMA60.Latest,
		MACD:                snap.MACD,
		PlusDI:              snap.ADX.Latest.PlusDI,
		MinusDI:             snap.ADX.Latest.MinusDI,
		BreakoutUp:          up,
		BreakoutDown:        down,
		BreakoutDistanceATR: dist,
		Resistance:          resistance,
		Support:             support,
	}
}

// breakoutSignal recomputes the lookback-extreme check used by
// internal/market so the breakout strategy has BreakoutUp/Down/Distance
// without importing internal/market itself. resistance/support are the
// lookback window's high/low, threaded through so the breakout strategy
// can stop against them instead of a generic ATR multiple.
func breakoutSignal(prices model.PriceArrays, snap IndicatorSnapshot, th market.Thresholds, i int) (up, down bool, distanceATR, resistance, support float64) {
	resistance, support = model.None(), model.None()
	if i < th.BreakoutLookback || model.IsNone(snap.ATR.Series[i]) {
		return false, false, 0, resistance, support
	}
	start := i - th.BreakoutLookback
	maxHigh, minLow := prices.Highs[start], prices.Lows[start]
	for j := start; j < i; j++ {
		if prices.Highs[j] > maxHigh {
			maxHigh = prices.Highs[j]
		}
		if prices.Lows[j] < minLow {
			minLow = prices.Lows[j]
		}
	}
	resistance, support = maxHigh, minLow
	atr := snap.ATR.Series[i]
	if atr == 0 {
		return false, false, 0, resistance, support
	}
	if prices.Closes[i] > maxHigh {
		return true, false, (prices.Closes[i] - maxHigh) / atr, resistance, support
	}
	if prices.Closes[i] < minLow {
		return false, true, (minLow - prices.Closes[i]) / atr, resistance, support
	}
	return false, false, 0, resistance, support
}

// LastSnapshot returns the indicator pack computed by the most recent call
// to Generate, for building a dashboard Snapshot without recomputing it.
func (g *Generator) LastSnapshot() IndicatorSnapshot {
	return g.lastSnapshot
}

// LastMarketState returns the market-state classification from the most
// recent call to Generate.
func (g *Generator) LastMarketState() model.MarketStateResult {
	return g.lastState
}

// DashboardIndicators reduces an IndicatorSnapshot to the coarse, named
// values a dashboard snapshot publishes — one representative reading per
// indicator family rather than each family's full internal series.
func DashboardIndicators(snap IndicatorSnapshot) map[string]model.DashboardIndicator {
	entry := func(v float64) model.DashboardIndicator {
		return model.DashboardIndicator{Value: v, Ready: !model.IsNone(v)}
	}
	out := map[string]model.DashboardIndicator{
		"rsi":            entry(snap.RSI.Latest),
		"macd_histogram": entry(snap.MACD.LatestHistogram),
		"ema5":           entry(snap.EMA5.Latest),
		"ema20":          entry(snap.EMA20.Latest),
		"ema60":          entry(snap.EMA60.Latest),
		"bollinger_pctb": entry(snap.Bollinger.Latest.PercentB),
		"atr":            entry(snap.ATR.Latest),
		"adx":            entry(snap.ADX.Latest.ADX),
		"kdj_k":          entry(snap.KDJ.Latest.K),
		"cci":            entry(snap.CCI.Latest),
		"vwap":           entry(snap.VWAP.Latest),
		"volume_ratio":   entry(snap.Volume.LatestRatio),
	}
	for name, ind := range out {
		ind.Name = name
		out[name] = ind
	}
	return out
}

func confirmedMap(c mtf.Confirmation) map[string]bool {
	out := make(map[string]bool, len(c.PerTimeframe))
	for tf, conf := range c.PerTimeframe {
		out[tf] = conf.Result == mtf.Confirmed
	}
	return out
}

func holdSignal(symbol, reason string, snap IndicatorSnapshot, state model.MarketStateResult) model.TradingSignal {
	values := map[string]float64{
		"rsi": snap.RSI.Latest, "atr": snap.ATR.Latest, "adx": snap.ADX.Latest.ADX,
	}
	reasons := []string{"no qualifying signal"}
	if reason != "" {
		reasons = []string{reason}
	}
	return model.TradingSignal{
		StrategySignal: model.StrategySignal{Direction: model.Hold, Reasons: reasons, IndicatorValues: values},
		Symbol:         symbol,
		Grade:          model.GradeNone,
		MarketState:    state.State,
	}
}

// predictionsFor generates the {10,30,60}-minute predictions: confidence
// decays linearly with horizon, target price scales with ATR when
// available.
func predictionsFor(direction model.Direction, strength, close, atr float64, horizons []int) []model.Prediction {
	preds := make([]model.Prediction, 0, len(horizons))
	for _, h := range horizons {
		confidence := strength * (1 - float64(h)/120*0.3)
		var target *float64
		if !model.IsNone(atr) {
			delta := atr * float64(h) / 30
			t := close + delta
			if direction == model.Sell {
				t = close - delta
			}
			target = &t
		}
		preds = append(preds, model.Prediction{HorizonMinutes: h, Direction: direction, Confidence: confidence, TargetPrice: target})
	}
	return preds
}

// collectWarnings gathers the standard warning triggers: low market-state
// confidence, MTF rejections, a low grade, and an unconfirmed breakout.
func collectWarnings(state model.MarketStateResult, confirmation mtf.Confirmation, grade model.Grade, in strategy.Inputs) []string {
	var warnings []string
	if state.Confidence < 0.6 {
		warnings = append(warnings, "low market-state confidence")
	}
	if confirmation.RejectionCount > 0 {
		warnings = append(warnings, "rejected by a higher timeframe")
	}
	if grade == model.GradeC || grade == model.GradeNone {
		warnings = append(warnings, "low grade")
	}
	if (in.BreakoutUp || in.BreakoutDown) && !isVolumeSpike(in) {
		warnings = append(warnings, "breakout without volume spike")
	}
	return warnings
}

func isVolumeSpike(in strategy.Inputs) bool {
	return in.Volume.LatestCondition == indicator.VolSpike
}
