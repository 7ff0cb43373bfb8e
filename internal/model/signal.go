package model

// Direction is a strategy or prediction's directional call.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// Grade is the coarse strength tier derived from adjusted_strength.
type Grade string

const (
	GradeA    Grade = "A"
	GradeB    Grade = "B"
	GradeC    Grade = "C"
	GradeNone Grade = "NONE"
)

// StrategySignal is what a sub-strategy's Analyze returns: the pre-MTF,
// pre-grade result of one regime-specific scorer.
type StrategySignal struct {
	Direction        Direction
	Strength         float64 // 0..1
	StrategyName     string
	Reasons          []string
	EntryPrice       float64
	StopLoss         float64
	TakeProfit       *float64
	IndicatorValues  map[string]float64
}

// Prediction is one horizon's directional forecast, generated once per
// emitted TradingSignal.
type Prediction struct {
	HorizonMinutes int
	Direction      Direction
	Confidence     float64
	TargetPrice    *float64
}

// TradingSignal is the fully assembled, emittable signal: a StrategySignal
// after multi-timeframe confirmation, grading, and prediction generation.
type TradingSignal struct {
	StrategySignal

	ID                     string
	Timestamp              int64 // ms
	Symbol                 string
	AdjustedStrength       float64
	Grade                  Grade
	MarketState            MarketState
	IsConfirmed            bool
	ConfirmationCount      int
	TimeframeConfirmations map[string]bool
	Predictions            []Prediction
	Warnings               []string
}

// GradeFor is a pure function of adjusted_strength: A >= 0.75, B >= 0.50,
// C >= 0.30, else NONE. Non-decreasing by construction — the boundary
// values below are the contract, not tuning knobs.
func GradeFor(adjustedStrength, aThr, bThr, cThr float64) Grade {
	switch {
	case adjustedStrength >= aThr:
		return GradeA
	case adjustedStrength >= bThr:
		return GradeB
	case adjustedStrength >= cThr:
		return GradeC
	default:
		return GradeNone
	}
}
