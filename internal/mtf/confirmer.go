// Package mtf confirms a primary-timeframe signal against higher timeframes
// before it is emitted: a higher-timeframe check never originates a
// signal, only dampens or vetoes one.
package mtf

import (
	"signalengine/internal/indicator"
	"signalengine/internal/model"
)

// Result is one confirmation level.
type Result string

const (
	Confirmed Result = "CONFIRMED"
	Rejected  Result = "REJECTED"
	Neutral   Result = "NEUTRAL"
)

// TimeframeInputs bundles one confirmation timeframe's OHLCV data.
type TimeframeInputs struct {
	Highs, Lows, Closes, Volumes []float64
}

// TimeframeConfirmation is one timeframe's confirmation outcome.
type TimeframeConfirmation struct {
	Timeframe string
	Result    Result
	Score     float64 // 0..1
	Reasons   []string
}

// Confirmation is the aggregate multi-timeframe result.
type Confirmation struct {
	IsConfirmed       bool
	FinalScore        float64
	ConfirmationCount int
	RejectionCount    int
	PerTimeframe      map[string]TimeframeConfirmation
	Reasons           []string
	AdjustedStrength  float64
}

// Weights maps a timeframe label to its contribution to the final score.
// Defaults: primary 5m=0.4, 15m=0.35, 1h=0.25.
type Weights map[string]float64

// DefaultWeights returns the standard 5m/15m/1h weighting.
func DefaultWeights() Weights {
	return Weights{"5m": 0.4, "15m": 0.35, "1h": 0.25}
}

// Confirmer checks a primary-timeframe signal against a set of higher
// timeframes.
type Confirmer struct {
	PrimaryTimeframe       string
	ConfirmationTimeframes []string
	MinConfirmations       int
	Weights                Weights
}

// New returns a Confirmer wired to the default 5m/15m/1h setup.
func New() *Confirmer {
	return &Confirmer{
		PrimaryTimeframe:       "5m",
		ConfirmationTimeframes: []string{"15m", "1h"},
		MinConfirmations:       1,
		Weights:                DefaultWeights(),
	}
}

// Confirm runs the confirmation checks for every configured higher
// timeframe present in data, then combines them into a single adjusted
// strength. A HOLD direction never needs confirmation.
func (c *Confirmer) Confirm(direction model.Direction, primaryStrength float64, data map[string]TimeframeInputs) Confirmation {
	if direction == model.Hold {
		return Confirmation{PerTimeframe: map[string]TimeframeConfirmation{}, Reasons: []string{"no signal, nothing to confirm"}}
	}

	perTF := make(map[string]TimeframeConfirmation, len(c.ConfirmationTimeframes))
	confirmedCount, rejectedCount := 0, 0
	var reasons []string

	for _, tf := range c.ConfirmationTimeframes {
		in, ok := data[tf]
		if !ok || len(in.Closes) < 30 {
			perTF[tf] = TimeframeConfirmation{Timeframe: tf, Result: Neutral, Score: 0.5, Reasons: []string{"insufficient data"}}
			continue
		}
		conf := checkTimeframe(tf, direction, in)
		perTF[tf] = conf
		switch conf.Result {
		case Confirmed:
			confirmedCount++
			reasons = append(reasons, tf+" confirmed: "+joinReasons(conf.Reasons))
		case Rejected:
			rejectedCount++
			reasons = append(reasons, tf+" rejected: "+joinReasons(conf.Reasons))
		}
	}

	finalScore := c.finalScore(primaryStrength, perTF)
	isConfirmed := confirmedCount >= c.MinConfirmations

	if rejectedCount > 0 {
		if rejectedCount >= len(c.ConfirmationTimeframes) {
			isConfirmed = false
			finalScore *= 0.3
		} else {
			finalScore *= 1 - 0.2*float64(rejectedCount)
		}
	}

	return Confirmation{
		IsConfirmed:       isConfirmed,
		FinalScore:        finalScore,
		ConfirmationCount: confirmedCount,
		RejectionCount:    rejectedCount,
		PerTimeframe:      perTF,
		Reasons:           reasons,
		AdjustedStrength:  primaryStrength * finalScore,
	}
}

// checkTimeframe scores one higher timeframe against trend alignment
// (EMA20/EMA60), RSI extremes, and MACD histogram sign; the 1h timeframe
// additionally gets a volume-trend check. Each check nudges a base score
// of 0.5; the final CONFIRMED / REJECTED / NEUTRAL bucket is a function
// of both the score and the fraction of checks that passed outright.
func checkTimeframe(tf string, direction model.Direction, in TimeframeInputs) TimeframeConfirmation {
	score := 0.5
	checksPassed, checksTotal := 0, 0
	var reasons []string

	ema20 := indicator.CalculateEMA(in.Closes, 20).Latest
	ema60 := indicator.CalculateEMA(in.Closes, 60).Latest
	price := in.Closes[len(in.Closes)-1]

	checksTotal++
	if !model.IsNone(ema20) && !model.IsNone(ema60) {
		if direction == model.Buy {
			switch {
			case price > ema20 && ema20 > ema60:
				checksPassed++
				score += 0.15
				reasons = append(reasons, "uptrend, price above both EMAs")
			case price > ema60:
				score += 0.05
				reasons = append(reasons, "price above the slow EMA")
			default:
				score -= 0.1
				reasons = append(reasons, "trend does not support a long")
			}
		} else {
			switch {
			case price < ema20 && ema20 < ema60:
				checksPassed++
				score += 0.15
				reasons = append(reasons, "downtrend, price below both EMAs")
			case price < ema60:
				score += 0.05
				reasons = append(reasons, "price below the slow EMA")
			default:
				score -= 0.1
				reasons = append(reasons, "trend does not support a short")
			}
		}
	}

	rsi := indicator.CalculateRSI(in.Closes, 14).Latest
	checksTotal++
	if !model.IsNone(rsi) {
		if direction == model.Buy {
			switch {
			case rsi > 75:
				score -= 0.15
				reasons = append(reasons, "RSI too high to chase a long")
			case rsi < 30:
				checksPassed++
				score += 0.10
				reasons = append(reasons, "RSI oversold, supports a long")
			default:
				checksPassed++
				score += 0.05
				reasons = append(reasons, "RSI unremarkable")
			}
		} else {
			switch {
			case rsi < 25:
				score -= 0.15
				reasons = append(reasons, "RSI too low to chase a short")
			case rsi > 70:
				checksPassed++
				score += 0.10
				reasons = append(reasons, "RSI overbought, supports a short")
			default:
				checksPassed++
				score += 0.05
				reasons = append(reasons, "RSI unremarkable")
			}
		}
	}

	hist := indicator.CalculateMACD(in.Closes, 12, 26, 9).LatestHistogram
	checksTotal++
	if !model.IsNone(hist) {
		if direction == model.Buy {
			if hist > 0 {
				checksPassed++
				score += 0.10
				reasons = append(reasons, "MACD histogram positive")
			} else {
				score -= 0.05
				reasons = append(reasons, "MACD histogram negative")
			}
		} else {
			if hist < 0 {
				checksPassed++
				score += 0.10
				reasons = append(reasons, "MACD histogram negative")
			} else {
				score -= 0.05
				reasons = append(reasons, "MACD histogram positive")
			}
		}
	}

	if tf == "1h" && len(in.Volumes) >= 5 {
		checksTotal++
		recent := average(in.Volumes[len(in.Volumes)-3:])
		olderWindow := in.Volumes[len(in.Volumes)-3:]
		if len(in.Volumes) >= 6 {
			olderWindow = in.Volumes[len(in.Volumes)-6 : len(in.Volumes)-3]
		}
		older := average(olderWindow)
		switch {
		case recent > older*1.2:
			checksPassed++
			score += 0.05
			reasons = append(reasons, "volume expanding")
		case recent < older*0.7:
			reasons = append(reasons, "volume contracting")
		}
	}

	passRate := 0.5
	if checksTotal > 0 {
		passRate = float64(checksPassed) / float64(checksTotal)
	}

	var result Result
	switch {
	case score >= 0.65 && passRate >= 0.5:
		result = Confirmed
	case score < 0.4 || passRate < 0.3:
		result = Rejected
	default:
		result = Neutral
	}

	return TimeframeConfirmation{Timeframe: tf, Result: result, Score: clamp01(score), Reasons: reasons}
}

func (c *Confirmer) finalScore(primaryStrength float64, perTF map[string]TimeframeConfirmation) float64 {
	primaryWeight := c.Weights[c.PrimaryTimeframe]
	if primaryWeight == 0 {
		primaryWeight = 0.4
	}
	total := primaryStrength * primaryWeight
	totalWeight := primaryWeight

	for tf, conf := range perTF {
		w, ok := c.Weights[tf]
		if !ok {
			w = 0.25
		}
		total += conf.Score * w
		totalWeight += w
	}

	if totalWeight > 0 {
		return total / totalWeight
	}
	return primaryStrength
}

func average(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}
