// Package analyzer wraps indicator kernels with signal classification.
// Analyzers are data-transformation functions over an indicator result
// plus prior-value(s), not a class hierarchy — every analyzer here is a
// free function.
package analyzer

import "signalengine/internal/model"

// Verdict is an analyzer's coarse classification of the latest bar.
type Verdict string

const (
	VerdictBuy  Verdict = "BUY"
	VerdictSell Verdict = "SELL"
	VerdictHold Verdict = "HOLD"
)

// MomentumLevel buckets RSI's position within its range.
type MomentumLevel string

const (
	Overbought MomentumLevel = "OVERBOUGHT"
	Bullish    MomentumLevel = "BULLISH"
	Neutral    MomentumLevel = "NEUTRAL"
	Bearish    MomentumLevel = "BEARISH"
	Oversold   MomentumLevel = "OVERSOLD"
)

func isNone(v float64) bool { return model.IsNone(v) }
