package analyzer

// BollingerVerdict is the Bollinger analyzer's per-bar output.
type BollingerVerdict struct {
	Verdict           Verdict
	Squeeze           bool
	SqueezeBreakoutUp bool
}

// AnalyzeBollinger classifies price position within the bands: BUY
// near/through the lower band, SELL near/through the upper
// band, plus a squeeze tag when bandwidth is unusually tight and a
// breakout-from-squeeze tag when %B pushes through 0.8 right after one.
func AnalyzeBollinger(close, lower, upper, percentB, bandwidth, squeezeThr float64, wasSqueezed bool) BollingerVerdict {
	v := VerdictHold
	switch {
	case close <= lower*1.01:
		v = VerdictBuy
	case close >= upper*0.99:
		v = VerdictSell
	}

	squeeze := !isNone(bandwidth) && bandwidth < squeezeThr
	breakout := wasSqueezed && !squeeze && !isNone(percentB) && percentB > 0.8

	return BollingerVerdict{Verdict: v, Squeeze: squeeze, SqueezeBreakoutUp: breakout}
}
