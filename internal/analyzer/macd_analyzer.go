package analyzer

// MACDStrength categorizes histogram magnitude relative to its own recent
// history.
type MACDStrength string

const (
	MACDStrong MACDStrength = "STRONG"
	MACDWeak   MACDStrength = "WEAK"
)

// MACDVerdict is the MACD analyzer's per-bar output.
type MACDVerdict struct {
	Verdict  Verdict
	Strength MACDStrength
}

// AnalyzeMACD classifies a MACD/signal cross: BUY when the
// MACD line crosses above its signal line. Strength is STRONG when the
// current histogram magnitude is at or above the 75th percentile of
// |histogram| over the last 50 bars.
func AnalyzeMACD(prevMACD, prevSignal, macd, signal float64, recentHistogram []float64) MACDVerdict {
	v := VerdictHold
	if !isNone(prevMACD) && !isNone(prevSignal) {
		if prevMACD < prevSignal && macd > signal {
			v = VerdictBuy
		} else if prevMACD > prevSignal && macd < signal {
			v = VerdictSell
		}
	}
	return MACDVerdict{Verdict: v, Strength: strengthFor(macd-signal, recentHistogram)}
}

func strengthFor(histogram float64, recent []float64) MACDStrength {
	threshold := percentile75Abs(recent)
	if abs(histogram) >= threshold {
		return MACDStrong
	}
	return MACDWeak
}

func percentile75Abs(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	abss := make([]float64, 0, len(values))
	for _, v := range values {
		if !isNone(v) {
			abss = append(abss, abs(v))
		}
	}
	if len(abss) == 0 {
		return 0
	}
	// insertion sort: these windows are small (<=50) so O(n^2) is fine
	// and avoids pulling in sort for one call site.
	for i := 1; i < len(abss); i++ {
		for j := i; j > 0 && abss[j-1] > abss[j]; j-- {
			abss[j-1], abss[j] = abss[j], abss[j-1]
		}
	}
	idx := int(float64(len(abss)-1) * 0.75)
	return abss[idx]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
