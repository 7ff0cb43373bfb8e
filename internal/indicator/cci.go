package indicator

import "signalengine/internal/model"

// CCIResult is the output of CalculateCCI.
type CCIResult struct {
	Latest float64
	Series model.Series
}

// CalculateCCI computes the Commodity Channel Index over period n. The
// mean-absolute-deviation window ends at the current bar (i-n+1..i
// inclusive) — a variant whose window does not end at the current bar is
// inconsistent; this is the TradingView-matching form.
func CalculateCCI(highs, lows, closes []float64, n int) CCIResult {
	series := fillNone(len(closes))
	if len(closes) < n || n <= 0 {
		return CCIResult{Latest: model.None(), Series: series}
	}

	tp := make([]float64, len(closes))
	for i := range closes {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3.0
	}

	for i := n - 1; i < len(closes); i++ {
		smaTP := sma(tp, i, n)
		md := 0.0
		for j := i - n + 1; j <= i; j++ {
			md += abs(tp[j] - smaTP)
		}
		md /= float64(n)

		if md == 0 {
			series[i] = 0
		} else {
			series[i] = (tp[i] - smaTP) / (0.015 * md)
		}
	}

	return CCIResult{Latest: series[len(series)-1], Series: series}
}
