package indicator

import (
	"math"

	"signalengine/internal/model"
)

// ATRResult is the output of CalculateATR.
type ATRResult struct {
	Latest float64
	Series model.Series
}

// CalculateATR computes Wilder's Average True Range over period n.
// TR_0 = high_0 - low_0 (no previous close to compare
// against); the initial ATR is the simple mean of TR_1..TR_n, and every
// value after that follows Wilder smoothing. The series is index-aligned
// with the input: position n is the first non-None value.
func CalculateATR(highs, lows, closes []float64, n int) ATRResult {
	series := fillNone(len(closes))
	if len(closes) < n+1 || n <= 0 {
		return ATRResult{Latest: model.None(), Series: series}
	}

	tr := make([]float64, len(closes))
	tr[0] = highs[0] - lows[0]
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	sum := 0.0
	for i := 1; i <= n; i++ {
		sum += tr[i]
	}
	atr := sum / float64(n)
	series[n] = atr

	p := float64(n)
	for i := n + 1; i < len(closes); i++ {
		atr = (atr*(p-1) + tr[i]) / p
		series[i] = atr
	}

	return ATRResult{Latest: series[len(series)-1], Series: series}
}
