package indicator

import "signalengine/internal/model"

// KDJBar is one bar's K/D/J reading.
type KDJBar struct {
	K, D, J float64
}

// KDJResult is the output of CalculateKDJ.
type KDJResult struct {
	Latest KDJBar
	Series []KDJBar
}

// CalculateKDJ computes the TradingView bcwsma variant of KDJ. RSV is
// the raw stochastic value over the n-period high/low
// window (50 when the window is degenerate); K and D each apply the
// bcwsma recurrence bcwsma = (weight*s + (length-weight)*prev)/length with
// weight=1 and a seed of 50.0. This seed and this weight-1 recurrence are
// load-bearing and MUST NOT be replaced by a generic EMA formula — that
// would silently change every K/D value after warm-up.
func CalculateKDJ(highs, lows, closes []float64, n, smooth int) KDJResult {
	series := make([]KDJBar, len(closes))
	for i := range series {
		series[i] = KDJBar{K: model.None(), D: model.None(), J: model.None()}
	}
	if len(closes) < n || n <= 0 {
		return KDJResult{Latest: KDJBar{K: model.None(), D: model.None(), J: model.None()}, Series: series}
	}

	const seed = 50.0
	k, d := seed, seed
	for i := n - 1; i < len(closes); i++ {
		hi, lo := highs[i], lows[i]
		for j := i - n + 1; j < i; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}
		rsv := 50.0
		if hi != lo {
			rsv = 100.0 * (closes[i] - lo) / (hi - lo)
		}

		k = bcwsma(rsv, k, smooth, 1)
		d = bcwsma(k, d, smooth, 1)
		j := 3*k - 2*d

		series[i] = KDJBar{K: k, D: d, J: j}
	}

	return KDJResult{Latest: series[len(series)-1], Series: series}
}

// bcwsma is TradingView's weighted moving average recurrence:
// bcwsma = (weight*s + (length-weight)*prev) / length.
func bcwsma(s, prev float64, length, weight int) float64 {
	return (float64(weight)*s + float64(length-weight)*prev) / float64(length)
}
