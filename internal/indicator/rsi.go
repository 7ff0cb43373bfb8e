package indicator

import "signalengine/internal/model"

// RSIResult is the output of CalculateRSI.
type RSIResult struct {
	Latest float64
	Series model.Series
}

// CalculateRSI computes Wilder's Relative Strength Index over period n.
// Warm-up is n Nones: the first n close-to-close diffs
// seed the initial average gain/loss as a simple mean, and every value
// after that follows Wilder smoothing avg = (prev*(n-1) + current)/n.
// avg_loss == 0 is defined as RSI = 100.
func CalculateRSI(closes []float64, n int) RSIResult {
	series := fillNone(len(closes))
	if len(closes) < n+1 || n <= 0 {
		return RSIResult{Latest: model.None(), Series: series}
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= n; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(n)
	avgLoss /= float64(n)
	series[n] = rsiFromAverages(avgGain, avgLoss)

	p := float64(n)
	for i := n + 1; i < len(closes); i++ {
		avgGain = (avgGain*(p-1) + gains[i]) / p
		avgLoss = (avgLoss*(p-1) + losses[i]) / p
		series[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return RSIResult{Latest: series[len(series)-1], Series: series}
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
