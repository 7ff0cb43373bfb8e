package indicator

import (
	"math"

	"signalengine/internal/model"
)

// BollingerBand is one bar's band reading.
type BollingerBand struct {
	Mid       float64
	Upper     float64
	Lower     float64
	PercentB  float64
	Bandwidth float64
}

// BollingerResult is the output of CalculateBollinger.
type BollingerResult struct {
	Latest BollingerBand
	Series []BollingerBand // Mid==NaN marks a warm-up position
}

// CalculateBollinger computes Bollinger Bands over period n with width
// multiplier k. std is the population standard deviation (divisor n, not
// n-1) — this is load-bearing, not a rounding convenience. PercentB is
// 0.5 when the band is degenerate (upper==lower).
func CalculateBollinger(closes []float64, n int, k float64) BollingerResult {
	series := make([]BollingerBand, len(closes))
	for i := range series {
		series[i] = BollingerBand{Mid: model.None(), Upper: model.None(), Lower: model.None(), PercentB: model.None(), Bandwidth: model.None()}
	}
	if len(closes) < n || n <= 0 {
		return BollingerResult{Latest: BollingerBand{Mid: model.None(), Upper: model.None(), Lower: model.None(), PercentB: model.None(), Bandwidth: model.None()}, Series: series}
	}

	for i := n - 1; i < len(closes); i++ {
		mid := sma(closes, i, n)
		variance := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := closes[j] - mid
			variance += d * d
		}
		std := math.Sqrt(variance / float64(n))
		upper := mid + k*std
		lower := mid - k*std

		pb := 0.5
		if upper != lower {
			pb = (closes[i] - lower) / (upper - lower)
		}
		bw := 0.0
		if mid != 0 {
			bw = (upper - lower) / mid
		}

		series[i] = BollingerBand{Mid: mid, Upper: upper, Lower: lower, PercentB: pb, Bandwidth: bw}
	}

	return BollingerResult{Latest: series[len(series)-1], Series: series}
}
