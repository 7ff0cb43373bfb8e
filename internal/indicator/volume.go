package indicator

import "signalengine/internal/model"

// VolumeCondition tags how the latest volume compares to its moving
// average.
type VolumeCondition string

const (
	VolSpike   VolumeCondition = "SPIKE"    // >= 2.0x
	VolHigh    VolumeCondition = "HIGH"     // >= 1.5x
	VolNormal  VolumeCondition = "NORMAL"
	VolLow     VolumeCondition = "LOW"      // <= 0.7x
	VolVeryLow VolumeCondition = "VERY_LOW" // <= 0.5x
)

// VolumeTrend tags the direction of the last k volume ratios.
type VolumeTrend string

const (
	VolIncreasing VolumeTrend = "INCREASING"
	VolDecreasing VolumeTrend = "DECREASING"
	VolStable     VolumeTrend = "STABLE"
)

// VolumeResult is the output of CalculateVolume.
type VolumeResult struct {
	LatestMA        float64
	LatestRatio     float64
	LatestCondition VolumeCondition
	Trend           VolumeTrend
	MA              model.Series
	Ratio           model.Series
}

// CalculateVolume computes the volume moving average and ratio over
// period n, plus a coarse condition tag for the latest bar and a trend
// tag over the last k ratios.
func CalculateVolume(volumes []float64, n, trendLookback int) VolumeResult {
	ma := fillNone(len(volumes))
	ratio := fillNone(len(volumes))
	if len(volumes) < n || n <= 0 {
		return VolumeResult{LatestMA: model.None(), LatestRatio: model.None(), LatestCondition: VolNormal, Trend: VolStable, MA: ma, Ratio: ratio}
	}

	for i := n - 1; i < len(volumes); i++ {
		m := sma(volumes, i, n)
		ma[i] = m
		if m == 0 {
			ratio[i] = 0
		} else {
			ratio[i] = volumes[i] / m
		}
	}

	latestRatio := ratio[len(ratio)-1]
	cond := conditionFor(latestRatio)
	trend := trendFor(ratio, trendLookback)

	return VolumeResult{
		LatestMA:        ma[len(ma)-1],
		LatestRatio:     latestRatio,
		LatestCondition: cond,
		Trend:           trend,
		MA:              ma,
		Ratio:           ratio,
	}
}

func conditionFor(ratio float64) VolumeCondition {
	switch {
	case model.IsNone(ratio):
		return VolNormal
	case ratio >= 2.0:
		return VolSpike
	case ratio >= 1.5:
		return VolHigh
	case ratio <= 0.5:
		return VolVeryLow
	case ratio <= 0.7:
		return VolLow
	default:
		return VolNormal
	}
}

func trendFor(ratio model.Series, k int) VolumeTrend {
	n := len(ratio)
	if k <= 1 || n < k {
		return VolStable
	}
	window := ratio[n-k:]
	for _, v := range window {
		if model.IsNone(v) {
			return VolStable
		}
	}
	rising, falling := 0, 0
	for i := 1; i < len(window); i++ {
		if window[i] > window[i-1] {
			rising++
		} else if window[i] < window[i-1] {
			falling++
		}
	}
	switch {
	case rising > falling:
		return VolIncreasing
	case falling > rising:
		return VolDecreasing
	default:
		return VolStable
	}
}
