package indicator

import "signalengine/internal/model"

// VWAPResult is the output of CalculateVWAP.
type VWAPResult struct {
	Latest float64
	Series model.Series
}

// CalculateVWAP computes a session-less, cumulative volume-weighted
// average price: running sum(TP*v)/sum(v) over the supplied slice.
// There is no intraday reset here — the caller decides
// where a "session" begins by controlling which slice it passes in.
func CalculateVWAP(highs, lows, closes, volumes []float64) VWAPResult {
	series := fillNone(len(closes))
	cumPV, cumV := 0.0, 0.0
	for i := range closes {
		tp := (highs[i] + lows[i] + closes[i]) / 3.0
		cumPV += tp * volumes[i]
		cumV += volumes[i]
		if cumV == 0 {
			continue
		}
		series[i] = cumPV / cumV
	}
	if len(series) == 0 {
		return VWAPResult{Latest: model.None(), Series: series}
	}
	return VWAPResult{Latest: series[len(series)-1], Series: series}
}
