package indicator

import "signalengine/internal/model"

// MACDResult is the output of CalculateMACD. MACDLine has a None prefix of
// slow-1 entries; SignalLine and Histogram share a None prefix of
// slow+signal-2 entries. Both EMAs are aligned against the same closes
// slice rather than an ad-hoc-offset variant that skews the histogram's
// warm-up length.
type MACDResult struct {
	LatestMACD      float64
	LatestSignal    float64
	LatestHistogram float64
	MACDLine        model.Series
	SignalLine      model.Series
	Histogram       model.Series
}

// CalculateMACD computes the MACD line (EMA(fast) - EMA(slow)), its signal
// line (EMA(signal) of the MACD line), and the histogram (MACD - signal).
func CalculateMACD(closes []float64, fast, slow, signal int) MACDResult {
	n := len(closes)
	macdLine := fillNone(n)
	signalLine := fillNone(n)
	histogram := fillNone(n)

	emaFast := CalculateEMA(closes, fast)
	emaSlow := CalculateEMA(closes, slow)

	// The MACD line is defined wherever both EMAs are defined, which is
	// exactly the slow EMA's warm-up tail since slow > fast.
	warmup := slow - 1
	if warmup < 0 || warmup >= n {
		return MACDResult{LatestMACD: model.None(), LatestSignal: model.None(), LatestHistogram: model.None(),
			MACDLine: macdLine, SignalLine: signalLine, Histogram: histogram}
	}
	rawMACD := make([]float64, n)
	for i := warmup; i < n; i++ {
		rawMACD[i] = emaFast.Series[i] - emaSlow.Series[i]
		macdLine[i] = rawMACD[i]
	}

	// The signal line is an EMA(signal) applied to the defined tail of the
	// MACD line, so its own warm-up is (slow-1) + (signal-1).
	sigWarmup := warmup + signal - 1
	if sigWarmup >= n {
		return MACDResult{LatestMACD: macdLine[n-1], LatestSignal: model.None(), LatestHistogram: model.None(),
			MACDLine: macdLine, SignalLine: signalLine, Histogram: histogram}
	}

	alpha := 2.0 / float64(signal+1)
	seed := 0.0
	for i := warmup; i < warmup+signal; i++ {
		seed += rawMACD[i]
	}
	seed /= float64(signal)
	signalLine[sigWarmup] = seed
	histogram[sigWarmup] = macdLine[sigWarmup] - seed

	cur := seed
	for i := sigWarmup + 1; i < n; i++ {
		cur = alpha*rawMACD[i] + (1-alpha)*cur
		signalLine[i] = cur
		histogram[i] = macdLine[i] - cur
	}

	return MACDResult{
		LatestMACD:      macdLine[n-1],
		LatestSignal:    signalLine[n-1],
		LatestHistogram: histogram[n-1],
		MACDLine:        macdLine,
		SignalLine:      signalLine,
		Histogram:       histogram,
	}
}
