// Package indicator provides stateless technical indicator kernels.
//
// Every kernel has the signature calculate(inputs...) -> {latest, series}:
// a pure function of plain float64 slices with no hidden state. This is a
// deliberate departure from an incremental Update/Value/Ready design —
// the same family of formulas admits both, but a pure form makes the
// incremental-equals-batch correctness property (see correctness_test.go)
// trivial to state and enforce, and it removes an entire class of
// checkpoint/restore bugs that come with mutable indicator state.
//
// Warm-up positions in a Series are represented by model.None() (NaN)
// rather than a zero value, so "not yet computable" can never be mistaken
// for a real zero reading.
package indicator

import "signalengine/internal/model"

// sma computes the simple moving average of the last n values ending at
// index i (inclusive). Callers must ensure i >= n-1.
func sma(values []float64, i, n int) float64 {
	sum := 0.0
	for j := i - n + 1; j <= i; j++ {
		sum += values[j]
	}
	return sum / float64(n)
}

// fillNone returns a Series of length n filled with warm-up markers,
// ready for the caller to overwrite the defined tail.
func fillNone(n int) model.Series {
	s := make(model.Series, n)
	for i := range s {
		s[i] = model.None()
	}
	return s
}
