package model

// PriceArrays is the derived view every indicator kernel consumes. Kernels
// never see a Candle directly — this keeps the kernel signatures pure
// functions of plain float64 slices, which is what makes the
// incremental-equals-batch correctness property easy to state and test.
type PriceArrays struct {
	Opens   []float64
	Highs   []float64
	Lows    []float64
	Closes  []float64
	Volumes []float64
}

// Len returns the number of bars, using Closes as the reference length.
func (p PriceArrays) Len() int {
	return len(p.Closes)
}

// Slice returns the arrays truncated to the first n bars (n <= Len()),
// used by the incremental-equals-batch tests: calculate(P[..=i]) is
// PriceArrays.Slice(i+1) fed into the same kernel.
func (p PriceArrays) Slice(n int) PriceArrays {
	return PriceArrays{
		Opens:   p.Opens[:n],
		Highs:   p.Highs[:n],
		Lows:    p.Lows[:n],
		Closes:  p.Closes[:n],
		Volumes: p.Volumes[:n],
	}
}
