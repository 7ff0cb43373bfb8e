package model

import "math"

// Series is an indicator's per-bar output, aligned 1:1 with the input
// closes. A warm-up position that has no defined value yet is represented
// by NaN rather than a pointer-to-float, matching the numeric-first style
// of the rest of the pipeline; use IsNone/None below rather than comparing
// with math.IsNaN directly so warm-up handling reads as intentional.
type Series []float64

// None is the warm-up marker for one Series position.
func None() float64 { return math.NaN() }

// IsNone reports whether v is a warm-up marker.
func IsNone(v float64) bool { return math.IsNaN(v) }

// DashboardIndicator is the coarse, named indicator value shown in the
// unconditional "dashboard indicator pack" the signal generator computes
// every tick, independent of which family produced it.
type DashboardIndicator struct {
	Name  string
	Value float64
	Ready bool
}
