package analyzer

// KDJVerdict is the KDJ analyzer's per-bar output.
type KDJVerdict struct {
	Verdict Verdict
	Strong  bool // STRONG_BUY / STRONG_SELL qualifier
}

// AnalyzeKDJ classifies a K/D cross: BUY when K crosses D
// upward, STRONG_BUY additionally when K<20 or D<20; SELL is symmetric at
// the upper band.
func AnalyzeKDJ(prevK, prevD, k, d float64) KDJVerdict {
	if isNone(prevK) || isNone(prevD) {
		return KDJVerdict{Verdict: VerdictHold}
	}

	switch {
	case prevK <= prevD && k > d:
		return KDJVerdict{Verdict: VerdictBuy, Strong: k < 20 || d < 20}
	case prevK >= prevD && k < d:
		return KDJVerdict{Verdict: VerdictSell, Strong: k > 80 || d > 80}
	default:
		return KDJVerdict{Verdict: VerdictHold}
	}
}

// MomentumLevelFor buckets J's magnitude, mirroring the source's
// get_momentum_level (SPEC_FULL.md §4.2a: dashboard-only, never a
// strategy gate).
func MomentumLevelFor(j float64) MomentumLevel {
	switch {
	case isNone(j):
		return Neutral
	case j > 100:
		return Overbought
	case j > 80:
		return Bullish
	case j < 0:
		return Oversold
	case j < 20:
		return Bearish
	default:
		return Neutral
	}
}
