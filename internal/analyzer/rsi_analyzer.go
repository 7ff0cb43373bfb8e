package analyzer

// RSIVerdict is the RSI analyzer's per-bar output.
type RSIVerdict struct {
	Verdict  Verdict
	Momentum MomentumLevel
}

// AnalyzeRSI classifies the latest RSI reading against the prior one:
// BUY on an upward cross of the oversold threshold (30),
// SELL symmetrically at overbought (70).
func AnalyzeRSI(prevRSI, rsi, oversold, overbought float64) RSIVerdict {
	v := VerdictHold
	if !isNone(prevRSI) {
		if prevRSI <= oversold && rsi > oversold {
			v = VerdictBuy
		} else if prevRSI >= overbought && rsi < overbought {
			v = VerdictSell
		}
	}
	return RSIVerdict{Verdict: v, Momentum: momentumFor(rsi, oversold, overbought)}
}

func momentumFor(rsi, oversold, overbought float64) MomentumLevel {
	switch {
	case isNone(rsi):
		return Neutral
	case rsi >= overbought:
		return Overbought
	case rsi >= 55:
		return Bullish
	case rsi <= oversold:
		return Oversold
	case rsi <= 45:
		return Bearish
	default:
		return Neutral
	}
}
