package model

// Snapshot is the immutable, value-typed state a dashboard client observes
// after one tick's full pipeline pass. It is published only once every
// step of the signal generator's orchestration has completed for that
// tick, so a reader never sees a torn mix of pre- and post-update state.
type Snapshot struct {
	Symbol          string
	PrimaryInterval string
	Seq             uint64
	Candle          Candle
	Indicators      map[string]DashboardIndicator
	MarketState     MarketStateResult
	LastSignal      *TradingSignal
	Accuracy        map[int]AccuracyStats
	GeneratedAt     int64 // ms
}
