package contracts

import "context"

// PriceSource supplies daily price series (S0)
// ⭐ SSOT: retries live behind this interface; an exhausted fetch returns an empty series
type PriceSource interface {
	FetchSeries(ctx context.Context, symbol string, period string) (*PriceSeries, error)
}

// SnapshotStore loads and persists the macro snapshot (S0)
type SnapshotStore interface {
	Load(ctx context.Context) (*MacroSnapshot, error)
	Save(ctx context.Context, snapshot *MacroSnapshot) error
}

// MetricsRecorder receives pipeline observations
type MetricsRecorder interface {
	RecordAnalysis(outcome string)
	RecordIndicatorFailure(indicator string)
	RecordMacroDegraded(factor string)
	RecordHybridScore(symbol string, score float64)
	RecordLatency(op string, seconds float64)
}
