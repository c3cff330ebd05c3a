package brain

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/strategyconfig"
	"github.com/bistsignal/backend/pkg/logger"
)

type fakePrices struct {
	mu      sync.Mutex
	bars    int
	err     error
	calls   int
	periods []string
}

func (f *fakePrices) FetchSeries(ctx context.Context, symbol string, period string) (*contracts.PriceSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.periods = append(f.periods, period)
	if f.err != nil {
		return nil, f.err
	}
	return wavySeries(symbol, f.bars), nil
}

// wavySeries trends up with a swing so every indicator has something to read
func wavySeries(symbol string, n int) *contracts.PriceSeries {
	series := &contracts.PriceSeries{Symbol: symbol}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 100 + float64(i)*0.2 + 3*math.Sin(float64(i)/3)
		series.Points = append(series.Points, contracts.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: float64(1000 + (i%7)*100),
		})
	}
	return series
}

type fakeSnapshots struct {
	snapshot *contracts.MacroSnapshot
	err      error
}

func (f *fakeSnapshots) Load(ctx context.Context) (*contracts.MacroSnapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeSnapshots) Save(ctx context.Context, snapshot *contracts.MacroSnapshot) error {
	f.snapshot = snapshot
	return nil
}

func fullSnapshot() *contracts.MacroSnapshot {
	return &contracts.MacroSnapshot{
		LastUpdate: "2025-03-12 18:30:00",
		USDTRY:     &contracts.FactorQuote{Current: contracts.Float(36.5), Change30D: contracts.Float(1.5)},
		EURTRY:     &contracts.FactorQuote{Current: contracts.Float(39.8), Change30D: contracts.Float(2.0)},
		BIST100: &contracts.IndexQuote{
			Current:   contracts.Float(9800),
			Trend:     contracts.TrendUp,
			Change30D: contracts.Float(4.2),
		},
		Oil:              &contracts.FactorQuote{Current: contracts.Float(72.4), Change30D: contracts.Float(-6.1)},
		Gold:             &contracts.FactorQuote{Current: contracts.Float(2900), Change30D: contracts.Float(3.0)},
		TCMBRate:         contracts.Float(42.5),
		PreviousTCMBRate: contracts.Float(45),
	}
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []string
	hybrid   map[string]float64
	ops      map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{hybrid: map[string]float64{}, ops: map[string]int{}}
}

func (m *fakeMetrics) RecordAnalysis(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *fakeMetrics) RecordIndicatorFailure(string) {}
func (m *fakeMetrics) RecordMacroDegraded(string)     {}

func (m *fakeMetrics) RecordHybridScore(symbol string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hybrid[symbol] = score
}

func (m *fakeMetrics) RecordLatency(op string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[op]++
}

type fakeSink struct {
	reports []*contracts.AnalysisReport
	err     error
}

func (s *fakeSink) SaveReport(ctx context.Context, report *contracts.AnalysisReport) error {
	s.reports = append(s.reports, report)
	return s.err
}

func newTestOrchestrator(t *testing.T, prices contracts.PriceSource, snapshots contracts.SnapshotStore, metrics contracts.MetricsRecorder) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(prices, snapshots, strategyconfig.Default(), metrics, logger.NewNop())
	require.NoError(t, err)
	return o
}

func TestAnalyze_Hybrid(t *testing.T) {
	prices := &fakePrices{bars: 260}
	metrics := newFakeMetrics()
	sink := &fakeSink{}
	o := newTestOrchestrator(t, prices, &fakeSnapshots{snapshot: fullSnapshot()}, metrics).WithReportSink(sink)

	report, err := o.Analyze(context.Background(), AnalyzeRequest{Symbol: "thyao.is", WithMacro: true})
	require.NoError(t, err)

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err)
	assert.Equal(t, "THYAO", report.Symbol)
	assert.Equal(t, o.ConfigHash(), report.ConfigHash)
	assert.Empty(t, report.Suggestions)
	assert.Equal(t, []string{"1y"}, prices.periods)

	require.NotNil(t, report.Technical)
	assert.Len(t, report.Technical.Indicators, 5)
	assert.GreaterOrEqual(t, report.TechnicalScore, 0.0)
	assert.LessOrEqual(t, report.TechnicalScore, 100.0)

	require.NotNil(t, report.Macro)
	assert.Equal(t, contracts.SectorAirline, report.Macro.Sector.Sector)

	require.NotNil(t, report.Hybrid)
	assert.Equal(t, contracts.FusionWeights{Technical: 70, Macro: 30}, report.Hybrid.Weights)
	assert.NotEmpty(t, report.Hybrid.Recommendation)
	assert.InDelta(t, report.TechnicalScore*0.7+report.Macro.CombinedNormalized*0.3, report.Hybrid.HybridScore, 0.1)

	assert.Equal(t, []string{"ok"}, metrics.outcomes)
	assert.Equal(t, report.Hybrid.HybridScore, metrics.hybrid["THYAO"])
	assert.Equal(t, 1, metrics.ops["fetch_series"])
	assert.Equal(t, 1, metrics.ops["analyze"])

	require.Len(t, sink.reports, 1)
	assert.Same(t, report, sink.reports[0])
}

func TestAnalyze_TechnicalOnly(t *testing.T) {
	prices := &fakePrices{bars: 260}
	snapshots := &fakeSnapshots{err: errors.New("must not be called")}
	o := newTestOrchestrator(t, prices, snapshots, nil)

	report, err := o.Analyze(context.Background(), AnalyzeRequest{Symbol: "GARAN", Period: "2y"})
	require.NoError(t, err)

	assert.Nil(t, report.Macro)
	assert.Nil(t, report.Hybrid)
	assert.Equal(t, []string{"2y"}, prices.periods)
}

func TestAnalyze_CustomWeights(t *testing.T) {
	o := newTestOrchestrator(t, &fakePrices{bars: 260}, &fakeSnapshots{snapshot: fullSnapshot()}, nil)

	report, err := o.Analyze(context.Background(), AnalyzeRequest{
		Symbol:    "AKBNK",
		Weights:   &contracts.FusionWeights{Technical: 1, Macro: 1},
		WithMacro: true,
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.FusionWeights{Technical: 50, Macro: 50}, report.Hybrid.Weights)
	assert.Equal(t, contracts.SectorBank, report.Macro.Sector.Sector)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name      string
		prices    *fakePrices
		snapshots contracts.SnapshotStore
		req       AnalyzeRequest
		check     func(error) bool
		outcome   string
		fetches   int
	}{
		{
			name:    "empty symbol",
			prices:  &fakePrices{bars: 260},
			req:     AnalyzeRequest{Symbol: "  "},
			check:   contracts.IsInputError,
			outcome: "input_error",
		},
		{
			name:    "empty series",
			prices:  &fakePrices{bars: 0},
			req:     AnalyzeRequest{Symbol: "THYAO"},
			check:   contracts.IsInputError,
			outcome: "input_error",
			fetches: 1,
		},
		{
			name:    "bad period",
			prices:  &fakePrices{err: contracts.NewInputError("prices.fetch", "unsupported period")},
			req:     AnalyzeRequest{Symbol: "THYAO", Period: "7w"},
			check:   contracts.IsInputError,
			outcome: "input_error",
			fetches: 1,
		},
		{
			name:      "missing snapshot",
			prices:    &fakePrices{bars: 260},
			snapshots: &fakeSnapshots{err: contracts.NewConfigError("macro.snapshot", "macro data file not found")},
			req:       AnalyzeRequest{Symbol: "THYAO", WithMacro: true},
			check:     contracts.IsConfigError,
			outcome:   "config_error",
			fetches:   1,
		},
		{
			name:      "negative weight",
			prices:    &fakePrices{bars: 260},
			snapshots: &fakeSnapshots{snapshot: fullSnapshot()},
			req:       AnalyzeRequest{Symbol: "THYAO", WithMacro: true, Weights: &contracts.FusionWeights{Technical: -1, Macro: 1}},
			check:     contracts.IsConfigError,
			outcome:   "config_error",
		},
		{
			name:    "macro without store",
			prices:  &fakePrices{bars: 260},
			req:     AnalyzeRequest{Symbol: "THYAO", WithMacro: true},
			check:   contracts.IsConfigError,
			outcome: "config_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := newFakeMetrics()
			o := newTestOrchestrator(t, tt.prices, tt.snapshots, metrics)

			report, err := o.Analyze(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, tt.check(err), "unexpected error class: %v", err)
			assert.Equal(t, []string{tt.outcome}, metrics.outcomes)
			assert.Equal(t, tt.fetches, tt.prices.calls)
		})
	}
}

func TestAnalyze_Warnings(t *testing.T) {
	o := newTestOrchestrator(t, &fakePrices{bars: 60}, nil, nil)

	report, err := o.Analyze(context.Background(), AnalyzeRequest{Symbol: "THYA"})
	require.NoError(t, err)

	assert.Contains(t, report.Warnings, "THYA BIST100 listesinde bulunamadi")
	assert.Contains(t, report.Warnings, "MA200 icin yetersiz veri (60/200 bar)")
	assert.Equal(t, []string{"THYAO"}, report.Suggestions)
}

func TestAnalyze_SinkFailureIsNotFatal(t *testing.T) {
	sink := &fakeSink{err: errors.New("database is down")}
	o := newTestOrchestrator(t, &fakePrices{bars: 260}, nil, nil).WithReportSink(sink)

	_, err := o.Analyze(context.Background(), AnalyzeRequest{Symbol: "SISE"})
	require.NoError(t, err)
	assert.Len(t, sink.reports, 1)
}

func TestAnalyze_Concurrent(t *testing.T) {
	o := newTestOrchestrator(t, &fakePrices{bars: 260}, &fakeSnapshots{snapshot: fullSnapshot()}, newFakeMetrics())

	symbols := []string{"THYAO", "GARAN", "ASELS", "BIMAS", "EREGL", "TUPRS"}
	var wg sync.WaitGroup
	errs := make([]error, len(symbols))
	for i, s := range symbols {
		wg.Add(1)
		go func(i int, s string) {
			defer wg.Done()
			_, errs[i] = o.Analyze(context.Background(), AnalyzeRequest{Symbol: s, WithMacro: true})
		}(i, s)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, symbols[i])
	}
}

func TestMacroView(t *testing.T) {
	o := newTestOrchestrator(t, &fakePrices{}, &fakeSnapshots{snapshot: fullSnapshot()}, nil)

	general, err := o.MacroView(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, contracts.SectorNone, general.Sector.Sector)
	assert.Len(t, general.General.Components, 5)
	assert.InDelta(t, (general.Combined+10)*5, general.CombinedNormalized, 1e-9)

	airline, err := o.MacroView(context.Background(), "PGSUS")
	require.NoError(t, err)
	assert.Equal(t, contracts.SectorAirline, airline.Sector.Sector)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{contracts.NewInputError("x", "y"), "input_error"},
		{contracts.NewConfigError("x", "y"), "config_error"},
		{contracts.NewDataQualityError("x", "y"), "data_quality_error"},
		{context.Canceled, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}
