package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/external/tcmb"
	"github.com/bistsignal/backend/internal/s0_data"
	"github.com/bistsignal/backend/pkg/logger"
)

type fakeRefresher struct {
	snapshot *contracts.MacroSnapshot
	err      error
}

func (f *fakeRefresher) Refresh(ctx context.Context) (*contracts.MacroSnapshot, error) {
	return f.snapshot, f.err
}

func TestMacroRefreshJob(t *testing.T) {
	job := NewMacroRefreshJob(&fakeRefresher{snapshot: &contracts.MacroSnapshot{
		LastUpdate: "2025-03-12 18:30:00",
		USDTRY:     &contracts.FactorQuote{Current: contracts.Float(36.52)},
	}}, logger.NewNop())

	assert.Equal(t, "macro_refresh", job.Name())
	assert.Equal(t, "0 30 18 * * 1-5", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))

	failing := NewMacroRefreshJob(&fakeRefresher{err: contracts.NewDataQualityError("macro.refresh", "every quote failed")}, logger.NewNop())
	err := failing.Run(context.Background())
	require.Error(t, err)
	assert.True(t, contracts.IsDataQualityError(err))
}

type fakeWarmer struct {
	symbols []string
	results func(symbols []string) []s0_data.FetchResult
}

func (f *fakeWarmer) FetchMany(ctx context.Context, symbols []string, period string, workers int) []s0_data.FetchResult {
	f.symbols = symbols
	return f.results(symbols)
}

func TestPriceWarmupJob(t *testing.T) {
	tests := []struct {
		name    string
		failing map[string]bool
		wantErr bool
	}{
		{"all loaded", nil, false},
		{"partial failure", map[string]bool{"THYAO": true}, false},
		{"everything failed", map[string]bool{"THYAO": true, "GARAN": true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warmer := &fakeWarmer{results: func(symbols []string) []s0_data.FetchResult {
				out := make([]s0_data.FetchResult, len(symbols))
				for i, sym := range symbols {
					out[i] = s0_data.FetchResult{Symbol: sym, Bars: 250}
					if tt.failing[sym] {
						out[i] = s0_data.FetchResult{Symbol: sym, Error: errors.New("timeout")}
					}
				}
				return out
			}}

			job := NewPriceWarmupJob(warmer, []string{"THYAO", "GARAN"}, "1y", 2, logger.NewNop())
			err := job.Run(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "THYAO: timeout")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPriceWarmupJob_DefaultsToPopular(t *testing.T) {
	warmer := &fakeWarmer{results: func(symbols []string) []s0_data.FetchResult {
		return make([]s0_data.FetchResult, len(symbols))
	}}

	job := NewPriceWarmupJob(warmer, nil, "1y", 0, logger.NewNop())
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, "price_warmup", job.Name())
	assert.Equal(t, s0_data.StockList(s0_data.ListPopular), warmer.symbols)
	assert.Equal(t, 4, job.workers)
}

type fakeRateSource struct {
	rate *tcmb.PolicyRate
	err  error
}

func (f *fakeRateSource) FetchPolicyRate(ctx context.Context) (*tcmb.PolicyRate, error) {
	return f.rate, f.err
}

type fakeRateStore struct {
	snapshot *contracts.MacroSnapshot
	loadErr  error
	updated  []float64
}

func (f *fakeRateStore) Load(ctx context.Context) (*contracts.MacroSnapshot, error) {
	return f.snapshot, f.loadErr
}

func (f *fakeRateStore) UpdateTCMBRate(ctx context.Context, rate float64) (*contracts.MacroSnapshot, error) {
	f.updated = append(f.updated, rate)
	return &contracts.MacroSnapshot{TCMBRate: contracts.Float(rate)}, nil
}

func published(rate float64) *tcmb.PolicyRate {
	return &tcmb.PolicyRate{Current: tcmb.RateEntry{
		EffectiveDate: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		Rate:          rate,
	}}
}

func TestTCMBRateSyncJob(t *testing.T) {
	tests := []struct {
		name    string
		current *float64
		fetched float64
		updated []float64
	}{
		{"rate changed", contracts.Float(45), 42.5, []float64{42.5}},
		{"rate unchanged", contracts.Float(42.5), 42.5, nil},
		{"no rate stored yet", nil, 42.5, []float64{42.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeRateStore{snapshot: &contracts.MacroSnapshot{TCMBRate: tt.current}}
			job := NewTCMBRateSyncJob(&fakeRateSource{rate: published(tt.fetched)}, store, logger.NewNop())

			require.NoError(t, job.Run(context.Background()))
			assert.Equal(t, tt.updated, store.updated)
		})
	}
}

func TestTCMBRateSyncJob_Errors(t *testing.T) {
	store := &fakeRateStore{snapshot: &contracts.MacroSnapshot{}}
	job := NewTCMBRateSyncJob(&fakeRateSource{err: tcmb.ErrRateNotFound}, store, logger.NewNop())

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, tcmb.ErrRateNotFound)
	assert.Empty(t, store.updated)

	store = &fakeRateStore{loadErr: contracts.NewConfigError("macro.snapshot", "macro data file not found")}
	job = NewTCMBRateSyncJob(&fakeRateSource{rate: published(42.5)}, store, logger.NewNop())

	err = job.Run(context.Background())
	assert.True(t, contracts.IsConfigError(err))
	assert.Empty(t, store.updated)
	assert.Equal(t, "tcmb_rate_sync", job.Name())
}

type countingCleaner struct{ calls int }

func (c *countingCleaner) CleanStale() int {
	c.calls++
	return 3
}

func TestCacheCleanupJob(t *testing.T) {
	cleaner := &countingCleaner{}
	job := NewCacheCleanupJob(cleaner, logger.NewNop())

	assert.Equal(t, "cache_cleanup", job.Name())
	assert.Equal(t, "0 */5 * * * *", job.Schedule())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, cleaner.calls)
}
