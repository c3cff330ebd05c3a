package s0_data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/external/yahoo"
	"github.com/bistsignal/backend/pkg/logger"
)

var collectNow = time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

func TestQuoteFromChart(t *testing.T) {
	lastBar := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)

	t.Run("thirty day change", func(t *testing.T) {
		// bar 25 of 60 is the first one inside the 35 day window
		chart := linearChart("XU100.IS", 100, 60, lastBar)

		quote := QuoteFromChart(chart, collectNow)
		require.NotNil(t, quote.Current)
		require.NotNil(t, quote.Change30D)
		assert.Equal(t, 159.0, *quote.Current)
		assert.Equal(t, 27.2, *quote.Change30D)
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		chart := &yahoo.Chart{Bars: []yahoo.Bar{
			{Date: lastBar.AddDate(0, 0, -10), Close: 3},
			{Date: lastBar, Close: 36.5234},
		}}

		quote := QuoteFromChart(chart, collectNow)
		assert.Equal(t, 36.52, *quote.Current)
		assert.Equal(t, 1117.45, *quote.Change30D)
	})

	t.Run("single bar has no change", func(t *testing.T) {
		chart := &yahoo.Chart{Bars: []yahoo.Bar{{Date: lastBar, Close: 2950}}}

		quote := QuoteFromChart(chart, collectNow)
		assert.Equal(t, 2950.0, *quote.Current)
		assert.Nil(t, quote.Change30D)
	})

	t.Run("empty chart", func(t *testing.T) {
		quote := QuoteFromChart(&yahoo.Chart{}, collectNow)
		assert.Nil(t, quote.Current)
		assert.Nil(t, quote.Change30D)
	})
}

func TestIndexTrend(t *testing.T) {
	rising := make([]float64, 60)
	falling := make([]float64, 60)
	flat := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 200 - float64(i)
		flat[i] = 100
	}

	tests := []struct {
		name   string
		closes []float64
		want   contracts.IndexTrend
	}{
		{"rising", rising, contracts.TrendUp},
		{"falling", falling, contracts.TrendDown},
		{"flat", flat, contracts.TrendFlat},
		{"too short", rising[:49], contracts.TrendFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IndexTrend(tt.closes))
		})
	}
}

func TestMacroCollector_Refresh(t *testing.T) {
	lastBar := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)

	fetcher := newFakeFetcher()
	fetcher.charts[yahoo.TickerUSDTRY] = linearChart(yahoo.TickerUSDTRY, 30, 60, lastBar)
	fetcher.charts[yahoo.TickerEURTRY] = linearChart(yahoo.TickerEURTRY, 35, 60, lastBar)
	fetcher.charts[yahoo.TickerBIST100] = linearChart(yahoo.TickerBIST100, 100, 60, lastBar)
	fetcher.charts[yahoo.TickerGold] = linearChart(yahoo.TickerGold, 2000, 60, lastBar)
	// oil is left out and must stay nil

	store := newTestSnapshotStore(t, nil)
	_, err := store.UpdateTCMBRate(context.Background(), 50)
	require.NoError(t, err)
	_, err = store.UpdateTCMBRate(context.Background(), 47.5)
	require.NoError(t, err)

	collector := NewMacroCollector(fetcher, store, logger.NewNop())
	collector.now = func() time.Time { return collectNow }

	snapshot, err := collector.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-03-12 00:00:00", snapshot.LastUpdate)
	assert.Nil(t, snapshot.Oil)
	require.NotNil(t, snapshot.USDTRY)
	assert.Equal(t, 89.0, *snapshot.USDTRY.Current)
	require.NotNil(t, snapshot.EURTRY)
	require.NotNil(t, snapshot.BIST100)
	assert.Equal(t, contracts.TrendUp, snapshot.BIST100.Trend)
	assert.Equal(t, 27.2, *snapshot.BIST100.Change30D)

	// rates survive the refresh
	assert.Equal(t, 47.5, *snapshot.TCMBRate)
	assert.Equal(t, 50.0, *snapshot.PreviousTCMBRate)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot, loaded)

	assert.Equal(t, 1, fetcher.callsFor(yahoo.TickerOil))
}

func TestMacroCollector_AllFail(t *testing.T) {
	collector := NewMacroCollector(newFakeFetcher(), nil, logger.NewNop())

	_, err := collector.Collect(context.Background())
	assert.True(t, contracts.IsDataQualityError(err))
}
