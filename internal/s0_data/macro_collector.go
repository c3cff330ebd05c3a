package s0_data

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/external/yahoo"
	"github.com/bistsignal/backend/pkg/logger"
)

// trendBand is the MA20/MA50 distance that separates up/down from flat
const trendBand = 0.02

// changeWindow is the calendar window of change_30d, with a few days of slack
const changeWindow = 35 * 24 * time.Hour

// MacroCollector builds a macro snapshot from provider charts
type MacroCollector struct {
	fetcher ChartFetcher
	store   contracts.SnapshotStore
	logger  *logger.Logger
	now     func() time.Time
}

// NewMacroCollector creates a collector; store supplies the previous snapshot and receives the new one
func NewMacroCollector(fetcher ChartFetcher, store contracts.SnapshotStore, log *logger.Logger) *MacroCollector {
	return &MacroCollector{
		fetcher: fetcher,
		store:   store,
		logger:  log.Module("macro_collector"),
		now:     time.Now,
	}
}

type factorChart struct {
	key   string
	chart *yahoo.Chart
}

// Collect fetches every macro ticker concurrently. Failed factors stay nil;
// the TCMB rates are carried over from the stored snapshot.
func (c *MacroCollector) Collect(ctx context.Context) (*contracts.MacroSnapshot, error) {
	tickers := map[string]string{
		contracts.FactorUSDTRY:  yahoo.TickerUSDTRY,
		"eur_try":               yahoo.TickerEURTRY,
		contracts.FactorBIST100: yahoo.TickerBIST100,
		contracts.FactorOil:     yahoo.TickerOil,
		contracts.FactorGold:    yahoo.TickerGold,
	}

	results := make(chan factorChart, len(tickers))
	var wg sync.WaitGroup
	for key, ticker := range tickers {
		wg.Add(1)
		go func(key, ticker string) {
			defer wg.Done()
			chart, err := c.fetcher.FetchChart(ctx, ticker, yahoo.Range3mo)
			if err != nil {
				c.logger.WithError(err).WithFields(map[string]interface{}{
					"factor": key,
					"ticker": ticker,
				}).Warn("Macro factor fetch failed")
				return
			}
			results <- factorChart{key: key, chart: chart}
		}(key, ticker)
	}
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := c.now()
	snapshot := &contracts.MacroSnapshot{LastUpdate: now.Format(LastUpdateLayout)}
	fetched := 0
	for r := range results {
		fetched++
		quote := QuoteFromChart(r.chart, now)
		switch r.key {
		case contracts.FactorUSDTRY:
			snapshot.USDTRY = quote
		case "eur_try":
			snapshot.EURTRY = quote
		case contracts.FactorOil:
			snapshot.Oil = quote
		case contracts.FactorGold:
			snapshot.Gold = quote
		case contracts.FactorBIST100:
			snapshot.BIST100 = &contracts.IndexQuote{
				Current:   quote.Current,
				Change30D: quote.Change30D,
				Trend:     IndexTrend(r.chart.Closes()),
			}
		}
	}

	if fetched == 0 {
		return nil, contracts.NewDataQualityError("macro.collect", "no macro factor could be fetched")
	}

	if c.store != nil {
		if previous, err := c.store.Load(ctx); err == nil && previous != nil {
			snapshot.TCMBRate = previous.TCMBRate
			snapshot.PreviousTCMBRate = previous.PreviousTCMBRate
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"fetched": fetched,
		"of":      len(tickers),
	}).Info("Macro snapshot collected")
	return snapshot, nil
}

// Refresh collects a new snapshot and saves it
func (c *MacroCollector) Refresh(ctx context.Context) (*contracts.MacroSnapshot, error) {
	snapshot, err := c.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// QuoteFromChart takes the last close and its change over the last 30 days
func QuoteFromChart(chart *yahoo.Chart, now time.Time) *contracts.FactorQuote {
	quote := &contracts.FactorQuote{}
	if chart == nil || len(chart.Bars) == 0 {
		return quote
	}

	last := chart.Bars[len(chart.Bars)-1]
	quote.Current = contracts.Float(round2(last.Close))

	cutoff := now.Add(-changeWindow)
	var first *yahoo.Bar
	for i := range chart.Bars {
		if !chart.Bars[i].Date.Before(cutoff) {
			first = &chart.Bars[i]
			break
		}
	}
	if first != nil && first != &chart.Bars[len(chart.Bars)-1] && first.Close > 0 {
		quote.Change30D = contracts.Float(round2((last.Close - first.Close) / first.Close * 100))
	}
	return quote
}

// IndexTrend compares MA20 against MA50; fewer than 50 closes read as flat
func IndexTrend(closes []float64) contracts.IndexTrend {
	if len(closes) < 50 {
		return contracts.TrendFlat
	}
	ma20 := mean(closes[len(closes)-20:])
	ma50 := mean(closes[len(closes)-50:])

	switch {
	case ma20 > ma50*(1+trendBand):
		return contracts.TrendUp
	case ma20 < ma50*(1-trendBand):
		return contracts.TrendDown
	default:
		return contracts.TrendFlat
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
