package s0_data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/external/yahoo"
	"github.com/bistsignal/backend/internal/s3_macro"
	"github.com/bistsignal/backend/pkg/config"
	"github.com/bistsignal/backend/pkg/logger"
	"github.com/bistsignal/backend/pkg/redis"
)

// ChartFetcher downloads daily bars for a provider ticker
type ChartFetcher interface {
	FetchChart(ctx context.Context, ticker string, rng yahoo.Range) (*yahoo.Chart, error)
}

// SeriesStore persists daily series; *PriceRepository satisfies it
type SeriesStore interface {
	LoadSeries(ctx context.Context, symbol string, from time.Time) (*contracts.PriceSeries, error)
	SaveSeries(ctx context.Context, series *contracts.PriceSeries) error
}

// lookback is the calendar span of each range, used against the store
var lookback = map[yahoo.Range]time.Duration{
	yahoo.Range5d:  5 * 24 * time.Hour,
	yahoo.Range1mo: 30 * 24 * time.Hour,
	yahoo.Range3mo: 91 * 24 * time.Hour,
	yahoo.Range6mo: 182 * 24 * time.Hour,
	yahoo.Range1y:  365 * 24 * time.Hour,
	yahoo.Range2y:  730 * 24 * time.Hour,
	yahoo.Range5y:  1826 * 24 * time.Hour,
}

// PriceService implements contracts.PriceSource: cache, then store, then provider
// ⭐ SSOT: price retries happen here; an exhausted fetch yields an empty series
type PriceService struct {
	fetcher    ChartFetcher
	store      SeriesStore
	cache      Cache
	retryCount int
	retryDelay time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewPriceService creates a price service. store and cache may be nil.
func NewPriceService(fetcher ChartFetcher, store SeriesStore, cache Cache, cfg config.FetchConfig, log *logger.Logger) *PriceService {
	retries := cfg.RetryCount
	if retries < 1 {
		retries = 1
	}
	return &PriceService{
		fetcher:    fetcher,
		store:      store,
		cache:      cache,
		retryCount: retries,
		retryDelay: cfg.RetryDelay,
		logger:     log.Module("price_service"),
		now:        time.Now,
	}
}

// FetchSeries returns the daily series of symbol over period
func (s *PriceService) FetchSeries(ctx context.Context, symbol string, period string) (*contracts.PriceSeries, error) {
	rng, err := yahoo.ParseRange(period)
	if err != nil {
		return nil, contracts.NewInputError("prices.fetch", "%v", err)
	}

	symbol = s3_macro.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, contracts.NewInputError("prices.fetch", "empty symbol")
	}

	log := s.logger.WithFields(map[string]interface{}{"symbol": symbol, "period": period})
	cacheKey := redis.PriceSeriesKey(symbol, string(rng))

	// 1. Cache
	if s.cache != nil {
		var cached contracts.PriceSeries
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			log.WithError(err).Warn("Price cache read failed")
		} else if found && !cached.IsEmpty() {
			log.Debug("Price series served from cache")
			return &cached, nil
		}
	}

	// 2. Store
	if s.store != nil {
		if series := s.fromStore(ctx, symbol, rng, log); series != nil {
			s.cacheSeries(ctx, cacheKey, series, log)
			return series, nil
		}
	}

	// 3. Provider
	series, err := s.fromProvider(ctx, symbol, rng, log)
	if err != nil {
		return nil, err
	}
	if series.IsEmpty() {
		return series, nil
	}

	if s.store != nil {
		if err := s.store.SaveSeries(ctx, series); err != nil {
			log.WithError(err).Warn("Failed to persist price series")
		}
	}
	s.cacheSeries(ctx, cacheKey, series, log)

	return series, nil
}

// fromStore returns the stored series when it covers rng and is current
func (s *PriceService) fromStore(ctx context.Context, symbol string, rng yahoo.Range, log *logger.Logger) *contracts.PriceSeries {
	span, ok := lookback[rng]
	if !ok {
		return nil
	}

	now := s.now()
	from := now.Add(-span)
	series, err := s.store.LoadSeries(ctx, symbol, from)
	if err != nil {
		log.WithError(err).Warn("Price store read failed")
		return nil
	}
	if series.IsEmpty() || series.Validate() != nil {
		return nil
	}

	// must start within a week of the requested window and include the last session
	first := series.Points[0].Date
	last := series.Points[len(series.Points)-1].Date
	if first.After(from.Add(7*24*time.Hour)) || last.Before(LastSession(now)) {
		return nil
	}

	log.WithField("bars", series.Len()).Debug("Price series served from store")
	return series
}

// fromProvider fetches with a fixed delay between attempts
func (s *PriceService) fromProvider(ctx context.Context, symbol string, rng yahoo.Range, log *logger.Logger) (*contracts.PriceSeries, error) {
	ticker := yahoo.EquityTicker(symbol)

	var lastErr error
	for attempt := 1; attempt <= s.retryCount; attempt++ {
		chart, err := s.fetcher.FetchChart(ctx, ticker, rng)
		if err == nil {
			series := SeriesFromChart(symbol, chart)
			if err := series.Validate(); err != nil {
				return nil, contracts.NewDataQualityError("prices.fetch", "provider returned an invalid series for %s: %v", symbol, err)
			}
			log.WithFields(map[string]interface{}{
				"bars":    series.Len(),
				"attempt": attempt,
			}).Debug("Price series fetched")
			return series, nil
		}

		// unknown symbol or no data: retrying will not help
		if errors.Is(err, yahoo.ErrNoData) {
			log.WithError(err).Warn("No price data for symbol")
			return &contracts.PriceSeries{Symbol: symbol}, nil
		}

		lastErr = err
		log.WithError(err).WithFields(map[string]interface{}{
			"attempt": attempt,
			"of":      s.retryCount,
		}).Warn("Price fetch failed")

		if attempt == s.retryCount {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	log.WithError(lastErr).Error(fmt.Sprintf("Price fetch gave up after %d attempts", s.retryCount))
	return &contracts.PriceSeries{Symbol: symbol}, nil
}

func (s *PriceService) cacheSeries(ctx context.Context, key string, series *contracts.PriceSeries, log *logger.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, series, redis.SeriesTTL(s.now())); err != nil {
		log.WithError(err).Warn("Price cache write failed")
	}
}

// FetchResult is the outcome of one symbol in FetchMany
type FetchResult struct {
	Symbol string
	Bars   int
	Error  error
}

// FetchMany loads several symbols with a bounded number of workers
func (s *PriceService) FetchMany(ctx context.Context, symbols []string, period string, workers int) []FetchResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]FetchResult, len(symbols))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				series, err := s.FetchSeries(ctx, symbols[i], period)
				results[i] = FetchResult{Symbol: symbols[i], Error: err}
				if err == nil {
					results[i].Bars = series.Len()
					if series.IsEmpty() {
						results[i].Error = contracts.NewInputError("prices.fetch", "no data for %s", symbols[i])
					}
				}
			}
		}()
	}

	for i := range symbols {
		select {
		case <-ctx.Done():
			results[i] = FetchResult{Symbol: symbols[i], Error: ctx.Err()}
			continue
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// SeriesFromChart converts provider bars into a price series
func SeriesFromChart(symbol string, chart *yahoo.Chart) *contracts.PriceSeries {
	series := &contracts.PriceSeries{Symbol: symbol}
	if chart == nil {
		return series
	}
	series.Points = make([]contracts.PricePoint, len(chart.Bars))
	for i, b := range chart.Bars {
		series.Points[i] = contracts.PricePoint{
			Date:   b.Date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	return series
}

// LastSession returns the date of the most recent completed weekday before now
func LastSession(now time.Time) time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
