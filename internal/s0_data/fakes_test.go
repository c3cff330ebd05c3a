package s0_data

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/external/yahoo"
)

var errProvider = errors.New("connection reset by peer")

// fakeFetcher answers per ticker; failures[ticker] errors are consumed first
type fakeFetcher struct {
	mu       sync.Mutex
	charts   map[string]*yahoo.Chart
	failures map[string][]error
	calls    map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		charts:   make(map[string]*yahoo.Chart),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

func (f *fakeFetcher) FetchChart(ctx context.Context, ticker string, rng yahoo.Range) (*yahoo.Chart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[ticker]++
	if errs := f.failures[ticker]; len(errs) > 0 {
		f.failures[ticker] = errs[1:]
		return nil, errs[0]
	}
	chart, ok := f.charts[ticker]
	if !ok {
		return nil, errProvider
	}
	return chart, nil
}

func (f *fakeFetcher) callsFor(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ticker]
}

// linearChart has n daily bars ending on last, closing base, base+1, ...
func linearChart(ticker string, base float64, n int, last time.Time) *yahoo.Chart {
	chart := &yahoo.Chart{Ticker: ticker}
	for i := 0; i < n; i++ {
		c := base + float64(i)
		chart.Bars = append(chart.Bars, yahoo.Bar{
			Date:   last.AddDate(0, 0, i-n+1),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + int64(i),
		})
	}
	return chart
}

type fakeStore struct {
	series *contracts.PriceSeries
	saved  []*contracts.PriceSeries
	err    error
}

func (s *fakeStore) LoadSeries(ctx context.Context, symbol string, from time.Time) (*contracts.PriceSeries, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := &contracts.PriceSeries{Symbol: symbol}
	if s.series == nil {
		return out, nil
	}
	for _, p := range s.series.Points {
		if !p.Date.Before(from) {
			out.Points = append(out.Points, p)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveSeries(ctx context.Context, series *contracts.PriceSeries) error {
	s.saved = append(s.saved, series)
	return nil
}

// memCache round-trips through JSON like the Redis cache does
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.sets++
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}
