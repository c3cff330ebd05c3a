package yahoo

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Bar is one parsed daily bar
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Chart is the parsed result for a single ticker
type Chart struct {
	Ticker   string
	Currency string
	Bars     []Bar
}

// chartResponse mirrors the chart API payload; arrays carry nulls on holidays
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// parseChart decodes a chart payload into ascending, de-duplicated bars
func parseChart(body []byte) (*Chart, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid chart payload: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrNoData, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	res := resp.Chart.Result[0]
	chart := &Chart{Ticker: res.Meta.Symbol, Currency: res.Meta.Currency}
	if len(res.Indicators.Quote) == 0 || len(res.Timestamp) == 0 {
		return nil, ErrNoData
	}

	q := res.Indicators.Quote[0]
	zone := time.FixedZone("exchange", res.Meta.GMTOffset)

	byDate := make(map[time.Time]Bar, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		closePrice, ok := at(q.Close, i)
		if !ok {
			continue
		}

		local := time.Unix(ts, 0).In(zone)
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

		bar := Bar{Date: date, Close: closePrice}
		bar.Open = orDefault(q.Open, i, closePrice)
		bar.High = orDefault(q.High, i, closePrice)
		bar.Low = orDefault(q.Low, i, closePrice)
		if i < len(q.Volume) && q.Volume[i] != nil && *q.Volume[i] > 0 {
			bar.Volume = *q.Volume[i]
		}

		// later rows win; the live bar repeats the last session
		byDate[date] = bar
	}

	if len(byDate) == 0 {
		return nil, ErrNoData
	}

	chart.Bars = make([]Bar, 0, len(byDate))
	for _, bar := range byDate {
		chart.Bars = append(chart.Bars, bar)
	}
	sort.Slice(chart.Bars, func(i, j int) bool {
		return chart.Bars[i].Date.Before(chart.Bars[j].Date)
	})

	return chart, nil
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	v := *values[i]
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func orDefault(values []*float64, i int, fallback float64) float64 {
	if v, ok := at(values, i); ok {
		return v
	}
	return fallback
}

// Closes returns the closing prices of the chart
func (c *Chart) Closes() []float64 {
	out := make([]float64, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Close
	}
	return out
}
