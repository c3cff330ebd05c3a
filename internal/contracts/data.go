package contracts

import (
	"math"
	"time"
)

// PricePoint is one daily OHLCV bar
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is the S0 → S1 price input for one symbol
// ⭐ SSOT: ascending, unique dates; never mutated after it is handed over
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of bars
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// IsEmpty reports whether the series is absent or has no bars
func (s *PriceSeries) IsEmpty() bool {
	return s.Len() == 0
}

// Closes returns a fresh slice of closing prices
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, s.Len())
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Volumes returns a fresh slice of volumes
func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, s.Len())
	for i, p := range s.Points {
		out[i] = p.Volume
	}
	return out
}

// Last returns the most recent bar
func (s *PriceSeries) Last() (PricePoint, bool) {
	if s.IsEmpty() {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Validate checks the ordering and value invariants of the series
func (s *PriceSeries) Validate() error {
	if s.IsEmpty() {
		return NewInputError("price_series", "empty or absent price series")
	}

	for i, p := range s.Points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close < 0 {
			return NewInputError("price_series", "invalid close %v at %s", p.Close, p.Date.Format("2006-01-02"))
		}
		if p.Volume < 0 {
			return NewInputError("price_series", "negative volume at %s", p.Date.Format("2006-01-02"))
		}
		if i > 0 && !p.Date.After(s.Points[i-1].Date) {
			return NewInputError("price_series", "dates must be ascending and unique (%s after %s)",
				p.Date.Format("2006-01-02"), s.Points[i-1].Date.Format("2006-01-02"))
		}
	}

	return nil
}
