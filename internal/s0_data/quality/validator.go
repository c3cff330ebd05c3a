// Package quality checks a price series before it reaches the indicators.
package quality

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bistsignal/backend/internal/contracts"
)

// Config holds quality thresholds
type Config struct {
	MinBars           int            `yaml:"min_bars"`            // hard floor for any analysis
	MaxGapDays        int            `yaml:"max_gap_days"`        // calendar days between bars
	MinVolumeCoverage float64        `yaml:"min_volume_coverage"` // share of bars with volume
	Warmup            map[string]int `yaml:"warmup"`              // indicator -> bars it needs
}

// DefaultConfig mirrors the default indicator periods
func DefaultConfig() Config {
	return Config{
		MinBars:           2,
		MaxGapDays:        10,
		MinVolumeCoverage: 0.9,
		Warmup: map[string]int{
			"RSI":       15,
			"MACD":      35,
			"BOLLINGER": 20,
			"MA50":      50,
			"MA200":     200,
			"VOLUME":    21,
		},
	}
}

// Report is the outcome of a validation
type Report struct {
	Symbol    string             `json:"symbol"`
	Bars      int                `json:"bars"`
	FirstDate time.Time          `json:"first_date"`
	LastDate  time.Time          `json:"last_date"`
	Valid     bool               `json:"valid"`
	Errors    []string           `json:"errors,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`
	Coverage  map[string]float64 `json:"coverage"`
	Score     float64            `json:"score"` // 0 ~ 1
}

// SeriesValidator validates price series
// ⭐ SSOT: S0 → S1 quality check
type SeriesValidator struct {
	config Config
}

// NewSeriesValidator creates a new SeriesValidator instance
func NewSeriesValidator(config Config) *SeriesValidator {
	return &SeriesValidator{config: config}
}

// Check validates series. Structural problems are errors; short history,
// gaps and missing volume are warnings.
func (v *SeriesValidator) Check(series *contracts.PriceSeries) *Report {
	report := &Report{
		Coverage: make(map[string]float64),
	}
	if series != nil {
		report.Symbol = series.Symbol
	}

	if err := series.Validate(); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	points := series.Points
	report.Bars = len(points)
	report.FirstDate = points[0].Date
	report.LastDate = points[len(points)-1].Date

	if report.Bars < v.config.MinBars {
		report.Errors = append(report.Errors, fmt.Sprintf("en az %d bar gerekli, %d var", v.config.MinBars, report.Bars))
	}

	// 1. Prices
	positive := 0
	for _, p := range points {
		if p.Close > 0 && p.High >= p.Low {
			positive++
		}
	}
	report.Coverage["price"] = ratio(positive, len(points))
	if positive < len(points) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d bar sifir fiyat veya ters high/low iceriyor", len(points)-positive))
	}

	// 2. Volume
	withVolume := 0
	for _, p := range points {
		if p.Volume > 0 {
			withVolume++
		}
	}
	report.Coverage["volume"] = ratio(withVolume, len(points))
	if report.Coverage["volume"] < v.config.MinVolumeCoverage {
		report.Warnings = append(report.Warnings, fmt.Sprintf("hacim verisi eksik (%%%.0f)", report.Coverage["volume"]*100))
	}

	// 3. Gaps
	gaps := 0
	for i := 1; i < len(points); i++ {
		days := int(points[i].Date.Sub(points[i-1].Date).Hours() / 24)
		if v.config.MaxGapDays > 0 && days > v.config.MaxGapDays {
			gaps++
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s ile %s arasinda %d gunluk bosluk",
				points[i-1].Date.Format("2006-01-02"), points[i].Date.Format("2006-01-02"), days))
		}
	}
	report.Coverage["continuity"] = 1 - ratio(gaps, max(len(points)-1, 1))

	// 4. Warm-up per indicator
	names := make([]string, 0, len(v.config.Warmup))
	for name := range v.config.Warmup {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := 0
	for _, name := range names {
		need := v.config.Warmup[name]
		if report.Bars >= need {
			ready++
			continue
		}
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s icin yetersiz veri (%d/%d bar)", name, report.Bars, need))
	}
	report.Coverage["warmup"] = ratio(ready, len(names))

	report.Valid = len(report.Errors) == 0
	report.Score = calculateScore(report.Coverage)
	return report
}

// calculateScore calculates overall quality score using weighted average
func calculateScore(coverage map[string]float64) float64 {
	// weights sum to 1.0
	weights := map[string]float64{
		"price":      0.35,
		"volume":     0.25,
		"continuity": 0.15,
		"warmup":     0.25,
	}

	score := 0.0
	for key, weight := range weights {
		if cov, exists := coverage[key]; exists {
			score += cov * weight
		}
	}

	return math.Round(score*10000) / 10000
}

func ratio(n, total int) float64 {
	if total <= 0 {
		return 1
	}
	return float64(n) / float64(total)
}
