package strategyconfig

import (
	"fmt"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/s0_data/quality"
	ind "github.com/bistsignal/backend/internal/s1_indicators"
	"github.com/bistsignal/backend/internal/s2_signals"
)

// Config is the analysis configuration (config/analysis.yaml)
// ⭐ SSOT: indicator windows, fusion weights and quality thresholds live here
type Config struct {
	Meta       Meta          `yaml:"meta" json:"meta"`
	Indicators Indicators    `yaml:"indicators" json:"indicators"`
	Hybrid     HybridWeights `yaml:"hybrid" json:"hybrid"`
	Macro      MacroBlend    `yaml:"macro" json:"macro"`
	Quality    Quality       `yaml:"quality" json:"quality"`
}

// Meta identifies the configuration
type Meta struct {
	ConfigID      string `yaml:"config_id" json:"config_id" default:"bist_hybrid_v1" validate:"required"`
	Version       string `yaml:"version" json:"version" default:"1"`
	DefaultPeriod string `yaml:"default_period" json:"default_period" default:"1y" validate:"oneof=5d 1mo 3mo 6mo 1y 2y 5y max"`
}

// Indicators holds the S1 windows
type Indicators struct {
	RSIPeriod      int            `yaml:"rsi_period" json:"rsi_period" default:"14" validate:"gte=2,lte=100"`
	MACD           MACD           `yaml:"macd" json:"macd"`
	Bollinger      Bollinger      `yaml:"bollinger" json:"bollinger"`
	MovingAverages MovingAverages `yaml:"moving_averages" json:"moving_averages"`
	Volume         Volume         `yaml:"volume" json:"volume"`
}

type MACD struct {
	Fast   int `yaml:"fast" json:"fast" default:"12" validate:"gte=1"`
	Slow   int `yaml:"slow" json:"slow" default:"26" validate:"gte=2"`
	Signal int `yaml:"signal" json:"signal" default:"9" validate:"gte=1"`
}

type Bollinger struct {
	Period int     `yaml:"period" json:"period" default:"20" validate:"gte=2"`
	K      float64 `yaml:"k" json:"k" default:"2.0" validate:"gt=0,lte=5"`
}

type MovingAverages struct {
	Periods       []int  `yaml:"periods" json:"periods" default:"[20,50,200]" validate:"min=1,dive,gte=2"`
	Type          string `yaml:"type" json:"type" default:"SMA" validate:"oneof=SMA EMA"`
	CrossFast     int    `yaml:"cross_fast" json:"cross_fast" default:"50" validate:"gte=2"`
	CrossSlow     int    `yaml:"cross_slow" json:"cross_slow" default:"200" validate:"gte=2"`
	CrossLookback int    `yaml:"cross_lookback" json:"cross_lookback" default:"10" validate:"gte=1"`
}

type Volume struct {
	AvgPeriod int     `yaml:"avg_period" json:"avg_period" default:"20" validate:"gte=2"`
	Threshold float64 `yaml:"threshold" json:"threshold" default:"1.5" validate:"gt=1"`
	TrendSpan int     `yaml:"trend_span" json:"trend_span" default:"10" validate:"gte=2"`
}

// HybridWeights are the technical/macro fusion weights; both must be positive and are normalized before use
type HybridWeights struct {
	Technical float64 `yaml:"technical_weight" json:"technical_weight" default:"0.7" validate:"gt=0,lte=1"`
	Macro     float64 `yaml:"macro_weight" json:"macro_weight" default:"0.3" validate:"gt=0,lte=1"`
}

// MacroBlend mixes the general macro score with the sector score
type MacroBlend struct {
	GeneralWeight float64 `yaml:"general_weight" json:"general_weight" default:"0.7" validate:"gte=0,lte=1"`
	SectorWeight  float64 `yaml:"sector_weight" json:"sector_weight" default:"0.3" validate:"gte=0,lte=1"`
}

// Quality holds the series checks run before the indicators
type Quality struct {
	MinBars           int     `yaml:"min_bars" json:"min_bars" default:"2" validate:"gte=2"`
	MaxGapDays        int     `yaml:"max_gap_days" json:"max_gap_days" default:"10" validate:"gte=1"`
	MinVolumeCoverage float64 `yaml:"min_volume_coverage" json:"min_volume_coverage" default:"0.9" validate:"gte=0,lte=1"`
}

// SignalParams converts the indicator section into analyzer parameters
func (c *Config) SignalParams() s2_signals.Params {
	ma := c.Indicators.MovingAverages
	return s2_signals.Params{
		RSIPeriod:       c.Indicators.RSIPeriod,
		MACDFast:        c.Indicators.MACD.Fast,
		MACDSlow:        c.Indicators.MACD.Slow,
		MACDSignal:      c.Indicators.MACD.Signal,
		BollingerPeriod: c.Indicators.Bollinger.Period,
		BollingerK:      c.Indicators.Bollinger.K,
		MAPeriods:       append([]int(nil), ma.Periods...),
		MAType:          ind.MAType(ma.Type),
		CrossFast:       ma.CrossFast,
		CrossSlow:       ma.CrossSlow,
		CrossLookback:   ma.CrossLookback,
		VolumeAvgPeriod: c.Indicators.Volume.AvgPeriod,
		VolumeThreshold: c.Indicators.Volume.Threshold,
		VolumeTrendSpan: c.Indicators.Volume.TrendSpan,
	}
}

// FusionWeights returns the configured hybrid weights (not normalized)
func (c *Config) FusionWeights() contracts.FusionWeights {
	return contracts.FusionWeights{
		Technical: c.Hybrid.Technical,
		Macro:     c.Hybrid.Macro,
	}
}

// QualityConfig builds the validator thresholds; warm-up lengths follow the indicator windows
func (c *Config) QualityConfig() quality.Config {
	warmup := map[string]int{
		"RSI":       c.Indicators.RSIPeriod + 1,
		"MACD":      c.Indicators.MACD.Slow + c.Indicators.MACD.Signal,
		"BOLLINGER": c.Indicators.Bollinger.Period,
		"VOLUME":    c.Indicators.Volume.AvgPeriod + 1,
	}
	for _, p := range c.Indicators.MovingAverages.Periods {
		warmup[fmt.Sprintf("MA%d", p)] = p
	}

	return quality.Config{
		MinBars:           c.Quality.MinBars,
		MaxGapDays:        c.Quality.MaxGapDays,
		MinVolumeCoverage: c.Quality.MinVolumeCoverage,
		Warmup:            warmup,
	}
}

// LongestWindow is the largest number of bars any configured indicator needs
func (c *Config) LongestWindow() int {
	longest := 0
	for _, n := range c.QualityConfig().Warmup {
		if n > longest {
			longest = n
		}
	}
	return longest
}
