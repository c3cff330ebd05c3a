package s2_signals

import (
	"context"
	"fmt"

	"github.com/bistsignal/backend/internal/contracts"
	ind "github.com/bistsignal/backend/internal/s1_indicators"
	"github.com/bistsignal/backend/pkg/logger"
)

// Params are the indicator windows used by TechnicalAnalyzer
type Params struct {
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerK      float64
	MAPeriods       []int
	MAType          ind.MAType
	CrossFast       int
	CrossSlow       int
	CrossLookback   int
	VolumeAvgPeriod int
	VolumeThreshold float64
	VolumeTrendSpan int
}

// DefaultParams returns the standard indicator windows
func DefaultParams() Params {
	return Params{
		RSIPeriod:       ind.DefaultRSIPeriod,
		MACDFast:        ind.DefaultMACDFast,
		MACDSlow:        ind.DefaultMACDSlow,
		MACDSignal:      ind.DefaultMACDSignal,
		BollingerPeriod: ind.DefaultBollingerPeriod,
		BollingerK:      ind.DefaultBollingerK,
		MAPeriods:       append([]int(nil), ind.DefaultMAPeriods...),
		MAType:          ind.MATypeSMA,
		CrossFast:       50,
		CrossSlow:       200,
		CrossLookback:   ind.DefaultCrossLookback,
		VolumeAvgPeriod: ind.DefaultVolumeAvgPeriod,
		VolumeThreshold: ind.DefaultVolumeThreshold,
		VolumeTrendSpan: ind.DefaultVolumeTrendSpan,
	}
}

// TechnicalAnalyzer runs every indicator over a price series
// ⭐ SSOT: one failing indicator never aborts the others
type TechnicalAnalyzer struct {
	params  Params
	metrics contracts.MetricsRecorder
	logger  *logger.Logger
}

// NewTechnicalAnalyzer creates a new technical analyzer. metrics may be nil.
func NewTechnicalAnalyzer(params Params, metrics contracts.MetricsRecorder, log *logger.Logger) *TechnicalAnalyzer {
	return &TechnicalAnalyzer{
		params:  params,
		metrics: metrics,
		logger:  log,
	}
}

type indicatorFunc func(series *contracts.PriceSeries, closes []float64, price float64) (Interpretation, error)

// Analyze computes RSI, MACD, Bollinger, moving averages and volume for series.
// An empty or invalid series fails before any indicator runs.
func (a *TechnicalAnalyzer) Analyze(ctx context.Context, series *contracts.PriceSeries) (*contracts.TechnicalAnalysis, error) {
	if series.IsEmpty() {
		return nil, contracts.NewInputError("technical", "empty or absent price series")
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	last, _ := series.Last()
	closes := series.Closes()

	result := &contracts.TechnicalAnalysis{
		Symbol:       series.Symbol,
		CurrentPrice: last.Close,
		Date:         last.Date,
		Indicators:   make(map[string]contracts.IndicatorOutcome, 5),
		Signals:      make([]contracts.SignalRecord, 0, 5),
	}

	steps := []struct {
		name string
		fn   indicatorFunc
	}{
		{contracts.IndicatorRSI, a.rsi},
		{contracts.IndicatorMACD, a.macd},
		{contracts.IndicatorBollinger, a.bollinger},
		{contracts.IndicatorMovingAverages, a.movingAverages},
		{contracts.IndicatorVolume, a.volume},
	}

	for _, step := range steps {
		outcome := a.run(step.name, step.fn, series, closes, last.Close)
		result.Indicators[step.name] = outcome
		if outcome.OK {
			result.Signals = append(result.Signals, *outcome.Signal)
		}
	}

	a.logger.WithFields(map[string]interface{}{
		"symbol":  series.Symbol,
		"bars":    series.Len(),
		"signals": len(result.Signals),
		"failed":  result.FailedIndicators(),
	}).Debug("Technical analysis completed")

	return result, nil
}

// run executes one indicator and converts errors and panics into a failed outcome
func (a *TechnicalAnalyzer) run(name string, fn indicatorFunc, series *contracts.PriceSeries, closes []float64, price float64) (outcome contracts.IndicatorOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = a.failed(series.Symbol, name, fmt.Errorf("panic: %v", r))
		}
	}()

	interp, err := fn(series, closes, price)
	if err != nil {
		return a.failed(series.Symbol, name, err)
	}

	record := interp.Record
	record.Indicator = name
	return contracts.IndicatorOutcome{
		Name:   name,
		OK:     true,
		Signal: &record,
		Values: interp.Values,
		Detail: interp.Detail,
	}
}

func (a *TechnicalAnalyzer) failed(symbol, name string, err error) contracts.IndicatorOutcome {
	a.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"indicator": name,
	}).WithError(err).Warn("Indicator failed")

	if a.metrics != nil {
		a.metrics.RecordIndicatorFailure(name)
	}

	return contracts.IndicatorOutcome{
		Name:  name,
		OK:    false,
		Error: err.Error(),
	}
}

func (a *TechnicalAnalyzer) rsi(_ *contracts.PriceSeries, closes []float64, _ float64) (Interpretation, error) {
	values, err := ind.RSI(closes, a.params.RSIPeriod)
	if err != nil {
		return Interpretation{}, err
	}
	return InterpretRSI(ind.Last(values)), nil
}

func (a *TechnicalAnalyzer) macd(_ *contracts.PriceSeries, closes []float64, _ float64) (Interpretation, error) {
	res, err := ind.MACD(closes, a.params.MACDFast, a.params.MACDSlow, a.params.MACDSignal)
	if err != nil {
		return Interpretation{}, err
	}

	var prevMACD, prevSignal *float64
	if len(res.MACD) > 1 {
		pm, ps := ind.Prev(res.MACD), ind.Prev(res.Signal)
		prevMACD, prevSignal = &pm, &ps
	}
	return InterpretMACD(ind.Last(res.MACD), ind.Last(res.Signal), ind.Last(res.Histogram), prevMACD, prevSignal), nil
}

func (a *TechnicalAnalyzer) bollinger(_ *contracts.PriceSeries, closes []float64, price float64) (Interpretation, error) {
	res, err := ind.Bollinger(closes, a.params.BollingerPeriod, a.params.BollingerK)
	if err != nil {
		return Interpretation{}, err
	}
	return InterpretBollinger(price, ind.Last(res.Upper), ind.Last(res.Middle), ind.Last(res.Lower)), nil
}

func (a *TechnicalAnalyzer) movingAverages(_ *contracts.PriceSeries, closes []float64, price float64) (Interpretation, error) {
	mas, err := ind.MovingAverages(closes, a.params.MAPeriods, a.params.MAType)
	if err != nil {
		return Interpretation{}, err
	}

	latest := make(map[int]float64, len(mas))
	for p, series := range mas {
		latest[p] = ind.Last(series)
	}
	interp := InterpretMovingAverages(price, latest)

	fast, okFast := mas[a.params.CrossFast]
	slow, okSlow := mas[a.params.CrossSlow]
	if okFast && okSlow {
		cross := ind.DetectCross(fast, slow, a.params.CrossLookback)
		interp.Detail["cross_type"] = string(cross.Type)
		interp.Detail["cross_position"] = string(cross.Position)
		interp.Detail["cross_description"] = cross.Description
		if cross.Type != ind.CrossNone {
			interp.Values["cross_days_ago"] = float64(cross.DaysAgo)
		}
	}
	return interp, nil
}

func (a *TechnicalAnalyzer) volume(series *contracts.PriceSeries, _ []float64, _ float64) (Interpretation, error) {
	res, err := ind.AnalyzeVolume(series.Points, a.params.VolumeAvgPeriod, a.params.VolumeThreshold)
	if err != nil {
		return Interpretation{}, err
	}
	interp := InterpretVolume(res)
	interp.Detail["volume_trend"] = string(ind.VolumeTrend(series.Volumes(), a.params.VolumeTrendSpan))
	return interp, nil
}
