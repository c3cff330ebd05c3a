package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/s0_data"
	"github.com/bistsignal/backend/internal/s0_data/quality"
	"github.com/bistsignal/backend/internal/s2_signals"
	"github.com/bistsignal/backend/internal/s3_macro"
	"github.com/bistsignal/backend/internal/s4_hybrid"
	"github.com/bistsignal/backend/internal/strategyconfig"
	"github.com/bistsignal/backend/pkg/logger"
)

// maxSuggestions caps the symbols proposed for an unknown ticker
const maxSuggestions = 5

// ReportSink receives every finished report; *s0_data.AnalysisRepository satisfies it
type ReportSink interface {
	SaveReport(ctx context.Context, report *contracts.AnalysisReport) error
}

// AnalyzeRequest describes one analysis
type AnalyzeRequest struct {
	Symbol    string
	Period    string                   // empty uses the configured default period
	Weights   *contracts.FusionWeights // nil uses the configured hybrid weights
	WithMacro bool
}

// Orchestrator runs the S0 → S4 pipeline for one symbol
// ⭐ SSOT: pipeline coordination happens here only. Dependencies are read-only,
// so concurrent Analyze calls are safe.
type Orchestrator struct {
	prices     contracts.PriceSource
	snapshots  contracts.SnapshotStore
	validator  *quality.SeriesValidator
	analyzer   *s2_signals.TechnicalAnalyzer
	macro      *s3_macro.Engine
	cfg        *strategyconfig.Config
	configHash string
	sink       ReportSink
	metrics    contracts.MetricsRecorder
	logger     *logger.Logger
	now        func() time.Time
}

// NewOrchestrator creates a new orchestrator. snapshots may be nil when macro
// analysis is never requested; metrics may be nil.
func NewOrchestrator(
	prices contracts.PriceSource,
	snapshots contracts.SnapshotStore,
	cfg *strategyconfig.Config,
	metrics contracts.MetricsRecorder,
	log *logger.Logger,
) (*Orchestrator, error) {
	if cfg == nil {
		cfg = strategyconfig.Default()
	}
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, contracts.NewConfigError("analysis.config", "%v", err)
	}
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash analysis config: %w", err)
	}

	return &Orchestrator{
		prices:     prices,
		snapshots:  snapshots,
		validator:  quality.NewSeriesValidator(cfg.QualityConfig()),
		analyzer:   s2_signals.NewTechnicalAnalyzer(cfg.SignalParams(), metrics, log.Module("technical")),
		macro:      s3_macro.NewEngine(metrics, log.Module("macro")),
		cfg:        cfg,
		configHash: hash,
		metrics:    metrics,
		logger:     log.Module("orchestrator"),
		now:        time.Now,
	}, nil
}

// WithReportSink stores every successful report in sink
func (o *Orchestrator) WithReportSink(sink ReportSink) *Orchestrator {
	o.sink = sink
	return o
}

// ConfigHash returns the fingerprint stamped on every report
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// Analyze produces the full report for req. An empty series fails the whole
// request; failed indicators and degraded macro factors only add warnings.
func (o *Orchestrator) Analyze(ctx context.Context, req AnalyzeRequest) (report *contracts.AnalysisReport, err error) {
	start := time.Now()
	defer func() {
		o.recordLatency("analyze", start)
		if o.metrics != nil {
			o.metrics.RecordAnalysis(Outcome(err))
		}
	}()

	symbol := s3_macro.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return nil, contracts.NewInputError("analyze", "symbol is required")
	}
	period := req.Period
	if period == "" {
		period = o.cfg.Meta.DefaultPeriod
	}

	weights := o.cfg.FusionWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}
	if req.WithMacro {
		// reject bad weights before any I/O
		if _, err := s4_hybrid.NormalizeWeights(weights); err != nil {
			return nil, err
		}
		if o.snapshots == nil {
			return nil, contracts.NewConfigError("macro.snapshot", "no macro snapshot store configured")
		}
	}

	log := o.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"period": period,
	})

	report = &contracts.AnalysisReport{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		GeneratedAt: o.now().UTC(),
		ConfigHash:  o.configHash,
	}

	// S0: symbol check and prices
	if !s0_data.IsValid(symbol, s0_data.ListBIST100) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s BIST100 listesinde bulunamadi", symbol))
		for _, s := range s0_data.SuggestSimilar(symbol, maxSuggestions) {
			if s != symbol {
				report.Suggestions = append(report.Suggestions, s)
			}
		}
	}

	fetchStart := time.Now()
	series, err := o.prices.FetchSeries(ctx, symbol, period)
	o.recordLatency("fetch_series", fetchStart)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if series.IsEmpty() {
		return nil, contracts.NewInputError("analyze", "no price data for %s (period %s)", symbol, period)
	}

	qr := o.validator.Check(series)
	if !qr.Valid {
		return nil, contracts.NewInputError("analyze", "price series for %s rejected: %v", symbol, qr.Errors)
	}
	report.Warnings = append(report.Warnings, qr.Warnings...)

	// S1/S2: indicators and signals
	technical, err := o.analyzer.Analyze(ctx, series)
	if err != nil {
		return nil, err
	}
	for _, name := range contracts.IndicatorNames {
		if outcome, ok := technical.Indicators[name]; ok && !outcome.OK {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s hesaplanamadi: %s", name, outcome.Error))
		}
	}
	report.Technical = technical
	report.Aggregate = s2_signals.Aggregate(technical.Signals)
	report.TechnicalScore = s2_signals.TechnicalScore(report.Aggregate)

	// S3/S4: macro and fusion
	if req.WithMacro {
		combined, err := o.MacroView(ctx, symbol)
		if err != nil {
			return nil, err
		}
		report.Macro = combined

		hybrid, err := s4_hybrid.Fuse(report.TechnicalScore, combined.CombinedNormalized, weights)
		if err != nil {
			return nil, err
		}
		hybrid.Recommendation = s4_hybrid.Recommend(hybrid, combined.Sector)
		report.Hybrid = hybrid

		if o.metrics != nil {
			o.metrics.RecordHybridScore(symbol, hybrid.HybridScore)
		}
	}

	if o.sink != nil {
		if err := o.sink.SaveReport(ctx, report); err != nil {
			log.WithError(err).Warn("Failed to store analysis report")
		}
	}

	fields := map[string]interface{}{
		"report_id":       report.ID,
		"technical_score": report.TechnicalScore,
		"warnings":        len(report.Warnings),
		"duration_ms":     time.Since(start).Milliseconds(),
	}
	if report.Hybrid != nil {
		fields["hybrid_score"] = report.Hybrid.HybridScore
		fields["signal"] = report.Hybrid.Signal
	}
	log.WithFields(fields).Info("Analysis completed")

	return report, nil
}

// MacroView loads the snapshot and blends the general macro score with the
// sector score of symbol. An empty symbol yields the general view only.
func (o *Orchestrator) MacroView(ctx context.Context, symbol string) (*contracts.CombinedMacro, error) {
	if o.snapshots == nil {
		return nil, contracts.NewConfigError("macro.snapshot", "no macro snapshot store configured")
	}

	snapshot, err := o.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}

	general, err := o.macro.Analyze(snapshot)
	if err != nil {
		return nil, err
	}

	sector := s3_macro.ScoreSector(symbol, snapshot)
	combined := s3_macro.CombineWeighted(*general, sector, o.cfg.Macro.GeneralWeight, o.cfg.Macro.SectorWeight)
	return &combined, nil
}

func (o *Orchestrator) recordLatency(op string, start time.Time) {
	if o.metrics != nil {
		o.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
}

// Outcome classifies err for the analyses metric
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case contracts.IsInputError(err):
		return "input_error"
	case contracts.IsConfigError(err):
		return "config_error"
	case contracts.IsDataQualityError(err):
		return "data_quality_error"
	default:
		return "error"
	}
}
