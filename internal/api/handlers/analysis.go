package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/bistsignal/backend/internal/brain"
	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/pkg/logger"
)

// Analyzer runs analyses; *brain.Orchestrator satisfies it
type Analyzer interface {
	Analyze(ctx context.Context, req brain.AnalyzeRequest) (*contracts.AnalysisReport, error)
	MacroView(ctx context.Context, symbol string) (*contracts.CombinedMacro, error)
}

// AnalysisHandler handles analysis API endpoints
// ⭐ SSOT: analysis API handlers live in this struct only
type AnalysisHandler struct {
	analyzer Analyzer
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer Analyzer, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// AnalyzeQuery are the query parameters of GET /api/analyze/{symbol}
type AnalyzeQuery struct {
	Period      string  `query:"period" validate:"omitempty,oneof=5d 1mo 3mo 6mo 1y 2y 5y max"`
	TechWeight  float64 `query:"tech_weight" validate:"gte=0,lte=1"`
	MacroWeight float64 `query:"macro_weight" validate:"gte=0,lte=1"`
	Macro       string  `query:"macro" default:"true" validate:"oneof=true false 1 0"`
}

// weights returns nil when neither weight was given; a single weight implies
// the other, which must stay positive
func (q AnalyzeQuery) weights() (*contracts.FusionWeights, error) {
	switch {
	case q.TechWeight == 0 && q.MacroWeight == 0:
		return nil, nil
	case q.MacroWeight == 0:
		if q.TechWeight >= 1 {
			return nil, impliedZeroWeight("macro_weight", "tech_weight")
		}
		return &contracts.FusionWeights{Technical: q.TechWeight, Macro: 1 - q.TechWeight}, nil
	case q.TechWeight == 0:
		if q.MacroWeight >= 1 {
			return nil, impliedZeroWeight("tech_weight", "macro_weight")
		}
		return &contracts.FusionWeights{Technical: 1 - q.MacroWeight, Macro: q.MacroWeight}, nil
	default:
		return &contracts.FusionWeights{Technical: q.TechWeight, Macro: q.MacroWeight}, nil
	}
}

func impliedZeroWeight(missing, given string) error {
	return &requestError{fields: []FieldError{{
		Code:    "ERR_WEIGHT",
		Field:   missing,
		Message: fmt.Sprintf("%s must be positive; %s=1 leaves it at 0", missing, given),
	}}}
}

// Analyze runs the hybrid analysis of a symbol
// GET /api/analyze/{symbol}?period=1y&tech_weight=0.7&macro_weight=0.3&macro=true
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(mux.Vars(r)["symbol"])
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	var q AnalyzeQuery
	if err := bindQuery(r, &q); err != nil {
		respondBindError(w, err)
		return
	}

	weights, err := q.weights()
	if err != nil {
		respondBindError(w, err)
		return
	}

	req := brain.AnalyzeRequest{
		Symbol:    symbol,
		Period:    q.Period,
		Weights:   weights,
		WithMacro: q.Macro == "true" || q.Macro == "1",
	}

	report, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		respondFailure(w, h.logger.WithSymbol(symbol), err, "Analysis failed")
		return
	}

	respondData(w, report)
}

// MacroAnalysisQuery are the query parameters of GET /api/macro/analysis
type MacroAnalysisQuery struct {
	Symbol string `query:"symbol" validate:"omitempty,max=12"`
}

// MacroAnalysis returns the general macro verdict, blended with the sector of symbol when given
// GET /api/macro/analysis?symbol=THYAO
func (h *AnalysisHandler) MacroAnalysis(w http.ResponseWriter, r *http.Request) {
	var q MacroAnalysisQuery
	if err := bindQuery(r, &q); err != nil {
		respondBindError(w, err)
		return
	}

	view, err := h.analyzer.MacroView(r.Context(), q.Symbol)
	if err != nil {
		respondFailure(w, h.logger, err, "Macro analysis failed")
		return
	}

	respondData(w, view)
}
