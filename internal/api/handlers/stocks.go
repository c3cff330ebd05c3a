package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/bistsignal/backend/internal/s0_data"
	"github.com/bistsignal/backend/internal/s3_macro"
	"github.com/bistsignal/backend/pkg/logger"
)

// StocksHandler serves the BIST symbol lists
type StocksHandler struct {
	logger *logger.Logger
}

// NewStocksHandler creates a new stocks handler
func NewStocksHandler(log *logger.Logger) *StocksHandler {
	return &StocksHandler{logger: log}
}

// StockListQuery are the query parameters of GET /api/stocks
type StockListQuery struct {
	List   string `query:"list" default:"BIST100" validate:"oneof=BIST30 BIST100 POPULAR"`
	Sector string `query:"sector"`
}

// List returns a stock list, or the members of a sector
// GET /api/stocks?list=BIST30 | GET /api/stocks?sector=banka
func (h *StocksHandler) List(w http.ResponseWriter, r *http.Request) {
	var q StockListQuery
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		respondBindError(w, err)
		return
	}
	q.List = strings.ToUpper(q.List)
	if err := finish(r, &q); err != nil {
		respondBindError(w, err)
		return
	}

	if q.Sector != "" {
		respondData(w, map[string]interface{}{
			"sector":  q.Sector,
			"symbols": s0_data.SectorStocks(q.Sector),
		})
		return
	}

	symbols := s0_data.StockList(q.List)
	respondData(w, map[string]interface{}{
		"list":    q.List,
		"count":   len(symbols),
		"symbols": symbols,
	})
}

// SuggestQuery are the query parameters of GET /api/stocks/{symbol}/suggest
type SuggestQuery struct {
	Max int `query:"max" default:"5" validate:"gte=1,lte=20"`
}

// Suggest checks a symbol and proposes similar ones
// GET /api/stocks/{symbol}/suggest?max=5
func (h *StocksHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	symbol := s3_macro.NormalizeSymbol(mux.Vars(r)["symbol"])
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	var q SuggestQuery
	if err := bindQuery(r, &q); err != nil {
		respondBindError(w, err)
		return
	}

	respondData(w, map[string]interface{}{
		"symbol":      symbol,
		"valid":       s0_data.IsValid(symbol, s0_data.ListBIST100),
		"sector":      s3_macro.SectorOf(symbol),
		"suggestions": s0_data.SuggestSimilar(symbol, q.Max),
	})
}
