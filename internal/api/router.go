package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/bistsignal/backend/internal/api/handlers"
	"github.com/bistsignal/backend/internal/metrics"
	"github.com/bistsignal/backend/pkg/logger"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Analysis *handlers.AnalysisHandler
	Macro    *handlers.MacroHandler
	Stocks   *handlers.StocksHandler
	Checks   map[string]HealthCheck // e.g. "database", "redis"
}

// NewRouter creates and configures the HTTP router. recorder may be nil,
// which leaves out /metrics and the metrics middleware.
// ⭐ SSOT: routes are configured in this function only
func NewRouter(h Handlers, recorder *metrics.Recorder, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler(h.Checks)).Methods(http.MethodGet)
	if recorder != nil {
		r.Handle("/metrics", recorder.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Analysis
	api.HandleFunc("/analyze/{symbol}", h.Analysis.Analyze).Methods(http.MethodGet)

	// Macro
	api.HandleFunc("/macro", h.Macro.GetSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/macro/analysis", h.Analysis.MacroAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/macro/tcmb-rate", h.Macro.SetTCMBRate).Methods(http.MethodPut)

	// Stocks
	api.HandleFunc("/stocks", h.Stocks.List).Methods(http.MethodGet)
	api.HandleFunc("/stocks/{symbol}/suggest", h.Stocks.Suggest).Methods(http.MethodGet)

	// Apply middleware (outermost first)
	r.Use(requestIDMiddleware)
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))
	if recorder != nil {
		r.Use(metricsMiddleware(recorder))
	}

	return r
}

// healthHandler reports "ok", or "degraded" with a 503 when a check fails
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		status := "ok"
		code := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				results[name] = err.Error()
				status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		writeJSON(w, code, map[string]interface{}{
			"status":  status,
			"service": "bist-signal-api",
			"checks":  results,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}
