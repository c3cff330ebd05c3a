package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bistsignal/backend/internal/api"
	"github.com/bistsignal/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                        - Health check
  GET  /metrics                       - Prometheus metrics
  GET  /api/analyze/{symbol}          - Hybrid analysis
  GET  /api/macro                     - Macro snapshot
  GET  /api/macro/analysis?symbol=    - Macro verdict, with sector view
  PUT  /api/macro/tcmb-rate           - Record a policy rate
  GET  /api/stocks?list=&sector=      - Stock lists
  GET  /api/stocks/{symbol}/suggest   - Symbol check and suggestions

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Wire collaborators
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":        a.cfg.Port,
		"env":         a.cfg.Env,
		"config_hash": a.brain.ConfigHash(),
	}).Info("Initializing API server")

	// 2. Create handlers
	h := api.Handlers{
		Analysis: handlers.NewAnalysisHandler(a.brain, a.log),
		Macro:    handlers.NewMacroHandler(a.snapshots, a.log),
		Stocks:   handlers.NewStocksHandler(a.log),
		Checks:   a.healthChecks(),
	}

	// 3. Create router and server
	router := api.NewRouter(h, a.metrics, a.log)
	server := api.New(a.cfg, a.log, router)

	// 4. Serve until Ctrl+C / SIGTERM, then drain
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	return server.Run(ctx)
}
