package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	analysisConfigPath string
	verbose            bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "BIST technical + macro hybrid signal engine",
	Long: `BIST Signal Unified CLI

Scores Borsa Istanbul stocks with five technical indicators, blends the
result with a macro and sector view of the Turkish economy and prints a
hybrid AL / BEK / SAT recommendation.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant analyze THYAO
  go run ./cmd/quant macro update
  go run ./cmd/quant api --port 8089
  go run ./cmd/quant config check config/analysis.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&analysisConfigPath, "config", "", "analysis config file (default ANALYSIS_CONFIG or config/analysis.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
