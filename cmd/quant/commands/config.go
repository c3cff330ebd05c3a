package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bistsignal/backend/internal/strategyconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Analysis config tools",
}

var configCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate an analysis config file",
	Long: `Parses the YAML analysis config, applies defaults, validates every field
and prints warnings for risky but legal settings.

Example:
  go run ./cmd/quant config check
  go run ./cmd/quant config check config/analysis.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := analysisConfigPath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		cfg, _, err := loadBase()
		if err != nil {
			return err
		}
		path = cfg.AnalysisConfig
	}

	cfg, _, err := strategyconfig.Load(path)
	if err != nil {
		var verr strategyconfig.ValidationError
		if errors.As(err, &verr) {
			PrintError(fmt.Sprintf("%s: %s", verr.Field, verr.Message))
		}
		return err
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s is valid", path))
	PrintKeyValue("Config ID", cfg.Meta.ConfigID, 10)
	PrintKeyValue("Version", cfg.Meta.Version, 10)
	PrintKeyValue("Period", cfg.Meta.DefaultPeriod, 10)
	PrintKeyValue("Weights", fmt.Sprintf("technical %.2f / macro %.2f", cfg.Hybrid.Technical, cfg.Hybrid.Macro), 10)
	PrintKeyValue("Hash", hash[:12], 10)

	for _, w := range strategyconfig.Warn(cfg) {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	return nil
}
