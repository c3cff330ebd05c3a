package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bistsignal/backend/internal/brain"
	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/s0_data"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Run the hybrid analysis of a BIST symbol",
	Long: `Fetches daily prices, evaluates RSI, MACD, Bollinger, moving averages and
volume, then fuses the technical score with the macro view.

Flags:
  --period        Yahoo range (5d 1mo 3mo 6mo 1y 2y 5y max)
  --no-macro      technical analysis only
  --tech-weight   technical weight of the fusion (0-1)
  --macro-weight  macro weight of the fusion (0-1)
  --json          print the report as JSON

Example:
  go run ./cmd/quant analyze THYAO
  go run ./cmd/quant analyze GARAN --period 6mo --tech-weight 0.5
  go run ./cmd/quant analyze ASELS --no-macro --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzePeriod      string
	analyzeNoMacro     bool
	analyzeTechWeight  float64
	analyzeMacroWeight float64
	analyzeJSON        bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "", "price period (default from analysis config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoMacro, "no-macro", false, "skip the macro and hybrid stages")
	analyzeCmd.Flags().Float64Var(&analyzeTechWeight, "tech-weight", 0, "technical weight (0-1)")
	analyzeCmd.Flags().Float64Var(&analyzeMacroWeight, "macro-weight", 0, "macro weight (0-1)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print JSON")
}

// fusionWeights resolves the weight flags; one weight implies the other
func fusionWeights(cmd *cobra.Command) (*contracts.FusionWeights, error) {
	tech := cmd.Flags().Changed("tech-weight")
	macro := cmd.Flags().Changed("macro-weight")

	for name, v := range map[string]float64{"tech-weight": analyzeTechWeight, "macro-weight": analyzeMacroWeight} {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("--%s must be between 0 and 1, got %v", name, v)
		}
	}

	var w contracts.FusionWeights
	switch {
	case tech && macro:
		w = contracts.FusionWeights{Technical: analyzeTechWeight, Macro: analyzeMacroWeight}
	case tech:
		w = contracts.FusionWeights{Technical: analyzeTechWeight, Macro: 1 - analyzeTechWeight}
	case macro:
		w = contracts.FusionWeights{Technical: 1 - analyzeMacroWeight, Macro: analyzeMacroWeight}
	default:
		return nil, nil
	}

	if w.Technical <= 0 || w.Macro <= 0 {
		return nil, fmt.Errorf("both weights must be positive, got technical=%v macro=%v", w.Technical, w.Macro)
	}
	return &w, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	weights, err := fusionWeights(cmd)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	report, err := a.brain.Analyze(ctx, brain.AnalyzeRequest{
		Symbol:    args[0],
		Period:    analyzePeriod,
		Weights:   weights,
		WithMacro: !analyzeNoMacro,
	})
	if err != nil {
		if contracts.IsInputError(err) && !s0_data.IsValid(args[0], s0_data.ListBIST100) {
			if similar := s0_data.SuggestSimilar(args[0], 5); len(similar) > 0 {
				PrintInfo("Did you mean: " + strings.Join(similar, ", "))
			}
		}
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

// printReport renders a report for the terminal
func printReport(r *contracts.AnalysisReport) {
	PrintHeader(r.Symbol + "  Technical + Macro Analysis")
	if r.Technical != nil {
		PrintKeyValue("Price", fmt.Sprintf("%.2f TL", r.Technical.CurrentPrice), 10)
		PrintKeyValue("Date", r.Technical.Date.Format("2006-01-02"), 10)
	}
	PrintKeyValue("Report", r.ID, 10)
	PrintSeparator()

	if r.Technical != nil {
		fmt.Println("  Indicators")
		names := make([]string, 0, len(r.Technical.Indicators))
		for name := range r.Technical.Indicators {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			outcome := r.Technical.Indicators[name]
			if !outcome.OK {
				fmt.Printf("   %-16s ❌ %s\n", name, outcome.Error)
				continue
			}
			if outcome.Signal != nil {
				fmt.Printf("   %-16s %s %-12s %3d  %s\n", name, SignalMark(outcome.Signal.Signal), outcome.Signal.Signal, outcome.Signal.Strength, outcome.Signal.Description)
			}
		}
		PrintSeparator()
	}

	fmt.Printf("  Overall : %s %s (confidence %d%%, score %d)\n", SignalMark(r.Aggregate.OverallSignal), r.Aggregate.OverallSignal, r.Aggregate.Confidence, r.Aggregate.Score)
	fmt.Printf("            %s\n", r.Aggregate.Description)
	fmt.Printf("  Technical : %s %.1f / 100\n", ScoreBar(r.TechnicalScore), r.TechnicalScore)

	if r.Macro != nil {
		PrintSeparator()
		fmt.Printf("  Macro     : %s %.1f / 100 (general %.1f, sector %s %.1f)\n",
			ScoreBar(r.Macro.CombinedNormalized), r.Macro.CombinedNormalized, r.Macro.General.NormalizedScore, sectorName(r.Macro.Sector.Sector), r.Macro.Sector.RawScore)
		fmt.Printf("            %s\n", r.Macro.General.Summary)
	}

	if h := r.Hybrid; h != nil {
		PrintSeparator()
		fmt.Printf("  HYBRID    : %s %.1f / 100  %s (%s)\n", ScoreBar(h.HybridScore), h.HybridScore, h.SignalLabel, h.ConfidenceLabel)
		fmt.Printf("  Weights : technical %.0f%% / macro %.0f%%\n", h.Weights.Technical*100, h.Weights.Macro*100)
		fmt.Printf("  Alignment : %s - %s\n", h.Alignment.Label, h.Alignment.Description)
		fmt.Printf("  Risk      : %s - %s\n", h.Risk.Label, h.Risk.Description)
		if len(h.Recommendation) > 0 {
			PrintList(h.Recommendation)
		}
	}

	if len(r.Warnings) > 0 {
		PrintSeparator()
		fmt.Println("  Warnings")
		PrintList(r.Warnings)
	}
	if len(r.Suggestions) > 0 {
		PrintInfo("Similar symbols: " + strings.Join(r.Suggestions, ", "))
	}
	PrintDoubleSeparator()
}

func sectorName(s contracts.Sector) string {
	if s == contracts.SectorNone {
		return "-"
	}
	return string(s)
}
