package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bistsignal/backend/internal/contracts"
)

// macroCmd represents the macro command
var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Manage the macro snapshot",
	Long: `Maintains config/macro_data.json, the macro input of every hybrid analysis.

Subcommands:
  update      - fetch USD/TRY, EUR/TRY, BIST100, Brent and gold and save the snapshot
  show        - print the snapshot and the general macro verdict
  set-rate    - record a new TCMB policy rate
  fetch-rate  - read the policy rate published by TCMB

Example:
  go run ./cmd/quant macro update
  go run ./cmd/quant macro set-rate 42.5
  go run ./cmd/quant macro fetch-rate --apply`,
}

var (
	macroUpdateCmd = &cobra.Command{
		Use:   "update",
		Short: "Refresh the macro snapshot from market data",
		Args:  cobra.NoArgs,
		RunE:  runMacroUpdate,
	}

	macroShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the macro snapshot and analysis",
		Args:  cobra.NoArgs,
		RunE:  runMacroShow,
	}

	macroSetRateCmd = &cobra.Command{
		Use:   "set-rate RATE",
		Short: "Record a new TCMB policy rate (percent)",
		Args:  cobra.ExactArgs(1),
		RunE:  runMacroSetRate,
	}

	macroFetchRateCmd = &cobra.Command{
		Use:   "fetch-rate",
		Short: "Scrape the current TCMB policy rate",
		Args:  cobra.NoArgs,
		RunE:  runMacroFetchRate,
	}

	// Flags
	macroShowJSON  bool
	macroShowFor   string
	macroRateApply bool
)

func init() {
	rootCmd.AddCommand(macroCmd)
	macroCmd.AddCommand(macroUpdateCmd)
	macroCmd.AddCommand(macroShowCmd)
	macroCmd.AddCommand(macroSetRateCmd)
	macroCmd.AddCommand(macroFetchRateCmd)

	macroShowCmd.Flags().BoolVar(&macroShowJSON, "json", false, "print JSON")
	macroShowCmd.Flags().StringVar(&macroShowFor, "symbol", "", "blend in the sector view of a symbol")
	macroFetchRateCmd.Flags().BoolVar(&macroRateApply, "apply", false, "write the fetched rate into the snapshot")
}

func runMacroUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	snapshot, err := a.collector.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("macro update: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Macro snapshot saved to %s in %.1fs", a.snapshots.Path(), time.Since(start).Seconds()))
	printSnapshot(snapshot)
	return nil
}

func runMacroShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	snapshot, err := a.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	view, err := a.brain.MacroView(ctx, macroShowFor)
	if err != nil {
		return err
	}

	if macroShowJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"snapshot": snapshot,
			"analysis": view,
		})
	}

	printSnapshot(snapshot)
	printMacroView(view)
	return nil
}

func runMacroSetRate(cmd *cobra.Command, args []string) error {
	rate, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("%w: RATE must be a number, got %q", errUsage, args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	snapshot, err := a.snapshots.UpdateTCMBRate(cmd.Context(), rate)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("TCMB policy rate set to %%%.2f", rate)
	if snapshot.PreviousTCMBRate != nil {
		msg += fmt.Sprintf(" (previous %%%.2f)", *snapshot.PreviousTCMBRate)
	}
	PrintSuccess(msg)
	return nil
}

func runMacroFetchRate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	rate, err := a.tcmb.FetchPolicyRate(ctx)
	if err != nil {
		return fmt.Errorf("fetch policy rate: %w", err)
	}

	PrintKeyValue("Policy rate", fmt.Sprintf("%%%.2f", rate.Current.Rate), 14)
	PrintKeyValue("Effective", rate.Current.EffectiveDate.Format("2006-01-02"), 14)
	if rate.Previous != nil {
		PrintKeyValue("Previous", fmt.Sprintf("%%%.2f (%s)", rate.Previous.Rate, rate.Previous.EffectiveDate.Format("2006-01-02")), 14)
	}

	if !macroRateApply {
		return nil
	}
	if _, err := a.snapshots.UpdateTCMBRate(ctx, rate.Current.Rate); err != nil {
		return err
	}
	PrintSuccess("Snapshot updated")
	return nil
}

// printSnapshot renders the stored macro inputs
func printSnapshot(s *contracts.MacroSnapshot) {
	PrintHeader("Macro snapshot (" + s.LastUpdate + ")")
	PrintKeyValue("USD/TRY", formatQuote(s.USDTRY), 10)
	PrintKeyValue("EUR/TRY", formatQuote(s.EURTRY), 10)
	PrintKeyValue("Brent", formatQuote(s.Oil), 10)
	PrintKeyValue("Gold", formatQuote(s.Gold), 10)
	if s.BIST100 != nil {
		PrintKeyValue("BIST100", fmt.Sprintf("%s %s (%s)", formatFloat(s.BIST100.Current), formatChange(s.BIST100.Change30D), s.BIST100.Trend), 10)
	} else {
		PrintKeyValue("BIST100", "-", 10)
	}
	rate := "-"
	if s.TCMBRate != nil {
		rate = fmt.Sprintf("%%%.2f", *s.TCMBRate)
		if s.PreviousTCMBRate != nil {
			rate += fmt.Sprintf(" (previous %%%.2f)", *s.PreviousTCMBRate)
		}
	}
	PrintKeyValue("TCMB", rate, 10)
	PrintDoubleSeparator()
}

// printMacroView renders the per-factor scores and the blended verdict
func printMacroView(v *contracts.CombinedMacro) {
	g := v.General
	fmt.Printf("  General : %+.2f (%.1f / 100)\n", g.TotalScore, g.NormalizedScore)

	factors := make([]string, 0, len(g.Components))
	for name := range g.Components {
		factors = append(factors, name)
	}
	sort.Strings(factors)
	for _, name := range factors {
		c := g.Components[name]
		mark := ""
		if c.Degraded {
			mark = " (no data)"
		}
		fmt.Printf("   %-10s %+6.1f  w=%.2f  %s%s\n", name, c.RawScore, c.Weight, c.Description, mark)
	}
	fmt.Printf("  %s\n", g.Summary)

	if v.Sector.Sector != contracts.SectorNone {
		PrintSeparator()
		fmt.Printf("  Sector  : %s %+.1f  %s\n", v.Sector.Sector, v.Sector.RawScore, v.Sector.Description)
		fmt.Printf("  Combined: %+.2f (%.1f / 100)\n", v.Combined, v.CombinedNormalized)
	}
	PrintDoubleSeparator()
}

func formatQuote(q *contracts.FactorQuote) string {
	if q == nil {
		return "-"
	}
	return formatFloat(q.Current) + " " + formatChange(q.Change30D)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatChange(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("(30d %+.2f%%)", *v)
}
