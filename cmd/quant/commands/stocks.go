package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bistsignal/backend/internal/s0_data"
	"github.com/bistsignal/backend/internal/s3_macro"
)

// stocksCmd represents the stocks command
var stocksCmd = &cobra.Command{
	Use:   "stocks",
	Short: "BIST symbol lists",
	Long: `Lists BIST30, BIST100 and popular symbols and checks symbol spelling.

Example:
  go run ./cmd/quant stocks list --list BIST30
  go run ./cmd/quant stocks list --sector banka
  go run ./cmd/quant stocks check THYA`,
}

var (
	stocksListCmd = &cobra.Command{
		Use:   "list",
		Short: "Print a stock list",
		Args:  cobra.NoArgs,
		RunE:  runStocksList,
	}

	stocksCheckCmd = &cobra.Command{
		Use:   "check SYMBOL",
		Short: "Check a symbol and suggest similar ones",
		Args:  cobra.ExactArgs(1),
		RunE:  runStocksCheck,
	}

	// Flags
	stocksList   string
	stocksSector string
)

func init() {
	rootCmd.AddCommand(stocksCmd)
	stocksCmd.AddCommand(stocksListCmd)
	stocksCmd.AddCommand(stocksCheckCmd)

	stocksListCmd.Flags().StringVar(&stocksList, "list", s0_data.ListBIST100, "BIST30 | BIST100 | POPULAR")
	stocksListCmd.Flags().StringVar(&stocksSector, "sector", "", "sector name, e.g. banka, havayolu, teknoloji")
}

func runStocksList(cmd *cobra.Command, args []string) error {
	if stocksSector != "" {
		symbols := s0_data.SectorStocks(stocksSector)
		if len(symbols) == 0 {
			return fmt.Errorf("%w: unknown sector %q", errUsage, stocksSector)
		}
		fmt.Printf("%s (%d)\n", stocksSector, len(symbols))
		printColumns(symbols, 8)
		return nil
	}

	name := strings.ToUpper(stocksList)
	symbols := s0_data.StockList(name)
	if len(symbols) == 0 {
		return fmt.Errorf("%w: unknown list %q (BIST30, BIST100, POPULAR)", errUsage, stocksList)
	}

	fmt.Printf("%s (%d)\n", name, len(symbols))
	printColumns(symbols, 8)
	return nil
}

func runStocksCheck(cmd *cobra.Command, args []string) error {
	symbol := s3_macro.NormalizeSymbol(args[0])

	if s0_data.IsValid(symbol, s0_data.ListBIST100) {
		msg := symbol + " is a BIST100 member"
		if sector := s3_macro.SectorOf(symbol); sector != "" {
			msg += fmt.Sprintf(" (sector: %s)", sector)
		}
		PrintSuccess(msg)
		return nil
	}

	PrintWarning(symbol + " BIST100 listesinde bulunamadi")
	if similar := s0_data.SuggestSimilar(symbol, 5); len(similar) > 0 {
		fmt.Println("Did you mean:")
		PrintList(similar)
	}
	return nil
}

// printColumns prints symbols in rows of n
func printColumns(symbols []string, n int) {
	for i := 0; i < len(symbols); i += n {
		end := i + n
		if end > len(symbols) {
			end = len(symbols)
		}
		row := make([]string, 0, n)
		for _, s := range symbols[i:end] {
			row = append(row, fmt.Sprintf("%-6s", s))
		}
		fmt.Println("  " + strings.Join(row, " "))
	}
}
