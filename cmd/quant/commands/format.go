package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/bistsignal/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Terminal report helpers
// every command prints through these
// ═══════════════════════════════════════════════════════════

const (
	separator       = "───────────────────────────────────────────────────────────"
	doubleSeparator = "═══════════════════════════════════════════════════════════"
	barWidth        = 20
)

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println(separator)
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println(doubleSeparator)
}

// PrintHeader opens a report block with a title line
func PrintHeader(title string) {
	fmt.Println()
	fmt.Println(doubleSeparator)
	fmt.Printf("  %s\n", title)
	fmt.Println(separator)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// ScoreBar renders a 0-100 score as a fixed-width bar
func ScoreBar(score float64) string {
	if math.IsNaN(score) {
		score = 0
	}
	filled := int(math.Round(math.Max(0, math.Min(100, score)) / 100 * barWidth))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

// SignalMark is the one-glyph direction of a signal category
func SignalMark(c contracts.SignalCategory) string {
	switch {
	case c.IsBuyFamily():
		return "🟢"
	case c.IsSellFamily():
		return "🔴"
	default:
		return "⚪"
	}
}
