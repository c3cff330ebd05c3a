package main

import (
	"os"

	"github.com/bistsignal/backend/cmd/quant/commands"
)

// main is the entry point for the BIST signal CLI
// ⭐ Unified CLI entry point: go run ./cmd/quant [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
