package main

import (
	"os"

	"github.com/bbanting/canvasgradecheck/cmd/gradecheck/commands"
)

// main is the entry point for the gradecheck CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/gradecheck [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
