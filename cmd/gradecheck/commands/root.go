package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gradecheck",
	Short: "Canvas grade checker",
	Long: `Canvas grade checker

Fetches current scores for every tracked student across the configured
courses, prints a summary, and keeps a dated history for graphing.

Usage:
  go run ./cmd/gradecheck [command]

Examples:
  go run ./cmd/gradecheck run
  go run ./cmd/gradecheck graph alan
  go run ./cmd/gradecheck serve
  go run ./cmd/gradecheck scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
