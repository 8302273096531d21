package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bbanting/canvasgradecheck/internal/history"
	"github.com/bbanting/canvasgradecheck/internal/roster"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <name>",
	Short: "Print a student's grade history",
	Long: `Prints one row per recorded date with the student's average and
course grades, ready for external plotting.

Example:
  go run ./cmd/gradecheck graph alan`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	students, err := a.loadRoster()
	if err != nil {
		return err
	}

	result := roster.Search(students, strings.Join(args, ""))
	if err := result.Err(); err != nil {
		fmt.Fprintln(out, err)
		return nil
	}

	h, err := a.history.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	points, err := history.Series(h, result.Student.ID)
	if err != nil {
		return fmt.Errorf("build series: %w", err)
	}

	PrintSeries(out, result.Student.Name, points)
	return nil
}
