package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch grades, print a summary and save today's snapshot",
	Long: `Runs one grade check.

This command:
- skips courses known to have no tracked students
- fetches every remaining course from Canvas (up to 32 at a time)
- prints one summary line per student
- writes today's snapshot to the history store
- opens an interactive lookup shell (disable with --no-shell)

Shell commands:
  <name>          show a student's courses
  /graph <name>   print a student's history table
  /time           time taken by the run
  /courses        number of courses polled
  q               quit

Example:
  go run ./cmd/gradecheck run
  go run ./cmd/gradecheck run --no-shell`,
	RunE: runGradeCheck,
}

var (
	noShell bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&noShell, "no-shell", false, "exit after printing the summary")
}

func runGradeCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Fprintln(out, "Grade Checker")

	students, err := a.loadRoster()
	if err != nil {
		return err
	}
	courseIDs, err := a.courseIDs()
	if err != nil {
		return err
	}

	start := time.Now()
	report, err := a.newPipeline().Run(ctx, students, courseIDs)
	if err != nil {
		return fmt.Errorf("grade check: %w", err)
	}
	elapsed := time.Since(start)

	PrintSummary(out, report.Students)

	if len(report.Empty) > 0 {
		PrintWarning(out, fmt.Sprintf("%d courses had no tracked students; they will be skipped next run", len(report.Empty)))
	}

	if noShell {
		return nil
	}

	return NewShell(os.Stdin, out, report.Students, a.history, elapsed, report.Polled).Run(ctx)
}
