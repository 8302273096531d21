package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bbanting/canvasgradecheck/internal/scheduler"
	"github.com/bbanting/canvasgradecheck/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run grade checks on a schedule",
	Long: `Runs the grade check daemon.

Subcommands:
  start   - start the scheduler (SCHEDULE, default every day at 4 PM)

Example:
  go run ./cmd/gradecheck scheduler start
  go run ./cmd/gradecheck scheduler start --now`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and registers the grade_check job.

Authorization failures are not retried. The scheduler stops with Ctrl+C.`,
		RunE: runScheduler,
	}

	runNow bool
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)

	schedulerStartCmd.Flags().BoolVar(&runNow, "now", false, "also run the grade check immediately")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched := scheduler.New(a.log).WithRetry(a.cfg.JobRetries, a.cfg.JobRetryDelay)

	job := jobs.NewGradeCheckJob(a.newPipeline(), a.loadRoster, a.courseIDs, a.cfg.Schedule, a.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register job: %w", err)
	}

	sched.Start()

	fmt.Fprintln(out, "✅ Scheduler started successfully")
	fmt.Fprintln(out, "Registered jobs:")
	for _, name := range sched.GetAllJobs() {
		fmt.Fprintf(out, "  - %s (%s)\n", name, a.cfg.Schedule)
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	if runNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(out, "Shutting down scheduler...")
	sched.Stop()

	names := sched.GetAllJobs()
	histories := make(map[string]*scheduler.JobHistory, len(names))
	for _, name := range names {
		h, err := sched.GetJobHistory(name)
		if err != nil {
			return err
		}
		histories[name] = h
	}

	fmt.Fprintln(out)
	PrintJobHistory(out, histories, names)
	return nil
}
