package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbanting/canvasgradecheck/internal/history"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the grade history store",
}

var historyDatesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List recorded snapshot dates",
	RunE:  listHistoryDates,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyDatesCmd)
}

func listHistoryDates(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	h, err := a.history.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	dates := h.Dates()
	if len(dates) == 0 {
		fmt.Fprintln(out, "No history.")
		return nil
	}

	widths := []int{10, 8}
	PrintTableHeader(out, []string{"Date", "Students"}, widths)
	for _, d := range dates {
		key := d.Format(history.DateLayout)
		PrintTableRow(out, []string{key, fmt.Sprintf("%d", len(h[key]))}, widths)
	}
	return nil
}
