package commands

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/history"
	"github.com/bbanting/canvasgradecheck/internal/scheduler"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const summaryNameWidth = 20

// FormatSummaryLine formats "Alan Smith..........91.50% (4 courses)".
// Names are cut or dot-padded to 20 characters.
func FormatSummaryLine(s *contracts.Student) string {
	name := s.Name
	if utf8.RuneCountInString(name) > summaryNameWidth {
		name = string([]rune(name)[:summaryNameWidth])
	}
	name += strings.Repeat(".", summaryNameWidth-utf8.RuneCountInString(name))

	return fmt.Sprintf("%s%s (%d courses)", name, s.DisplayAverage(), len(s.Courses))
}

// PrintSummary prints one summary line per student
func PrintSummary(w io.Writer, students []*contracts.Student) {
	for _, s := range students {
		fmt.Fprintln(w, FormatSummaryLine(s))
	}
}

// PrintStudentDetail prints the average and a tab-indented course breakdown
func PrintStudentDetail(w io.Writer, s *contracts.Student) {
	if len(s.Courses) == 0 {
		fmt.Fprintln(w, "No info.")
		return
	}

	fmt.Fprintf(w, "%s: %s\n", s.Name, s.DisplayAverage())
	for _, c := range s.Courses {
		fmt.Fprintf(w, "\t%s\n", c)
	}
}

// PrintSeries prints a student's history as a date table for external plotting.
// Course columns follow the first point's course order.
func PrintSeries(w io.Writer, name string, points []history.Point) {
	fmt.Fprintf(w, "Grades for %s\n", name)
	if len(points) == 0 {
		fmt.Fprintln(w, "No history.")
		return
	}

	columns := []string{"Date", "Average"}
	for _, c := range points[0].Courses {
		columns = append(columns, c.Name)
	}
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = max(len(col), 10)
	}

	PrintTableHeader(w, columns, widths)
	for _, p := range points {
		row := []string{p.Date.Format(history.DateLayout), formatAverage(p.Average)}
		for _, c := range points[0].Courses {
			row = append(row, formatCourseGrade(p.Courses, c.Name))
		}
		PrintTableRow(w, row, widths)
	}
}

func formatAverage(avg *float64) string {
	if avg == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *avg)
}

func formatCourseGrade(courses []history.CourseGrade, name string) string {
	for _, c := range courses {
		if c.Name == name {
			return fmt.Sprintf("%.2f", c.Grade)
		}
	}
	return "-"
}

// PrintJobHistory prints one row per job: runs, success rate, last outcome
func PrintJobHistory(w io.Writer, histories map[string]*scheduler.JobHistory, names []string) {
	widths := []int{12, 6, 8, 8}
	PrintTableHeader(w, []string{"Job", "Runs", "Success", "Last"}, widths)

	for _, name := range names {
		h, ok := histories[name]
		if !ok {
			continue
		}

		last := "-"
		if r, ok := h.Latest(); ok {
			switch {
			case r.Skipped:
				last = "skipped"
			case r.Success:
				last = "ok"
			default:
				last = "failed"
			}
		}

		PrintTableRow(w, []string{
			name,
			fmt.Sprintf("%d", len(h.Results)),
			fmt.Sprintf("%.0f%%", h.SuccessRate()*100),
			last,
		}, widths)
	}
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	cells := make([]string, len(values))
	for i, val := range values {
		cells[i] = fmt.Sprintf("%-*s", widths[i], val)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}
