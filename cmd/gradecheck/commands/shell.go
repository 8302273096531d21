package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/history"
	"github.com/bbanting/canvasgradecheck/internal/roster"
)

const shellPrompt = "\nEnter student name for details: "

// Shell is the interactive lookup loop shown after a run
type Shell struct {
	in       io.Reader
	out      io.Writer
	students []*contracts.Student
	history  history.Store
	elapsed  time.Duration
	courses  int
}

// NewShell creates a shell over the run's results
func NewShell(in io.Reader, out io.Writer, students []*contracts.Student, hist history.Store, elapsed time.Duration, courses int) *Shell {
	return &Shell{
		in:       in,
		out:      out,
		students: students,
		history:  hist,
		elapsed:  elapsed,
		courses:  courses,
	}
}

// Run reads commands until "q" or end of input
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)

	for {
		fmt.Fprint(s.out, shellPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "q" {
			return nil
		}

		if err := s.handle(ctx, line); err != nil {
			return err
		}
	}
}

func (s *Shell) handle(ctx context.Context, line string) error {
	switch {
	case line == "/time":
		fmt.Fprintf(s.out, "\nTotal time elapsed: %.1f\n", s.elapsed.Seconds())

	case line == "/courses":
		fmt.Fprintf(s.out, "Number of courses: %d\n", s.courses)

	case strings.HasPrefix(line, "/graph"):
		// 공백 제거 후 이어붙임: "/graph al an" → "alan"
		query := strings.Join(strings.Split(line, " ")[1:], "")
		return s.graph(ctx, query)

	case line == "/reset":
		fmt.Fprintln(s.out, "History reset is not implemented.")

	default:
		result := roster.Search(s.students, line)
		if err := result.Err(); err != nil {
			fmt.Fprintln(s.out, err)
			return nil
		}
		PrintStudentDetail(s.out, result.Student)
	}

	return nil
}

func (s *Shell) graph(ctx context.Context, query string) error {
	result := roster.Search(s.students, query)
	if err := result.Err(); err != nil {
		fmt.Fprintln(s.out, err)
		return nil
	}

	h, err := s.history.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	points, err := history.Series(h, result.Student.ID)
	if err != nil {
		return fmt.Errorf("build series: %w", err)
	}

	PrintSeries(s.out, result.Student.Name, points)
	return nil
}
