package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bbanting/canvasgradecheck/internal/emptycache"
	"github.com/bbanting/canvasgradecheck/internal/external/canvas"
	"github.com/bbanting/canvasgradecheck/pkg/httputil"
)

// coursesCmd represents the courses command
var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Inspect and discover polled courses",
	Long: `Course list management.

Subcommands:
  list      - configured courses, marking the ones skipped as empty
  discover  - log in to Canvas and list the courses of an account

Example:
  go run ./cmd/gradecheck courses list
  go run ./cmd/gradecheck courses discover`,
}

var (
	coursesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List configured courses",
		RunE:  listCourses,
	}

	coursesDiscoverCmd = &cobra.Command{
		Use:   "discover",
		Short: "List courses found on the Canvas account page",
		RunE:  discoverCourses,
	}
)

func init() {
	rootCmd.AddCommand(coursesCmd)
	coursesCmd.AddCommand(coursesListCmd)
	coursesCmd.AddCommand(coursesDiscoverCmd)
}

func listCourses(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	lists, err := a.loadCourses()
	if err != nil {
		return err
	}

	empty, err := a.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("load empty courses: %w", err)
	}
	skipped := make(map[int]bool, len(empty))
	for _, id := range empty {
		skipped[id] = true
	}

	widths := []int{10, 8, 7}
	PrintTableHeader(out, []string{"Course", "Term", "Status"}, widths)
	for _, group := range []struct {
		term string
		ids  []int
	}{
		{"prior", lists.PriorTerm},
		{"current", lists.CurrentTerm},
	} {
		for _, id := range group.ids {
			status := "polled"
			if skipped[id] {
				status = "empty"
			}
			PrintTableRow(out, []string{strconv.Itoa(id), group.term, status}, widths)
		}
	}

	polled := emptycache.Filter(lists.All(), empty)
	PrintSeparator(out)
	fmt.Fprintf(out, "Number of courses: %d\n", len(polled))
	return nil
}

func discoverCourses(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cc := a.cfg.Canvas
	if cc.LoginURL == "" || cc.Username == "" || cc.Password == "" || cc.Account == "" {
		return errors.New("CANVAS_LOGIN_URL, CANVAS_USERNAME, CANVAS_PASSWORD and CANVAS_ACCOUNT are required for discovery")
	}

	// 세션 전용 클라이언트 (API 토큰 헤더 없음, 로그인 POST 재전송 없음)
	session, err := canvas.NewSession(httputil.New(a.cfg, a.log).DisableRetry(), cc.LoginURL, cc.BaseURL, a.log)
	if err != nil {
		return err
	}
	if err := session.Login(ctx, cc.Username, cc.Password); err != nil {
		return fmt.Errorf("canvas login: %w", err)
	}

	courses, err := session.AccountCourses(ctx, cc.Account)
	if err != nil {
		return fmt.Errorf("account courses: %w", err)
	}

	widths := []int{10, 40}
	PrintTableHeader(out, []string{"Course", "Name"}, widths)
	for _, c := range courses {
		PrintTableRow(out, []string{strconv.Itoa(c.ID), c.Name}, widths)
	}
	PrintSuccess(out, fmt.Sprintf("%d courses found", len(courses)))
	return nil
}
