package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/history"
)

func runShell(t *testing.T, input string) string {
	t.Helper()

	students := []*contracts.Student{
		{ID: 1, Name: "Alan Smith", Courses: []contracts.Enrollment{{CourseName: "Math", Grade: 90}}},
		{ID: 2, Name: "Alice Jones"},
	}

	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	_, err := history.AppendToday(context.Background(), store, students, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var out bytes.Buffer
	shell := NewShell(strings.NewReader(input), &out, students, store, 2500*time.Millisecond, 7)
	require.NoError(t, shell.Run(context.Background()))

	return out.String()
}

func TestShell_Lookup(t *testing.T) {
	out := runShell(t, "alan\nal\nzzz\nalice\nq\nalan\n")

	assert.Contains(t, out, "Alan Smith: 90.00%\n\tMath: 90.0%\n")
	assert.Equal(t, 2, strings.Count(out, "Student not found."))
	assert.Contains(t, out, "No info.")

	// nothing after q is processed
	assert.Equal(t, 1, strings.Count(out, "Alan Smith: 90.00%"))
}

func TestShell_Commands(t *testing.T) {
	out := runShell(t, "/time\n/courses\n/reset\n")

	assert.Contains(t, out, "Total time elapsed: 2.5")
	assert.Contains(t, out, "Number of courses: 7")
	assert.Contains(t, out, "History reset is not implemented.")
}

func TestShell_Graph(t *testing.T) {
	out := runShell(t, "/graph al an\n/graph zzz\n")

	assert.Contains(t, out, "Grades for Alan Smith")
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "Student not found.")
}
