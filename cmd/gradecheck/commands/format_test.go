package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/history"
	"github.com/bbanting/canvasgradecheck/internal/scheduler"
)

func TestFormatSummaryLine(t *testing.T) {
	tests := []struct {
		name    string
		student *contracts.Student
		want    string
	}{
		{
			name: "padded",
			student: &contracts.Student{Name: "Alan Smith", Courses: []contracts.Enrollment{
				{CourseName: "Math", Grade: 90}, {CourseName: "Art", Grade: 85},
			}},
			want: "Alan Smith..........87.50% (2 courses)",
		},
		{
			name:    "truncated",
			student: &contracts.Student{Name: "Maximilian Alexander Longname"},
			want:    "Maximilian AlexanderERROR (0 courses)",
		},
		{
			name:    "exactly twenty",
			student: &contracts.Student{Name: "ABCDEFGHIJKLMNOPQRST", Courses: []contracts.Enrollment{{Grade: 100}}},
			want:    "ABCDEFGHIJKLMNOPQRST100.00% (1 courses)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSummaryLine(tt.student))
		})
	}
}

func TestPrintStudentDetail(t *testing.T) {
	var buf bytes.Buffer
	PrintStudentDetail(&buf, &contracts.Student{Name: "Alan", Courses: []contracts.Enrollment{
		{CourseName: "Math", Grade: 91.5},
		{CourseName: "Art", Grade: 80},
	}})
	assert.Equal(t, "Alan: 85.75%\n\tMath: 91.5%\n\tArt: 80.0%\n", buf.String())

	buf.Reset()
	PrintStudentDetail(&buf, &contracts.Student{Name: "Bob"})
	assert.Equal(t, "No info.\n", buf.String())
}

func TestPrintSeries(t *testing.T) {
	avg := 90.0
	points := []history.Point{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Average: &avg, Courses: []history.CourseGrade{{Name: "Math", Grade: 90}}},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Courses: []history.CourseGrade{}},
	}

	var buf bytes.Buffer
	PrintSeries(&buf, "Alan", points)

	out := buf.String()
	assert.Contains(t, out, "Grades for Alan")
	assert.Contains(t, out, "2024-01-01  90.00       90.00")
	assert.Contains(t, out, "2024-01-03  -           -")

	buf.Reset()
	PrintSeries(&buf, "Bob", nil)
	assert.Equal(t, "Grades for Bob\nNo history.\n", buf.String())
}

func TestPrintJobHistory(t *testing.T) {
	histories := map[string]*scheduler.JobHistory{
		"grade_check": {Results: []scheduler.JobResult{
			{JobName: "grade_check", Success: true},
			{JobName: "grade_check", Success: false},
			{JobName: "grade_check", Skipped: true},
		}},
		"idle": {},
	}

	var buf bytes.Buffer
	PrintJobHistory(&buf, histories, []string{"grade_check", "idle", "missing"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Job           Runs    Success   Last", lines[0])
	assert.Equal(t, "grade_check   3       50%       skipped", lines[2])
	assert.Equal(t, "idle          0       0%        -", lines[3])
}
