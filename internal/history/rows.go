package history

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// recordRow is one (date, student) row in the SQL backends
type recordRow struct {
	Date      string
	StudentID int
	Name      string
	Average   *float64
	Courses   []byte
}

// toRows flattens a snapshot for insertion
func toRows(date string, snap Snapshot) ([]recordRow, error) {
	rows := make([]recordRow, 0, len(snap))

	for key, rec := range snap {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("student key %q is not an integer", key)
		}

		courses := rec.Courses
		if courses == nil {
			courses = []CourseGrade{}
		}
		body, err := marshalPlain(courses)
		if err != nil {
			return nil, fmt.Errorf("encode courses for %d: %w", id, err)
		}

		rows = append(rows, recordRow{
			Date:      date,
			StudentID: id,
			Name:      rec.Name,
			Average:   rec.Average,
			Courses:   body,
		})
	}

	return rows, nil
}

// addDate records a snapshot date, including one with no students
func addDate(h History, date string) error {
	if err := ValidateDate(date); err != nil {
		return err
	}
	if _, ok := h[date]; !ok {
		h[date] = make(Snapshot)
	}
	return nil
}

// addRow validates a row read back from SQL and places it in h
func addRow(h History, row recordRow) error {
	if err := ValidateDate(row.Date); err != nil {
		return err
	}

	courses := []CourseGrade{}
	if err := json.Unmarshal(row.Courses, &courses); err != nil {
		return fmt.Errorf("%w: courses for %d on %s: %v", ErrCorrupt, row.StudentID, row.Date, err)
	}

	snap, ok := h[row.Date]
	if !ok {
		snap = make(Snapshot)
		h[row.Date] = snap
	}
	snap[strconv.Itoa(row.StudentID)] = StudentRecord{
		Name:    row.Name,
		Average: row.Average,
		Courses: courses,
	}
	return nil
}
