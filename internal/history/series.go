package history

import (
	"sort"
	"strconv"
	"time"
)

// Point is one student's state on one date
type Point struct {
	Date    time.Time     `json:"date"`
	Average *float64      `json:"average"`
	Courses []CourseGrade `json:"courses"`
}

// Series returns the student's points in ascending date order.
// Dates without the student are skipped; no history yields an empty slice.
func Series(h History, studentID int) ([]Point, error) {
	key := strconv.Itoa(studentID)
	points := make([]Point, 0, len(h))

	for date, snap := range h {
		rec, ok := snap[key]
		if !ok {
			continue
		}

		d, err := time.Parse(DateLayout, date)
		if err != nil {
			return nil, ValidateDate(date)
		}

		points = append(points, Point{
			Date:    d,
			Average: rec.Average,
			Courses: rec.Courses,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return points, nil
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}
