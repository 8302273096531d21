package contracts

import (
	"fmt"
	"strconv"
	"strings"
)

// Student is a tracked roster member
// ⭐ SSOT: 학생 1명의 이번 실행 성적 정보
type Student struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Courses []Enrollment `json:"courses"`
}

// Enrollment is a student's scored participation in one course
type Enrollment struct {
	CourseID   int     `json:"course_id"`
	CourseName string  `json:"course_name"`
	Grade      float64 `json:"grade"`
}

// String formats as "Course: 91.5%"; whole grades keep one decimal ("Art: 80.0%")
func (e Enrollment) String() string {
	grade := strconv.FormatFloat(e.Grade, 'f', -1, 64)
	if !strings.Contains(grade, ".") {
		grade += ".0"
	}
	return fmt.Sprintf("%s: %s%%", e.CourseName, grade)
}

// Course is a fully materialized remote course record.
// Only lives for one fetch+aggregate cycle.
type Course struct {
	ID          int
	Name        string
	Enrollments []CourseEnrollment
}

// CourseEnrollment is one raw student enrollment as reported by Canvas.
// CurrentScore is nil while the course has no computed grade.
type CourseEnrollment struct {
	UserID       int
	CurrentScore *float64
}

// AddCourse appends an enrollment in discovery order
func (s *Student) AddCourse(e Enrollment) {
	s.Courses = append(s.Courses, e)
}

// Average returns round(mean(grades), 2).
// ok is false when the student has no courses; the average is undefined, not zero.
func (s *Student) Average() (avg float64, ok bool) {
	if len(s.Courses) == 0 {
		return 0, false
	}

	total := 0.0
	for _, c := range s.Courses {
		total += c.Grade
	}

	return Round2(total / float64(len(s.Courses))), true
}

// DisplayAverage formats the average as "91.50%" or "ERROR" without courses
func (s *Student) DisplayAverage() string {
	avg, ok := s.Average()
	if !ok {
		return "ERROR"
	}
	return fmt.Sprintf("%.2f%%", avg)
}

// Round2 rounds to two decimals using the shortest correctly rounded
// decimal representation, so 2.675 stays 2.67 like the stored history.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// RosterIDs returns the set of student ids in the roster
func RosterIDs(students []*Student) map[int]struct{} {
	ids := make(map[int]struct{}, len(students))
	for _, s := range students {
		ids[s.ID] = struct{}{}
	}
	return ids
}
