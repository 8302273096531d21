package canvas

// CourseDTO is the subset of GET /api/v1/courses/:id used here
type CourseDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// EnrollmentDTO is one element of GET /api/v1/courses/:id/enrollments
type EnrollmentDTO struct {
	ID       int       `json:"id"`
	UserID   int       `json:"user_id"`
	CourseID int       `json:"course_id"`
	Type     string    `json:"type"`
	Grades   GradesDTO `json:"grades"`
}

// GradesDTO carries the computed scores; null until Canvas has a grade
type GradesDTO struct {
	CurrentScore *float64 `json:"current_score"`
	FinalScore   *float64 `json:"final_score"`
	CurrentGrade *string  `json:"current_grade"`
}
