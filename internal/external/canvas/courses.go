package canvas

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
)

// FetchCourse fetches a course and all of its student enrollments.
// Every enrollment page is read before returning.
// ⭐ SSOT: 코스 + 수강생 조회는 이 함수에서만
func (c *Client) FetchCourse(ctx context.Context, id int) (*contracts.Course, error) {
	var course CourseDTO
	courseURL := fmt.Sprintf("%s/api/v1/courses/%d", c.baseURL, id)
	if _, err := c.getJSON(ctx, courseURL, &course); err != nil {
		return nil, fmt.Errorf("get course %d: %w", id, err)
	}

	enrollments, err := c.FetchStudentEnrollments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get enrollments for course %d: %w", id, err)
	}

	result := &contracts.Course{
		ID:          course.ID,
		Name:        course.Name,
		Enrollments: make([]contracts.CourseEnrollment, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		result.Enrollments = append(result.Enrollments, contracts.CourseEnrollment{
			UserID:       e.UserID,
			CurrentScore: e.Grades.CurrentScore,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"course_id":   id,
		"course_name": course.Name,
		"enrollments": len(result.Enrollments),
	}).Debug("Fetched course")

	return result, nil
}

// FetchStudentEnrollments follows Link pagination until exhausted
func (c *Client) FetchStudentEnrollments(ctx context.Context, courseID int) ([]EnrollmentDTO, error) {
	params := url.Values{}
	params.Set("type[]", "StudentEnrollment")
	params.Set("per_page", fmt.Sprintf("%d", c.perPage))
	next := fmt.Sprintf("%s/api/v1/courses/%d/enrollments?%s", c.baseURL, courseID, params.Encode())

	var all []EnrollmentDTO
	for page := 1; next != ""; page++ {
		if page > c.maxPages {
			return nil, fmt.Errorf("enrollment pagination exceeded %d pages", c.maxPages)
		}

		var batch []EnrollmentDTO
		link, err := c.getJSON(ctx, next, &batch)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		all = append(all, batch...)
		next = link
	}

	return all, nil
}
