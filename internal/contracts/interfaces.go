package contracts

import "context"

// CourseSource retrieves one course with every enrollment page already fetched
// ⭐ SSOT: 외부 LMS 코스 조회 인터페이스
type CourseSource interface {
	FetchCourse(ctx context.Context, id int) (*Course, error)
}

// EmptyCourseStore persists the ids of courses without tracked students.
// Load returns an empty slice when nothing was persisted yet.
// ⭐ SSOT: 빈 코스 캐시 인터페이스
type EmptyCourseStore interface {
	Load(ctx context.Context) ([]int, error)
	Replace(ctx context.Context, ids []int) error
}
