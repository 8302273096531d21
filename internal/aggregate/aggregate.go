package aggregate

import (
	"context"
	"fmt"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/emptycache"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

// Result is the outcome of reconciling fetched courses against the roster
type Result struct {
	// Enrollments has a key for every roster id, possibly with no entries
	Enrollments map[int][]contracts.Enrollment

	// Empty lists courses with no roster members, in course order
	Empty []int
}

// Apply appends each student's matched enrollments in discovery order
func (r *Result) Apply(roster []*contracts.Student) {
	for _, s := range roster {
		for _, e := range r.Enrollments[s.ID] {
			s.AddCourse(e)
		}
	}
}

// Aggregator matches course enrollments to roster students
// ⭐ SSOT: 코스 → 학생 성적 집계 + 빈 코스 캐시 갱신
type Aggregator struct {
	cache  emptycache.Store
	logger *logger.Logger
}

// New creates an aggregator
func New(cache emptycache.Store, log *logger.Logger) *Aggregator {
	return &Aggregator{
		cache:  cache,
		logger: log,
	}
}

// Reconcile builds per-student enrollments and the empty-course set.
// A course is empty when none of its enrollments belong to a roster student,
// regardless of scores.
func (a *Aggregator) Reconcile(courses []contracts.Course, roster []*contracts.Student) *Result {
	ids := contracts.RosterIDs(roster)

	result := &Result{
		Enrollments: make(map[int][]contracts.Enrollment, len(roster)),
		Empty:       []int{},
	}
	for id := range ids {
		result.Enrollments[id] = []contracts.Enrollment{}
	}

	graded := 0
	for _, course := range courses {
		matched := 0

		for _, ce := range course.Enrollments {
			if _, ok := ids[ce.UserID]; !ok {
				continue
			}
			matched++

			// 점수 없음 = 아직 성적 미산출, 매칭은 되지만 기록 안 함
			if ce.CurrentScore == nil {
				continue
			}

			result.Enrollments[ce.UserID] = append(result.Enrollments[ce.UserID], contracts.Enrollment{
				CourseID:   course.ID,
				CourseName: course.Name,
				Grade:      *ce.CurrentScore,
			})
			graded++
		}

		if matched == 0 {
			result.Empty = append(result.Empty, course.ID)
		}
	}

	a.logger.WithFields(map[string]interface{}{
		"courses":     len(courses),
		"students":    len(roster),
		"enrollments": graded,
		"empty":       len(result.Empty),
	}).Info("Enrollments reconciled")

	return result
}

// Rollover replaces the cache with exactly r's empty set when it has at least
// one course; otherwise the cache is left untouched.
func (a *Aggregator) Rollover(ctx context.Context, r *Result) error {
	if len(r.Empty) == 0 {
		return nil
	}

	// rollover: 새 학기 시작 시 빈 코스 집합을 통째로 교체 (merge 아님)
	if err := a.cache.Replace(ctx, r.Empty); err != nil {
		return fmt.Errorf("replace empty courses: %w", err)
	}
	return nil
}
