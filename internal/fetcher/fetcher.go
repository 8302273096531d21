package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/external/canvas"
	"github.com/bbanting/canvasgradecheck/pkg/config"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

// ErrFatalAuthorization aborts the whole run when Canvas rejects the token
var ErrFatalAuthorization = errors.New("fatal authorization failure")

// AuthError carries the course that triggered the abort.
// errors.Is matches both ErrFatalAuthorization and canvas.ErrUnauthorized.
type AuthError struct {
	CourseID int
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: course %d: %v", ErrFatalAuthorization, e.CourseID, e.Err)
}

func (e *AuthError) Is(target error) bool {
	return target == ErrFatalAuthorization
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Config controls the worker pool
type Config struct {
	Workers int
}

// DefaultConfig returns the maximum pool size
func DefaultConfig() Config {
	return Config{Workers: config.MaxFetchWorkers}
}

// Fetcher retrieves many courses concurrently
// ⭐ SSOT: 코스 병렬 조회 (입력 순서 보장)
type Fetcher struct {
	source  contracts.CourseSource
	workers int
	logger  *logger.Logger
}

// New creates a fetcher. Workers is clamped to [1, 32].
func New(source contracts.CourseSource, cfg Config, log *logger.Logger) *Fetcher {
	workers := cfg.Workers
	if workers < 1 || workers > config.MaxFetchWorkers {
		workers = config.MaxFetchWorkers
	}

	return &Fetcher{
		source:  source,
		workers: workers,
		logger:  log,
	}
}

// Workers returns the effective pool size
func (f *Fetcher) Workers() int {
	return f.workers
}

// FetchAll fetches every course id and returns them in input order.
// Any failure cancels the remaining fetches and nothing partial is returned.
func (f *Fetcher) FetchAll(ctx context.Context, ids []int) ([]contracts.Course, error) {
	start := time.Now()

	f.logger.WithFields(map[string]interface{}{
		"courses": len(ids),
		"workers": f.workers,
	}).Info("Starting course fetch")

	// 각 작업은 자기 슬롯에만 기록 → 완료 순서와 무관하게 입력 순서 유지
	results := make([]contracts.Course, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			course, err := f.source.FetchCourse(gctx, id)
			if err != nil {
				if errors.Is(err, canvas.ErrUnauthorized) {
					return &AuthError{CourseID: id, Err: err}
				}
				return fmt.Errorf("fetch course %d: %w", id, err)
			}
			if course == nil {
				return fmt.Errorf("fetch course %d: empty response", id)
			}

			results[i] = *course
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		f.logger.WithError(err).Error("Course fetch aborted")
		return nil, err
	}

	f.logger.WithFields(map[string]interface{}{
		"courses":  len(results),
		"duration": time.Since(start).String(),
	}).Info("Course fetch completed")

	return results, nil
}
