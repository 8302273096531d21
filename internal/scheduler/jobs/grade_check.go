package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/fetcher"
	"github.com/bbanting/canvasgradecheck/internal/pipeline"
	"github.com/bbanting/canvasgradecheck/internal/scheduler"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

// Runner executes one grade check
type Runner interface {
	Run(ctx context.Context, students []*contracts.Student, courseIDs []int) (*pipeline.Report, error)
}

// RosterLoader returns a fresh roster for each run
type RosterLoader func() ([]*contracts.Student, error)

// CourseLoader returns the course ids to poll
type CourseLoader func() ([]int, error)

// GradeCheckJob runs the grade check pipeline on a schedule
type GradeCheckJob struct {
	runner   Runner
	roster   RosterLoader
	courses  CourseLoader
	schedule string
	logger   *logger.Logger
}

// NewGradeCheckJob creates a new grade check job
func NewGradeCheckJob(runner Runner, roster RosterLoader, courses CourseLoader, schedule string, log *logger.Logger) *GradeCheckJob {
	return &GradeCheckJob{
		runner:   runner,
		roster:   roster,
		courses:  courses,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *GradeCheckJob) Name() string {
	return "grade_check"
}

// Schedule returns the cron schedule
func (j *GradeCheckJob) Schedule() string {
	return j.schedule
}

// Run loads inputs and runs one grade check.
// Authorization failures are permanent; bad input files are too.
func (j *GradeCheckJob) Run(ctx context.Context) error {
	students, err := j.roster()
	if err != nil {
		return scheduler.Permanent(fmt.Errorf("load roster: %w", err))
	}

	courseIDs, err := j.courses()
	if err != nil {
		return scheduler.Permanent(fmt.Errorf("load courses: %w", err))
	}

	report, err := j.runner.Run(ctx, students, courseIDs)
	if err != nil {
		if errors.Is(err, fetcher.ErrFatalAuthorization) {
			return scheduler.Permanent(err)
		}
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   report.RunID,
		"date":     report.Date,
		"students": len(report.Students),
		"polled":   report.Polled,
	}).Info("Scheduled grade check completed")

	return nil
}
