package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bbanting/canvasgradecheck/internal/aggregate"
	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/emptycache"
	"github.com/bbanting/canvasgradecheck/internal/fetcher"
	"github.com/bbanting/canvasgradecheck/internal/history"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

// Report summarizes one grade check run
type Report struct {
	RunID     string
	Students  []*contracts.Student
	Polled    int   // courses fetched this run
	Skipped   int   // courses skipped as known-empty
	Empty     []int // courses found empty this run
	Date      string
	StartedAt time.Time
	Duration  time.Duration
}

// Pipeline runs one grade check: cache → filter → fetch → aggregate → persist → rollover
// ⭐ SSOT: 성적 확인 1회 실행 흐름
type Pipeline struct {
	fetcher    *fetcher.Fetcher
	aggregator *aggregate.Aggregator
	cache      emptycache.Store
	history    history.Store
	logger     *logger.Logger
	now        func() time.Time
}

// New wires a pipeline from its collaborators
func New(source contracts.CourseSource, cache emptycache.Store, hist history.Store, cfg fetcher.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher.New(source, cfg, log),
		aggregator: aggregate.New(cache, log),
		cache:      cache,
		history:    hist,
		logger:     log,
		now:        time.Now,
	}
}

// Run fetches every course not known to be empty, fills in the roster's
// courses, appends today's snapshot, then rotates the empty-course cache.
// On a fetch failure nothing is written; on a history failure the cache is kept.
func (p *Pipeline) Run(ctx context.Context, students []*contracts.Student, courseIDs []int) (*Report, error) {
	start := p.now()
	runID := uuid.NewString()
	log := p.logger.WithField("run_id", runID)

	// 1. Known-empty courses
	empty, err := p.cache.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load empty courses: %w", err)
	}
	ids := emptycache.Filter(courseIDs, empty)

	log.WithFields(map[string]interface{}{
		"students": len(students),
		"courses":  len(ids),
		"skipped":  len(courseIDs) - len(ids),
	}).Info("Grade check started")

	// 2. Fetch
	courses, err := p.fetcher.FetchAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 3. Aggregate
	result := p.aggregator.Reconcile(courses, students)
	result.Apply(students)

	// 4. Persist
	date, err := history.AppendToday(ctx, p.history, students, start)
	if err != nil {
		return nil, err
	}

	// 5. Empty-course cache, only once the snapshot is saved
	if err := p.aggregator.Rollover(ctx, result); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     runID,
		Students:  students,
		Polled:    len(ids),
		Skipped:   len(courseIDs) - len(ids),
		Empty:     result.Empty,
		Date:      date,
		StartedAt: start,
		Duration:  p.now().Sub(start),
	}

	log.WithFields(map[string]interface{}{
		"date":     report.Date,
		"polled":   report.Polled,
		"empty":    len(report.Empty),
		"duration": report.Duration.String(),
	}).Info("Grade check completed")

	return report, nil
}
