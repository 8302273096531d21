package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

type testJob struct {
	name  string
	calls int32
	run   func(ctx context.Context, call int32) error
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return "0 0 16 * * *" }

func (j *testJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if j.run == nil {
		return nil
	}
	return j.run(ctx, n)
}

func newTestScheduler() *Scheduler {
	return New(logger.Nop()).WithRetry(2, time.Millisecond)
}

func TestAddJob_Duplicate(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&testJob{name: "a"}))
	assert.Error(t, s.AddJob(&testJob{name: "a"}))
	assert.Equal(t, []string{"a"}, s.GetAllJobs())
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := newTestScheduler()
	job := &badScheduleJob{}

	assert.Error(t, s.AddJob(job))
	assert.Empty(t, s.GetAllJobs())
}

type badScheduleJob struct{}

func (badScheduleJob) Name() string                  { return "bad" }
func (badScheduleJob) Schedule() string              { return "every tuesday" }
func (badScheduleJob) Run(ctx context.Context) error { return nil }

func TestRunJob_RetriesTransientErrors(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "flaky", run: func(ctx context.Context, call int32) error {
		if call < 3 {
			return errors.New("temporary")
		}
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	h, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	last, ok := h.Latest()
	require.True(t, ok)
	assert.True(t, last.Success)
	assert.Equal(t, 3, last.Attempts)
}

func TestRunJob_PermanentErrorNotRetried(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "auth", run: func(ctx context.Context, call int32) error {
		return Permanent(errors.New("unauthorized"))
	}}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, int32(1), atomic.LoadInt32(&job.calls))

	h, err := s.GetJobHistory("auth")
	require.NoError(t, err)
	last, _ := h.Latest()
	assert.False(t, last.Success)
	assert.Equal(t, "unauthorized", last.Error)
}

func TestRunJob_SkipsWhileRunning(t *testing.T) {
	s := newTestScheduler()
	release := make(chan struct{})
	started := make(chan struct{})

	job := &testJob{name: "slow", run: func(ctx context.Context, call int32) error {
		if call == 1 {
			close(started)
			<-release
		}
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	done := make(chan struct{})
	go func() {
		s.runJob(job)
		close(done)
	}()
	<-started

	s.runJob(job) // overlaps the first run
	close(release)
	<-done

	assert.Equal(t, int32(1), atomic.LoadInt32(&job.calls))

	h, err := s.GetJobHistory("slow")
	require.NoError(t, err)
	require.Len(t, h.Results, 2)
	assert.True(t, h.Results[0].Skipped)
	assert.True(t, h.Results[1].Success)
	assert.Equal(t, 1.0, h.SuccessRate())
}

func TestRunJob_Unknown(t *testing.T) {
	assert.Error(t, newTestScheduler().RunJob("missing"))
}

func TestPermanent(t *testing.T) {
	base := errors.New("boom")

	assert.Nil(t, Permanent(nil))
	assert.False(t, IsPermanent(base))
	assert.True(t, IsPermanent(Permanent(base)))
	assert.ErrorIs(t, Permanent(base), base)
}

func TestJobHistory_Cap(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxJobResults+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxJobResults)
	assert.InDelta(t, 0.5, h.SuccessRate(), 0.001)
}

func TestWithRetry_NegativeKeepsDefault(t *testing.T) {
	s := New(logger.Nop()).WithRetry(-1, time.Second)
	assert.Equal(t, 3, s.maxRetries)

	s.WithRetry(0, time.Second)
	assert.Equal(t, 0, s.maxRetries)
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 1, "next", "16:00", "dangling"})
	assert.Equal(t, map[string]interface{}{"entry": 1, "next": "16:00"}, fields)
}
