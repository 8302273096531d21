package fetcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/external/canvas"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

type fakeSource struct {
	delays  map[int]time.Duration
	errs    map[int]error
	calls   int32
	active  int32
	maxSeen int32
	mu      sync.Mutex
}

func (s *fakeSource) FetchCourse(ctx context.Context, id int) (*contracts.Course, error) {
	atomic.AddInt32(&s.calls, 1)
	cur := atomic.AddInt32(&s.active, 1)
	defer atomic.AddInt32(&s.active, -1)

	s.mu.Lock()
	if cur > s.maxSeen {
		s.maxSeen = cur
	}
	s.mu.Unlock()

	if d := s.delays[id]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := s.errs[id]; err != nil {
		return nil, err
	}

	return &contracts.Course{ID: id, Name: "course"}, nil
}

func TestFetchAll_PreservesInputOrder(t *testing.T) {
	// later ids finish first
	source := &fakeSource{delays: map[int]time.Duration{
		1: 40 * time.Millisecond,
		2: 20 * time.Millisecond,
		3: 0,
	}}

	f := New(source, DefaultConfig(), logger.Nop())
	courses, err := f.FetchAll(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)

	require.Len(t, courses, 3)
	assert.Equal(t, 1, courses[0].ID)
	assert.Equal(t, 2, courses[1].ID)
	assert.Equal(t, 3, courses[2].ID)
}

func TestFetchAll_EmptyInput(t *testing.T) {
	f := New(&fakeSource{}, DefaultConfig(), logger.Nop())

	courses, err := f.FetchAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestFetchAll_RespectsWorkerLimit(t *testing.T) {
	delays := make(map[int]time.Duration)
	ids := make([]int, 20)
	for i := range ids {
		ids[i] = i + 1
		delays[i+1] = 5 * time.Millisecond
	}
	source := &fakeSource{delays: delays}

	f := New(source, Config{Workers: 3}, logger.Nop())
	_, err := f.FetchAll(context.Background(), ids)
	require.NoError(t, err)

	assert.LessOrEqual(t, source.maxSeen, int32(3))
	assert.Equal(t, int32(20), source.calls)
}

func TestFetchAll_UnauthorizedIsFatal(t *testing.T) {
	unauthorized := &canvas.StatusError{StatusCode: 401}
	source := &fakeSource{
		errs:   map[int]error{2: unauthorized},
		delays: map[int]time.Duration{1: time.Second, 3: time.Second},
	}

	f := New(source, DefaultConfig(), logger.Nop())

	start := time.Now()
	courses, err := f.FetchAll(context.Background(), []int{1, 2, 3})

	require.Error(t, err)
	assert.Nil(t, courses)
	assert.True(t, errors.Is(err, ErrFatalAuthorization))
	assert.True(t, errors.Is(err, canvas.ErrUnauthorized))

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 2, authErr.CourseID)

	// slow siblings observe cancellation instead of running to completion
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestFetchAll_OtherErrorAborts(t *testing.T) {
	source := &fakeSource{errs: map[int]error{1: &canvas.StatusError{StatusCode: 404}}}

	f := New(source, DefaultConfig(), logger.Nop())
	courses, err := f.FetchAll(context.Background(), []int{1, 2})

	require.Error(t, err)
	assert.Nil(t, courses)
	assert.False(t, errors.Is(err, ErrFatalAuthorization))
}

func TestNew_ClampsWorkers(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"zero uses max", 0, 32},
		{"negative uses max", -1, 32},
		{"above max", 100, 32},
		{"within range", 8, 8},
		{"one", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(&fakeSource{}, Config{Workers: tt.workers}, logger.Nop())
			assert.Equal(t, tt.want, f.Workers())
		})
	}
}
