package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/external/canvas"
	"github.com/bbanting/canvasgradecheck/internal/fetcher"
	"github.com/bbanting/canvasgradecheck/internal/history"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

type fakeSource struct {
	mu      sync.Mutex
	courses map[int]contracts.Course
	errs    map[int]error
	fetched []int
}

func (s *fakeSource) FetchCourse(ctx context.Context, id int) (*contracts.Course, error) {
	s.mu.Lock()
	s.fetched = append(s.fetched, id)
	s.mu.Unlock()

	if err := s.errs[id]; err != nil {
		return nil, err
	}
	c := s.courses[id]
	return &c, nil
}

type memCache struct {
	ids      []int
	replaced bool
}

func (c *memCache) Load(ctx context.Context) ([]int, error) {
	return c.ids, nil
}

func (c *memCache) Replace(ctx context.Context, ids []int) error {
	c.ids = ids
	c.replaced = true
	return nil
}

func score(v float64) *float64 {
	return &v
}

func newSource() *fakeSource {
	return &fakeSource{courses: map[int]contracts.Course{
		10: {ID: 10, Name: "Math", Enrollments: []contracts.CourseEnrollment{{UserID: 1, CurrentScore: score(90)}}},
		11: {ID: 11, Name: "Art", Enrollments: []contracts.CourseEnrollment{{UserID: 4, CurrentScore: score(70)}}},
		12: {ID: 12, Name: "Old", Enrollments: []contracts.CourseEnrollment{{UserID: 1, CurrentScore: score(10)}}},
	}}
}

func roster() []*contracts.Student {
	return []*contracts.Student{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}
}

func TestRun(t *testing.T) {
	source := newSource()
	cache := &memCache{ids: []int{12}}
	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.json"))

	p := New(source, cache, store, fetcher.DefaultConfig(), logger.Nop())
	p.now = func() time.Time { return time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC) }

	students := roster()
	report, err := p.Run(context.Background(), students, []int{10, 11, 12})
	require.NoError(t, err)

	// known-empty course 12 is never fetched
	assert.ElementsMatch(t, []int{10, 11}, source.fetched)
	assert.Equal(t, 2, report.Polled)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []int{11}, report.Empty)
	assert.Equal(t, "2024-01-02", report.Date)
	assert.NotEmpty(t, report.RunID)

	assert.Equal(t, []int{11}, cache.ids)

	require.Len(t, students[0].Courses, 1)
	assert.Equal(t, "Math", students[0].Courses[0].CourseName)
	assert.Empty(t, students[1].Courses)

	h, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Contains(t, h, "2024-01-02")
	assert.Equal(t, 90.0, *h["2024-01-02"]["1"].Average)
	assert.Nil(t, h["2024-01-02"]["2"].Average)
}

func TestRun_UnauthorizedWritesNothing(t *testing.T) {
	source := newSource()
	source.errs = map[int]error{11: &canvas.StatusError{StatusCode: 401}}
	cache := &memCache{ids: []int{}}
	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.json"))

	p := New(source, cache, store, fetcher.DefaultConfig(), logger.Nop())

	_, err := p.Run(context.Background(), roster(), []int{10, 11})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetcher.ErrFatalAuthorization))

	assert.False(t, cache.replaced)

	h, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h)
}

type failingStore struct{}

func (failingStore) Load(ctx context.Context) (history.History, error) {
	return history.History{}, nil
}

func (failingStore) PutSnapshot(ctx context.Context, date string, snap history.Snapshot) error {
	return errors.New("disk full")
}

func TestRun_HistoryFailureKeepsCache(t *testing.T) {
	cache := &memCache{ids: []int{12}}

	p := New(newSource(), cache, failingStore{}, fetcher.DefaultConfig(), logger.Nop())

	_, err := p.Run(context.Background(), roster(), []int{10, 11, 12})
	require.Error(t, err)

	// course 11 is empty this run, but the old set survives the failed write
	assert.False(t, cache.replaced)
	assert.Equal(t, []int{12}, cache.ids)
}
