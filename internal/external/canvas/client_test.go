package canvas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbanting/canvasgradecheck/pkg/config"
	"github.com/bbanting/canvasgradecheck/pkg/httputil"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	httpClient := httputil.New(&config.Config{}, logger.Nop()).WithRetry(1, 10*time.Millisecond)
	return NewClient(httpClient, baseURL, "secret-token", logger.Nop())
}

func TestFetchCourse_FollowsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/10", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"id": 10, "name": "Math 10"}`)
	})
	mux.HandleFunc("/api/v1/courses/10/enrollments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "StudentEnrollment", r.URL.Query().Get("type[]"))

		switch r.URL.Query().Get("page") {
		case "":
			q := r.URL.Query()
			q.Set("page", "2")
			next := fmt.Sprintf("http://%s%s?%s", r.Host, r.URL.Path, q.Encode())
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next", <%s>; rel="last"`, next, next))
			fmt.Fprint(w, `[{"user_id": 1, "grades": {"current_score": 90}}, {"user_id": 2, "grades": {"current_score": null}}]`)
		case "2":
			fmt.Fprint(w, `[{"user_id": 3, "grades": {"current_score": 71.5}}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	course, err := newTestClient(server.URL).FetchCourse(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 10, course.ID)
	assert.Equal(t, "Math 10", course.Name)
	require.Len(t, course.Enrollments, 3)

	assert.Equal(t, 1, course.Enrollments[0].UserID)
	require.NotNil(t, course.Enrollments[0].CurrentScore)
	assert.Equal(t, 90.0, *course.Enrollments[0].CurrentScore)
	assert.Nil(t, course.Enrollments[1].CurrentScore)
	assert.Equal(t, 3, course.Enrollments[2].UserID)
}

func TestFetchCourse_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status": "unauthorized"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchCourse(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestFetchCourse_NotFoundIsNotUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchCourse(context.Background(), 5)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestFetchStudentEnrollments_PageLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, r.URL.RequestURI()))
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.maxPages = 3

	_, err := client.FetchStudentEnrollments(context.Background(), 1)
	assert.Error(t, err)
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{
			name:   "next and last",
			header: `<https://c.edu/api/v1/x?page=2>; rel="next", <https://c.edu/api/v1/x?page=5>; rel="last"`,
			want:   "https://c.edu/api/v1/x?page=2",
		},
		{
			name:   "current and first only",
			header: `<https://c.edu/x?page=1>; rel="current", <https://c.edu/x?page=1>; rel="first"`,
			want:   "",
		},
		{
			name:   "next not first",
			header: `<https://c.edu/x?page=1>; rel="current",<https://c.edu/x?page=2>; rel="next"`,
			want:   "https://c.edu/x?page=2",
		},
		{"malformed", `https://c.edu/x; rel="next"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextLink(tt.header))
		})
	}
}
