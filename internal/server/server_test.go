package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jpalmerr/habitboard/internal/habit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testDay = "2024-01-01"

// failingRepository refuses every save.
type failingRepository struct{}

func (failingRepository) Load(context.Context) (habit.Collection, bool, error) {
	return nil, false, nil
}

func (failingRepository) Save(context.Context, habit.Collection) error {
	return errors.New("storage offline")
}

func newTestServer(t *testing.T, repo habit.Repository) (*Server, *habit.Store) {
	t.Helper()
	if repo == nil {
		repo = habit.NewMemoryRepository()
	}
	st := habit.NewStore(repo)
	assets := fstest.MapFS{
		"assets/index.html": {Data: []byte("<title>{{.Title}}</title>")},
	}
	srv := NewServer(st, 0, assets, "", func() string { return testDay }, zap.NewNop())
	return srv, st
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestHandleList_Empty(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/habits", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"today":"2024-01-01","habits":[]}`, rec.Body.String())
}

func TestHandleAdd(t *testing.T) {
	srv, st := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/habits", `{"title":"Read"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	got := decode[habit.Habit](t, rec)
	assert.Equal(t, "Read", got.Title)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, []string{}, got.CompletedDates)
	assert.Len(t, st.Habits(), 1)
}

func TestHandleAdd_ValidationError(t *testing.T) {
	srv, st := newTestServer(t, nil)
	h := srv.Handler()

	for _, body := range []string{`{"title":""}`, `{"title":"   "}`, ""} {
		rec := do(t, h, http.MethodPost, "/api/habits", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, habit.ErrEmptyTitle.Error(), decode[errorResponse](t, rec).Error)
	}
	assert.Empty(t, st.Habits())
}

func TestHandleAdd_BadJSON(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/habits", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv.Handler(), http.MethodPost, "/api/habits", `{"name":"Read"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAdd_StorageFailure(t *testing.T) {
	srv, st := newTestServer(t, failingRepository{})

	rec := do(t, srv.Handler(), http.MethodPost, "/api/habits", `{"title":"Read"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to save habits", decode[errorResponse](t, rec).Error)
	assert.Empty(t, st.Habits())
}

func TestHandleToggle(t *testing.T) {
	srv, st := newTestServer(t, nil)
	h := srv.Handler()
	created, err := st.AddHabit(context.Background(), "Read")
	require.NoError(t, err)
	path := "/api/habits/" + created.ID + "/toggle"

	// defaults to today
	rec := do(t, h, http.MethodPost, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{testDay}, decode[habit.Habit](t, rec).CompletedDates)

	// explicit day
	rec = do(t, h, http.MethodPost, path, `{"day":"2023-12-31"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{testDay, "2023-12-31"}, decode[habit.Habit](t, rec).CompletedDates)

	// toggling today again removes it
	rec = do(t, h, http.MethodPost, path, `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"2023-12-31"}, decode[habit.Habit](t, rec).CompletedDates)
}

func TestHandleToggle_Errors(t *testing.T) {
	srv, st := newTestServer(t, nil)
	h := srv.Handler()
	created, _ := st.AddHabit(context.Background(), "Read")

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{name: "unknown id", path: "/api/habits/nope/toggle", want: http.StatusNotFound},
		{name: "bad day", path: "/api/habits/" + created.ID + "/toggle", body: `{"day":"tomorrow"}`, want: http.StatusBadRequest},
		{name: "bad json", path: "/api/habits/" + created.ID + "/toggle", body: `[`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	got, _ := st.Get(created.ID)
	assert.Empty(t, got.CompletedDates)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodDelete, "/api/habits", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/habits", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestHandleDashboard(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.title = `<script>alert("x")</script>`

	rec := do(t, srv.Handler(), http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestHandleDashboard_DefaultTitle(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/", "")
	assert.Contains(t, rec.Body.String(), "<title>Habit Tracker</title>")

	rec = do(t, srv.Handler(), http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// runSSE serves /api/sse until stop is closed and returns the body.
func runSSE(t *testing.T, srv *Server, ready func(), stop <-chan struct{}) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Handler().ServeHTTP(rec, req)
	}()

	// give the handler time to subscribe
	time.Sleep(50 * time.Millisecond)
	ready()
	<-stop
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SSE handler did not exit after cancel")
	}
	return rec.Body.String()
}

func sseEvents(t *testing.T, body string) []habitsResponse {
	t.Helper()
	var events []habitsResponse
	for _, chunk := range strings.Split(body, "\n\n") {
		data, ok := strings.CutPrefix(strings.TrimSpace(chunk), "data: ")
		if !ok {
			continue
		}
		var ev habitsResponse
		require.NoError(t, json.Unmarshal([]byte(data), &ev))
		events = append(events, ev)
	}
	return events
}

func TestHandleSSE_InitialAndChange(t *testing.T) {
	srv, st := newTestServer(t, nil)
	_, err := st.AddHabit(context.Background(), "Read")
	require.NoError(t, err)

	stop := make(chan struct{})
	body := runSSE(t, srv, func() {
		_, err := st.AddHabit(context.Background(), "Run")
		require.NoError(t, err)
		time.Sleep(50 * time.Millisecond)
		close(stop)
	}, stop)

	events := sseEvents(t, body)
	require.Len(t, events, 2)
	assert.Len(t, events[0].Habits, 1)
	assert.Len(t, events[1].Habits, 2)
	assert.Equal(t, testDay, events[1].Today)
}

func TestHandleSSE_DayChanged(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	stop := make(chan struct{})
	body := runSSE(t, srv, func() {
		srv.DayChanged("2024-01-02")
		time.Sleep(50 * time.Millisecond)
		close(stop)
	}, stop)

	events := sseEvents(t, body)
	require.Len(t, events, 2)
	assert.Equal(t, testDay, events[0].Today)
	assert.Equal(t, "2024-01-02", events[1].Today)
	assert.NotNil(t, events[1].Habits)
}

func TestHandleSSE_Headers(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))

	cancel()
	// let the shutdown goroutine finish before goleak checks
	time.Sleep(100 * time.Millisecond)
}
