package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/socialcrawl/crawlctl/internal/client"
	"github.com/socialcrawl/crawlctl/internal/config"
	"github.com/socialcrawl/crawlctl/internal/display"
	"github.com/socialcrawl/crawlctl/internal/models"
)

type MockControl struct {
	mock.Mock
}

func (m *MockControl) Disable(busyLabel string) {
	m.Called(busyLabel)
}

func (m *MockControl) Enable(label string) {
	m.Called(label)
}

// lockedBuffer lets the poller goroutine and the test share console output
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type dashboard struct {
	*httptest.Server
	mux      *http.ServeMux
	requests atomic.Int32
	infoHits atomic.Int32
}

func newDashboard(t *testing.T) *dashboard {
	t.Helper()
	d := &dashboard{mux: http.NewServeMux()}
	d.mux.HandleFunc("GET /get_data_info", func(w http.ResponseWriter, _ *http.Request) {
		d.infoHits.Add(1)
		writeJSON(w, map[string]any{"status": "success"})
	})
	d.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.requests.Add(1)
		d.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(d.Close)
	return d
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestService(t *testing.T, baseURL string) (*CrawlService, *lockedBuffer) {
	t.Helper()

	cfg := config.NewConfig()
	cfg.BaseURL = baseURL
	cfg.PollInterval = 5 * time.Millisecond
	cfg.RefreshDelay = time.Millisecond
	cfg.RequestTimeout = 2 * time.Second

	out := &lockedBuffer{}
	console := display.NewConsole(out)
	s := NewCrawlService(cfg, console, console.Renderer())
	t.Cleanup(s.Cleanup)
	return s, out
}

func waitSession(t *testing.T, outcome func(ctx context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, outcome(ctx))
}

func TestCrawlTopicRendersResultsOnSuccess(t *testing.T) {
	d := newDashboard(t)
	var polls atomic.Int32

	d.mux.HandleFunc("POST /crawl_topic", func(w http.ResponseWriter, r *http.Request) {
		var req models.TopicCrawlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "headache", req.Topic)
		writeJSON(w, map[string]any{"status": "started", "task_id": "abc123", "topic_input": req.Topic})
	})
	d.mux.HandleFunc("GET /task_status/abc123", func(w http.ResponseWriter, _ *http.Request) {
		if polls.Add(1) < 3 {
			writeJSON(w, map[string]any{"status": "running", "message": "Crawling page 1"})
			return
		}
		writeJSON(w, map[string]any{
			"status":  "success",
			"message": "Topic crawl completed",
			"data":    map[string]any{"topic": "headache", "posts_count": 12, "output_file": "out.csv"},
		})
	})

	s, out := newTestService(t, d.URL)
	ctl := new(MockControl)
	ctl.On("Disable", "Crawling...").Once()
	ctl.On("Enable", "Start Topic Crawl").Once()

	session, err := s.CrawlTopic(context.Background(), "  headache ", ctl)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, models.TaskID("abc123"), session.TaskID)

	waitSession(t, func(ctx context.Context) error { return session.Wait(ctx).Err })

	text := out.String()
	assert.Contains(t, text, "Topic crawler started for: headache")
	assert.Contains(t, text, "Crawling page 1")
	assert.Contains(t, text, "Topic crawl completed")
	assert.Contains(t, text, "Posts Found: 12")
	assert.Contains(t, text, "Results saved to: out.csv")
	assert.Nil(t, s.Poller().Current(display.SurfaceTopicCrawl))
	ctl.AssertExpectations(t)

	waitSession(t, s.Poller().Drain)
	assert.Equal(t, int32(1), d.infoHits.Load())
}

func TestCrawlTopicRejectsEmptyTopicWithoutRequest(t *testing.T) {
	d := newDashboard(t)
	s, out := newTestService(t, d.URL)
	ctl := new(MockControl)

	session, err := s.CrawlTopic(context.Background(), "   ", ctl)

	assert.Nil(t, session)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "topic", validation.Field)
	assert.Contains(t, out.String(), "Please enter a topic to search for")
	assert.Equal(t, int32(0), d.requests.Load())
	ctl.AssertNotCalled(t, "Disable", mock.Anything)
}

func TestCrawlTopicHTTPFailureReEnablesControl(t *testing.T) {
	d := newDashboard(t)
	d.mux.HandleFunc("POST /crawl_topic", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	s, out := newTestService(t, d.URL)
	ctl := new(MockControl)
	ctl.On("Disable", "Crawling...").Once()
	ctl.On("Enable", "Start Topic Crawl").Once()

	session, err := s.CrawlTopic(context.Background(), "headache", ctl)

	assert.Nil(t, session)
	require.Error(t, err)
	assert.True(t, client.IsHTTPStatus(err, http.StatusInternalServerError))
	assert.Contains(t, out.String(), "Error: HTTP error! status: 500")
	assert.Nil(t, s.Poller().Current(display.SurfaceTopicCrawl))
	ctl.AssertExpectations(t)
}

func TestCrawlTopicTaskErrorSkipsResults(t *testing.T) {
	d := newDashboard(t)
	d.mux.HandleFunc("POST /crawl_topic", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"status": "started", "task_id": "t-err"})
	})
	d.mux.HandleFunc("GET /task_status/t-err", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"status": "error", "message": "Crawler crashed"})
	})

	s, out := newTestService(t, d.URL)

	session, err := s.CrawlTopic(context.Background(), "headache", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	outcome := session.Wait(ctx)

	require.Error(t, outcome.Err)
	assert.Contains(t, out.String(), "Crawler crashed")
	assert.NotContains(t, out.String(), "Posts Found")
}

func TestBusyReEnablesOnPanic(t *testing.T) {
	ctl := new(MockControl)
	ctl.On("Disable", "Working...").Once()
	ctl.On("Enable", "Go").Once()

	assert.Panics(t, func() {
		defer busy(ctl, "Working...", "Go")()
		panic("boom")
	})
	ctl.AssertExpectations(t)
}

func TestCrawlUsersShowsNoneForEmptyParameter(t *testing.T) {
	d := newDashboard(t)
	d.mux.HandleFunc("POST /crawl_users", func(w http.ResponseWriter, r *http.Request) {
		var req models.UsersCrawlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.UserParameter)
		writeJSON(w, map[string]any{"status": "started", "task_id": "u1"})
	})
	d.mux.HandleFunc("GET /task_status/u1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":  "success",
			"message": "Users crawl completed",
			"data":    map[string]any{"total_users": 4, "successful_crawls": 3, "failed_crawls": 1},
		})
	})

	s, out := newTestService(t, d.URL)
	session, err := s.CrawlUsers(context.Background(), "", nil)
	require.NoError(t, err)

	waitSession(t, func(ctx context.Context) error { return session.Wait(ctx).Err })

	text := out.String()
	assert.Contains(t, text, "Users crawler started with parameter: None")
	assert.Contains(t, text, "Total Users: 4")
	assert.Contains(t, text, "Filter: All")
}

func TestFilterPosts(t *testing.T) {
	t.Run("success renders summary and table", func(t *testing.T) {
		d := newDashboard(t)
		d.mux.HandleFunc("POST /filter_posts", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]any{
				"status":  "success",
				"message": "Found 2 posts for 'fever'",
				"data": map[string]any{
					"symptom_group": "fever",
					"posts_count":   2,
					"output_file":   "data/filtered_posts.csv",
					"posts": []map[string]any{
						{"username": "ana", "text": "hot all day"},
						{"username": "bo", "text": "chills"},
					},
				},
			})
		})

		s, out := newTestService(t, d.URL)
		ctl := new(MockControl)
		ctl.On("Disable", "Filtering...").Once()
		ctl.On("Enable", "Filter Posts").Once()

		result, err := s.FilterPosts(context.Background(), "fever", ctl)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, 2, result.PostsCount)

		text := out.String()
		assert.Contains(t, text, "Found 2 posts for 'fever'")
		assert.Contains(t, text, "Symptom Group: fever")
		assert.Contains(t, text, "Filtered Posts")
		assert.Contains(t, text, "chills")
		ctl.AssertExpectations(t)
	})

	t.Run("warning is not an error", func(t *testing.T) {
		d := newDashboard(t)
		d.mux.HandleFunc("POST /filter_posts", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]any{"status": "warning", "message": "No posts found for 'rash'"})
		})

		s, out := newTestService(t, d.URL)
		result, err := s.FilterPosts(context.Background(), "rash", nil)

		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Contains(t, out.String(), "No posts found for 'rash'")
	})

	t.Run("error becomes APIError", func(t *testing.T) {
		d := newDashboard(t)
		d.mux.HandleFunc("POST /filter_posts", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]any{"status": "error", "message": "No main posts data found"})
		})

		s, _ := newTestService(t, d.URL)
		_, err := s.FilterPosts(context.Background(), "fever", nil)

		var apiErr *models.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "No main posts data found", apiErr.Message)
	})

	t.Run("empty selection", func(t *testing.T) {
		d := newDashboard(t)
		s, out := newTestService(t, d.URL)

		_, err := s.FilterPosts(context.Background(), "", nil)

		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, out.String(), "Please select a symptom group")
		assert.Equal(t, int32(0), d.requests.Load())
	})
}

func TestStartUsersCrawlRequiresFilter(t *testing.T) {
	d := newDashboard(t)
	var started atomic.Bool
	d.mux.HandleFunc("GET /view_main_post", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"status": "success", "data": []any{}, "is_filtered": false})
	})
	d.mux.HandleFunc("POST /start_users_crawl", func(w http.ResponseWriter, _ *http.Request) {
		started.Store(true)
	})

	s, out := newTestService(t, d.URL)
	ctl := new(MockControl)
	ctl.On("Disable", mock.Anything).Once()
	ctl.On("Enable", "Start Users Crawl").Once()

	_, err := s.StartUsersCrawl(context.Background(), ctl)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.False(t, started.Load())
	assert.Contains(t, out.String(), "No filtered posts found. Please filter posts first.")
	ctl.AssertExpectations(t)
}

func TestStartUsersCrawlRendersSummary(t *testing.T) {
	d := newDashboard(t)
	d.mux.HandleFunc("GET /view_main_post", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":           "success",
			"data":             []map[string]any{{"username": "ana"}},
			"is_filtered":      true,
			"filtered_symptom": "fever",
		})
	})
	d.mux.HandleFunc("POST /start_users_crawl", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":  "success",
			"message": "Found 2 users in existing data",
			"data": map[string]any{
				"total_users":       2,
				"successful_crawls": 2,
				"failed_crawls":     0,
				"total_posts":       9,
				"usernames":         []string{"ana", "bo"},
				"output_file":       "data/user_his.csv",
			},
		})
	})

	s, out := newTestService(t, d.URL)
	result, err := s.StartUsersCrawl(context.Background(), nil)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 9, result.TotalPosts)
	text := out.String()
	assert.Contains(t, text, "Usernames: ana, bo")
	assert.Contains(t, text, "Results saved to: data/user_his.csv")
}

func TestClearFilterChecksStatusOnly(t *testing.T) {
	d := newDashboard(t)
	d.mux.HandleFunc("POST /clear_filter", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	s, out := newTestService(t, d.URL)

	require.NoError(t, s.ClearFilter(context.Background(), nil))
	assert.Contains(t, out.String(), "Filter cleared successfully")
}

func TestClearFilterHTTPFailure(t *testing.T) {
	d := newDashboard(t)
	d.mux.HandleFunc("POST /clear_filter", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	s, out := newTestService(t, d.URL)

	err := s.ClearFilter(context.Background(), nil)
	assert.True(t, client.IsHTTPStatus(err, http.StatusNotFound))
	assert.Contains(t, out.String(), "Error: HTTP error! status: 404")
}

func TestViewMainPostShowsFilterInTitle(t *testing.T) {
	d := newDashboard(t)
	d.mux.HandleFunc("GET /view_main_post", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":           "success",
			"message":          "Showing 1 filtered records",
			"data":             []map[string]any{{"username": "ana", "text": "fever again", "symptom_group": "fever"}},
			"total_count":      1,
			"is_filtered":      true,
			"filtered_symptom": "fever",
		})
	})

	s, out := newTestService(t, d.URL)
	view, err := s.ViewMainPost(context.Background())

	require.NoError(t, err)
	assert.True(t, view.IsFiltered)
	text := out.String()
	assert.Contains(t, text, "Main Post Data (Filtered by: fever)")
	assert.Contains(t, text, "SYMPTOM GROUP")
	assert.Contains(t, text, "fever again")
}

func TestViewUsersDataShapes(t *testing.T) {
	t.Run("users summary", func(t *testing.T) {
		d := newDashboard(t)
		d.mux.HandleFunc("GET /view_users_data", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]any{
				"status":    "success",
				"data":      []map[string]any{{"username": "ana", "total_posts": 3, "sample_post": "hi"}},
				"data_type": "users_summary",
			})
		})

		s, out := newTestService(t, d.URL)
		_, err := s.ViewUsersData(context.Background())

		require.NoError(t, err)
		assert.Contains(t, out.String(), "TOTAL POSTS")
		assert.Contains(t, out.String(), "LATEST POST")
	})

	t.Run("nested user records", func(t *testing.T) {
		d := newDashboard(t)
		d.mux.HandleFunc("GET /view_users_data", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]any{
				"status": "success",
				"data": []map[string]any{{
					"user":    map[string]any{"username": "bo", "followers": 7, "is_verified": true},
					"threads": []any{map[string]any{}, map[string]any{}},
				}},
			})
		})

		s, out := newTestService(t, d.URL)
		_, err := s.ViewUsersData(context.Background())

		require.NoError(t, err)
		assert.Contains(t, out.String(), "POSTS COUNT")
		assert.Contains(t, out.String(), "bo")
	})
}

func TestFlattenUsers(t *testing.T) {
	rows := flattenUsers([]models.Record{
		{"user": map[string]any{"username": "bo", "full_name": "Bo B", "followers": float64(7), "is_verified": true}, "threads": []any{1, 2}},
		{"threads": []any{}},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "bo", rows[0]["username"])
	assert.Equal(t, float64(2), rows[0]["posts_count"])
	assert.Equal(t, "Yes", rows[0]["verified"])
	assert.Equal(t, "N/A", rows[1]["username"])
	assert.Equal(t, "No", rows[1]["verified"])
}

func TestPickColumns(t *testing.T) {
	assert.Equal(t, []string{"username", "url"}, pickColumns([]models.Record{{"url": "u", "username": "a", "x": 1}}, historyColumns))
	assert.Equal(t, []string{"a", "b"}, pickColumns([]models.Record{{"b": 1, "a": 2}}, historyColumns))
}

func TestViewUserHistoryWarning(t *testing.T) {
	d := newDashboard(t)
	d.mux.HandleFunc("GET /view_user_history", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"status": "warning", "message": "User history file is empty."})
	})

	s, out := newTestService(t, d.URL)
	view, err := s.ViewUserHistory(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.StatusWarning, view.Status)
	assert.Contains(t, out.String(), "User history file is empty.")
	assert.NotContains(t, out.String(), "No data available")
}

func TestDownloadUserHistory(t *testing.T) {
	d := newDashboard(t)
	d.mux.HandleFunc("GET /download_user_history", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="user_history.csv"`)
		_, _ = w.Write([]byte("username,text\nana,hi\n"))
	})

	s, out := newTestService(t, d.URL)
	dir := t.TempDir()

	path, err := s.DownloadUserHistory(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "user_history.csv"), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "username,text\nana,hi\n", string(content))
	assert.Contains(t, out.String(), "User history saved to:")
}

func TestRefreshDataInfo(t *testing.T) {
	d := newDashboard(t)
	s, _ := newTestService(t, d.URL)

	require.NoError(t, s.RefreshDataInfo(context.Background()))

	s.config.BaseURL = "http://127.0.0.1:1"
	assert.Error(t, s.RefreshDataInfo(context.Background()))
}
