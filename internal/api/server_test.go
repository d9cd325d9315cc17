package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/studybuddy-scraper/internal/clock"
	"github.com/qepting91/studybuddy-scraper/internal/domain"
	"github.com/qepting91/studybuddy-scraper/internal/ratelimit"
	"github.com/qepting91/studybuddy-scraper/internal/retry"
	"github.com/qepting91/studybuddy-scraper/internal/storage"
)

type collectFunc func(ctx context.Context) (domain.Result, error)

func (f collectFunc) Collect(ctx context.Context) (domain.Result, error) { return f(ctx) }

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, c Collector) (*httptest.Server, *storage.SnapshotStore, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewSnapshotStore()
	tracker := ratelimit.NewTracker(clk, 60)
	tracker.Record()
	s := NewServer(0, c, retry.New(retry.DefaultPolicy(), clk, logger), tracker, store, clk, logger)

	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv, store, clk
}

func TestGetPosts(t *testing.T) {
	want := domain.Result{
		Posts: []domain.Post{{
			ID: "abc", Title: "Study buddy", ImageURLs: []string{}, Category: "study",
			Source: "reddit", Location: "East London", CreatedAt: now, Comments: []map[string]any{},
		}},
		Rejections:    []domain.Rejection{{Title: "old", Reason: "Too old"}},
		StatusMessage: "Session Statistics:\n",
		IsComplete:    true,
	}
	srv, store, _ := newTestServer(t, collectFunc(func(context.Context) (domain.Result, error) {
		return want, nil
	}))

	resp, err := http.Get(srv.URL + "/posts")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["is_complete"])
	assert.Equal(t, "Session Statistics:\n", body["status_message"])
	require.Len(t, body["success_posts"], 1)
	require.Len(t, body["filtered_debug_info"], 1)

	post := body["success_posts"].([]any)[0].(map[string]any)
	assert.Equal(t, "abc", post["id"])
	assert.Equal(t, "East London", post["location"])
	assert.Equal(t, []any{}, post["image_urls"])
	assert.Equal(t, []any{}, post["comments"])
	assert.NotContains(t, post, "Subreddit")

	snap, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, now, snap.FinishedAt)
}

func TestGetPosts_RateLimitExhausted(t *testing.T) {
	calls := 0
	srv, store, clk := newTestServer(t, collectFunc(func(context.Context) (domain.Result, error) {
		calls++
		return domain.Result{}, fmt.Errorf("collect: %w", domain.ErrTooManyRequests)
	}))

	resp, err := http.Get(srv.URL + "/posts")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ErrCodeRateLimited, body.Error.Code)
	assert.Equal(t, "Reddit rate limit exceeded", body.Error.Message)
	assert.False(t, body.Success)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 6*time.Second, clk.Slept())
	_, ok := store.Latest()
	assert.False(t, ok)
}

func TestGetPosts_OtherError(t *testing.T) {
	srv, _, _ := newTestServer(t, collectFunc(func(context.Context) (domain.Result, error) {
		return domain.Result{}, errors.New("boom")
	}))

	resp, err := http.Get(srv.URL + "/posts")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealthcheck(t *testing.T) {
	srv, _, _ := newTestServer(t, collectFunc(func(context.Context) (domain.Result, error) {
		return domain.Result{}, nil
	}))

	resp, err := http.Get(srv.URL + "/api/v1/healthcheck")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRateStatus(t *testing.T) {
	srv, _, _ := newTestServer(t, collectFunc(func(context.Context) (domain.Result, error) {
		return domain.Result{}, nil
	}))

	resp, err := http.Get(srv.URL + "/api/v1/rate")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body rateStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 60, body.Budget)
	assert.Equal(t, 1, body.Used)
	assert.Equal(t, 59, body.Remaining)
	assert.True(t, now.Add(time.Minute).Equal(body.ResetsAt))
}

func TestDashboardRoute(t *testing.T) {
	srv, _, _ := newTestServer(t, collectFunc(func(context.Context) (domain.Result, error) {
		return domain.Result{}, nil
	}))

	resp, err := http.Get(srv.URL + "/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetPosts_ClientGoneRunStillCompletes(t *testing.T) {
	clk := clock.NewManual(now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewSnapshotStore()
	var runErr error
	s := NewServer(0, collectFunc(func(ctx context.Context) (domain.Result, error) {
		runErr = ctx.Err()
		return domain.Result{Posts: []domain.Post{}, Rejections: []domain.Rejection{}, IsComplete: true}, nil
	}), retry.New(retry.DefaultPolicy(), clk, logger), ratelimit.NewTracker(clk, 60), store, clk, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.NoError(t, runErr)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, ok := store.Latest()
	assert.True(t, ok)
}
