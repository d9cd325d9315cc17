package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qepting91/studybuddy-scraper/internal/domain"
	"github.com/qepting91/studybuddy-scraper/internal/storage"
)

var sample = domain.Result{
	Posts: []domain.Post{
		{ID: "a", Subreddit: "UCL", IsOnline: true},
		{ID: "b", Subreddit: "UCL"},
		{ID: "c", Subreddit: "KCL"},
	},
	Rejections: []domain.Rejection{
		{Title: "x", Reason: "Too old"},
		{Title: "y", Reason: "Too old"},
		{Title: "z", Reason: "Contains excluded keywords"},
		{Title: "Subreddit Error", Reason: "Error in r/no!: invalid subreddit name"},
	},
	IsComplete: true,
}

func TestCounts(t *testing.T) {
	assert.Equal(t, map[string]int{
		"Too old":                    2,
		"Contains excluded keywords": 1,
		"Subreddit Error":            1,
	}, RejectionCounts(sample.Rejections))
	assert.Equal(t, map[string]int{"UCL": 2, "KCL": 1}, SubredditCounts(sample.Posts))

	on, off := OnlineSplit(sample.Posts)
	assert.Equal(t, 1, on)
	assert.Equal(t, 2, off)
}

func TestSortedCounts(t *testing.T) {
	got := sortedCounts(map[string]int{"b": 1, "a": 1, "c": 5})
	assert.Equal(t, []keyCount{{"c", 5}, {"a", 1}, {"b", 1}}, got)
}

func TestHandler_NoRunYet(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(storage.NewSnapshotStore())(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No collection run yet")
}

func TestHandler_RendersCharts(t *testing.T) {
	store := storage.NewSnapshotStore()
	store.Save(sample, time.Now())

	rec := httptest.NewRecorder()
	Handler(store)(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Rejection Reasons")
	assert.Contains(t, body, "Accepted Posts per Subreddit")
	assert.Contains(t, body, "Online vs In Person")
}
