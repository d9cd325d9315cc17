package dashboard

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/qepting91/studybuddy-scraper/internal/domain"
	"github.com/qepting91/studybuddy-scraper/internal/session"
	"github.com/qepting91/studybuddy-scraper/internal/storage"
)

// Handler renders charts for the most recent collection run.
func Handler(store *storage.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := store.Latest()
		if !ok {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprintln(w, "No collection run yet. Call GET /posts first.")
			return
		}

		subtitle := "Run finished " + snap.FinishedAt.Format("2006-01-02 15:04:05 MST")
		res := snap.Result

		// 1. Why posts were dropped
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: "Rejection Reasons", Subtitle: subtitle}),
			charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		)
		var pieItems []opts.PieData
		for _, kv := range sortedCounts(RejectionCounts(res.Rejections)) {
			pieItems = append(pieItems, opts.PieData{Name: kv.key, Value: kv.count})
		}
		pie.AddSeries("Rejections", pieItems)

		// 2. Where accepted posts came from
		bar := charts.NewBar()
		bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Accepted Posts per Subreddit"}))
		var barX []string
		var barY []opts.BarData
		for _, kv := range sortedCounts(SubredditCounts(res.Posts)) {
			barX = append(barX, kv.key)
			barY = append(barY, opts.BarData{Value: kv.count})
		}
		bar.SetXAxis(barX).AddSeries("Posts", barY)

		// 3. Online vs in person
		mode := charts.NewPie()
		mode.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Online vs In Person"}))
		online, offline := OnlineSplit(res.Posts)
		mode.AddSeries("Format", []opts.PieData{
			{Name: "Online", Value: online},
			{Name: "In person", Value: offline},
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		pie.Render(w)
		bar.Render(w)
		mode.Render(w)
	}
}

// RejectionCounts groups rejection records by reason. Error records are grouped by title.
func RejectionCounts(rejections []domain.Rejection) map[string]int {
	counts := make(map[string]int)
	for _, rj := range rejections {
		switch rj.Reason {
		case session.ReasonTooOld, session.ReasonNotStudy, session.ReasonExcluded:
			counts[rj.Reason]++
		default:
			counts[rj.Title]++
		}
	}
	return counts
}

func SubredditCounts(posts []domain.Post) map[string]int {
	counts := make(map[string]int)
	for _, p := range posts {
		counts[p.Subreddit]++
	}
	return counts
}

func OnlineSplit(posts []domain.Post) (online, offline int) {
	for _, p := range posts {
		if p.IsOnline {
			online++
		} else {
			offline++
		}
	}
	return online, offline
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders by count descending so chart output is stable.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}
