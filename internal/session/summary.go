package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/qepting91/studybuddy-scraper/internal/domain"
)

// dedupe keeps one post per ID. The last occurrence wins but keeps the slot of the first.
func dedupe(posts []domain.Post) []domain.Post {
	index := make(map[string]int, len(posts))
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if i, seen := index[p.ID]; seen {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}

// newestFirst sorts by creation time, descending.
func newestFirst(posts []domain.Post) {
	slices.SortStableFunc(posts, func(a, b domain.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func (s *Session) finish(r *run) domain.Result {
	posts := dedupe(r.posts)
	r.logger.Info("Deduplicated posts", "before", len(r.posts), "after", len(posts))
	newestFirst(posts)

	rejections := r.rejections
	if rejections == nil {
		rejections = []domain.Rejection{}
	}

	reason := s.stopReason(r, len(posts))
	summary := summarize(r.requests, r.accepted, r.successRate(), reason)

	r.logger.Info("Collection run finished",
		"requests", r.requests,
		"accepted", r.accepted,
		"unique", len(posts),
		"rejected", len(rejections),
		"stop_reason", reason,
		"window_requests", s.tracker.Count(),
		"rate_remaining", s.tracker.Remaining(),
		"rate_resets_at", s.tracker.ResetTime())

	return domain.Result{
		Posts:         posts,
		Rejections:    rejections,
		StatusMessage: summary,
		IsComplete:    true,
	}
}

// stopReason picks one reason by priority: posts cap, requests cap, success rate,
// consecutive empty subreddits.
func (s *Session) stopReason(r *run, unique int) string {
	switch {
	case unique >= s.limits.MaxTotalPosts:
		return fmt.Sprintf("Reached maximum posts limit (%d)", s.limits.MaxTotalPosts)
	case s.requestsCapped(r):
		return fmt.Sprintf("Reached maximum requests (%d)", s.limits.MaxRequestsPerSession)
	case s.lowYield(r):
		return fmt.Sprintf("Success rate too low (<%.0f%%)", s.limits.MinSuccessRate*100)
	case s.tooManyEmpty(r):
		return fmt.Sprintf("Too many consecutive failures (%d)", s.limits.MaxConsecutiveFailures)
	default:
		return "Completed successfully"
	}
}

func summarize(requests, accepted int, rate float64, reason string) string {
	var b strings.Builder
	b.WriteString("\nSession Statistics:\n")
	fmt.Fprintf(&b, "Total requests made: %d\n", requests)
	fmt.Fprintf(&b, "Successful posts: %d\n", accepted)
	fmt.Fprintf(&b, "Success rate: %.2f%%\n", rate*100)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Stopping reason: %s\n", reason)
	return b.String()
}
