// Package session runs one collection pass over every community and query,
// filtering hits into candidate posts and stopping on the configured caps.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/qepting91/studybuddy-scraper/internal/classify"
	"github.com/qepting91/studybuddy-scraper/internal/clock"
	"github.com/qepting91/studybuddy-scraper/internal/config"
	"github.com/qepting91/studybuddy-scraper/internal/domain"
	"github.com/qepting91/studybuddy-scraper/internal/ratelimit"
)

const (
	// RateLimitPause is how long a throttled query waits before the next one.
	RateLimitPause = 60 * time.Second
	// AcceptPace is the self-imposed delay after every accepted post.
	AcceptPace = time.Second

	searchSort = "new"
	searchTime = "month"

	profileImage = "person.circle.fill"
	category     = "study"
	source       = "reddit"
	permalinkURL = "https://reddit.com"
)

// Rejection reasons.
const (
	ReasonTooOld    = "Too old"
	ReasonNotStudy  = "Not study-related"
	ReasonExcluded  = "Contains excluded keywords"
	titleSubreddit  = "Subreddit Error"
	titleQuery      = "Query Error"
	titleRateLimit  = "Rate Limited"
	titleItemFailed = "Item Error"
)

// Regex for valid subreddit names
var subNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,21}$`)

// DefaultSubreddits are the communities searched when no override is loaded.
var DefaultSubreddits = []string{
	"studybuddy", "studybuddyLondon", "londonstudybuddy",
	"studybuddyUK", "studybuddyuk", "studybuddy_london",
	"studybuddy_london_uk", "UniUK", "london", "londonuk",
	"londonstudents", "UCL", "Imperial", "KCL", "LSE",
	"Birkbeck", "CityUniversity", "SOAS", "RoyalHolloway", "Brunel",
	"Greenwich", "Westminster", "Kingston", "Roehampton", "Middlesex",
	"LondonMetropolitan", "ukstudents", "ukuni", "londoncommunity",
}

// DefaultQueries are the search phrases run against every community.
var DefaultQueries = []string{
	`"study partner" london`,
	`"study buddy" london`,
	`"study group" london`,
	`"looking for study partner" london`,
	`"need study partner" london`,
	`"want study partner" london`,
	`"study together" london`,
	`"study session" london`,
	`"revision partner" london`,
	`"accountability partner" london`,
}

// Session drives the subreddit × query loop. Callers run one Collect at a time.
type Session struct {
	searcher   domain.Searcher
	classifier *classify.Classifier
	tracker    *ratelimit.Tracker
	clock      clock.Clock
	limits     config.SessionConfig
	subreddits []string
	queries    []string
	logger     *slog.Logger
}

// Option customizes a Session built by New.
type Option func(*Session)

// WithSubreddits replaces the community list. An empty list keeps the defaults.
func WithSubreddits(subs []string) Option {
	return func(s *Session) {
		if len(subs) > 0 {
			s.subreddits = subs
		}
	}
}

// WithQueries replaces the query list. An empty list keeps the defaults.
func WithQueries(queries []string) Option {
	return func(s *Session) {
		if len(queries) > 0 {
			s.queries = queries
		}
	}
}

// New builds a Session over the default lists unless opts override them.
func New(
	searcher domain.Searcher,
	classifier *classify.Classifier,
	tracker *ratelimit.Tracker,
	clk clock.Clock,
	limits config.SessionConfig,
	logger *slog.Logger,
	opts ...Option,
) *Session {
	s := &Session{
		searcher:   searcher,
		classifier: classifier,
		tracker:    tracker,
		clock:      clk,
		limits:     limits,
		subreddits: DefaultSubreddits,
		queries:    DefaultQueries,
		logger:     logger.With("component", "session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run holds the counters of a single Collect call.
type run struct {
	posts            []domain.Post
	rejections       []domain.Rejection
	requests         int
	accepted         int
	consecutiveEmpty int
	cutoff           time.Time
	logger           *slog.Logger
}

func (r *run) reject(title, reason string) {
	r.rejections = append(r.rejections, domain.Rejection{Title: title, Reason: reason})
}

func (r *run) successRate() float64 {
	if r.requests == 0 {
		return 0
	}
	return float64(r.accepted) / float64(r.requests)
}

func (s *Session) postsCapped(r *run) bool    { return len(r.posts) >= s.limits.MaxTotalPosts }
func (s *Session) requestsCapped(r *run) bool { return r.requests >= s.limits.MaxRequestsPerSession }
func (s *Session) tooManyEmpty(r *run) bool {
	return r.consecutiveEmpty >= s.limits.MaxConsecutiveFailures
}

func (s *Session) lowYield(r *run) bool {
	return r.requests > s.limits.SuccessRateFloor && r.successRate() < s.limits.MinSuccessRate
}

// Collect performs one full pass. Failures inside the pass never surface as an
// error; they end up in the rejections or the status message. The only error
// returned is cancellation of ctx.
func (s *Session) Collect(ctx context.Context) (res domain.Result, err error) {
	r := &run{
		cutoff: s.clock.Now().Add(-s.limits.MaxPostAge),
		logger: s.logger.With("run_id", uuid.NewString()),
	}

	defer func() {
		if rec := recover(); rec != nil {
			msg := fmt.Sprintf("Error occurred: %v", rec)
			r.logger.Error("Collection run failed", "err", msg)
			res = domain.Result{
				Posts:         []domain.Post{},
				Rejections:    []domain.Rejection{},
				StatusMessage: msg,
				IsComplete:    true,
			}
			err = nil
		}
	}()

	r.logger.Info("Starting collection run",
		"subreddits", len(s.subreddits),
		"queries", len(s.queries),
		"rate_remaining", s.tracker.Remaining(),
		"rate_resets_at", s.tracker.ResetTime())

	for _, sub := range s.subreddits {
		if s.postsCapped(r) {
			r.logger.Info("Reached max total posts, stopping", "limit", s.limits.MaxTotalPosts)
			break
		}
		if s.requestsCapped(r) {
			r.logger.Info("Reached max requests per session, stopping", "limit", s.limits.MaxRequestsPerSession)
			break
		}
		if s.tooManyEmpty(r) {
			r.logger.Info("Consecutive subreddits with no posts, stopping", "limit", s.limits.MaxConsecutiveFailures)
			break
		}

		r.logger.Info("Starting search", "sub", sub)
		produced, abandon, err := s.searchSubreddit(ctx, r, sub)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.finish(r), ctxErr
		}
		if err != nil {
			r.logger.Error("Subreddit failed", "sub", sub, "err", err)
			r.reject(titleSubreddit, fmt.Sprintf("Error in r/%s: %v", sub, err))
			produced = false
		}

		if produced {
			r.consecutiveEmpty = 0
		} else {
			r.consecutiveEmpty++
		}

		if abandon {
			r.logger.Warn("Success rate too low, abandoning remaining queries",
				"success_rate", r.successRate(), "requests", r.requests)
			break
		}
	}

	return s.finish(r), nil
}

// searchSubreddit runs every query against one community. abandon is set when
// the success ratio short-circuit fires, which ends the whole run.
func (s *Session) searchSubreddit(ctx context.Context, r *run, sub string) (produced, abandon bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	if !subNameRegex.MatchString(sub) {
		return false, false, fmt.Errorf("invalid subreddit name %q", sub)
	}

	for _, query := range s.queries {
		if s.postsCapped(r) || s.requestsCapped(r) {
			break
		}
		if err := ctx.Err(); err != nil {
			return produced, false, err
		}

		r.logger.Info("Searching", "sub", sub, "query", query, "rate_remaining", s.tracker.Remaining())
		accepted := s.searchQuery(ctx, r, sub, query)
		if accepted > 0 {
			produced = true
			continue
		}

		r.logger.Info("No posts found for query", "sub", sub, "query", query)
		if s.lowYield(r) {
			return produced, true, nil
		}
	}
	return produced, false, nil
}

// searchQuery returns the number of posts accepted for one query. Every failure
// is recorded and swallowed so the loop can move on.
func (s *Session) searchQuery(ctx context.Context, r *run, sub, query string) (accepted int) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Query failed", "sub", sub, "query", query, "panic", rec)
			r.reject(titleQuery, fmt.Sprintf("Error in r/%s for %s: %v", sub, query, rec))
		}
	}()

	items, err := s.searcher.Search(ctx, sub, query, domain.SearchOptions{
		Sort:  searchSort,
		Time:  searchTime,
		Limit: s.limits.PostsPerQuery,
	})
	if err != nil {
		if domain.IsRateLimited(err) {
			r.logger.Warn("Rate limit hit, pausing", "sub", sub, "query", query,
				"pause", RateLimitPause.String(), "window_resets_at", s.tracker.ResetTime())
			r.reject(titleRateLimit, fmt.Sprintf("Rate limited in r/%s for %s: %v", sub, query, err))
			s.clock.Sleep(ctx, RateLimitPause)
			return 0
		}
		r.logger.Error("Query failed", "sub", sub, "query", query, "err", err)
		r.reject(titleQuery, fmt.Sprintf("Error in r/%s for %s: %v", sub, query, err))
		return 0
	}

	for _, item := range items {
		r.requests++
		if n := s.tracker.Record(); n%10 == 0 {
			r.logger.Info("Rate limit status", "remaining", s.tracker.Remaining())
		}
		if s.postsCapped(r) {
			break
		}

		post, ok := s.admit(r, sub, item)
		if !ok {
			continue
		}
		r.posts = append(r.posts, post)
		r.accepted++
		accepted++
		r.logger.Info("Post passed all filters", "sub", sub, "id", post.ID, "title", post.Title)

		if err := s.clock.Sleep(ctx, AcceptPace); err != nil {
			return accepted
		}
	}
	return accepted
}

// admit runs the filters in order and builds the post when all pass.
func (s *Session) admit(r *run, sub string, item domain.Item) (post domain.Post, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.reject(item.Title, fmt.Sprintf("%s: %v", titleItemFailed, rec))
			ok = false
		}
	}()

	log := r.logger.With("sub", sub, "id", item.ID)
	log.Debug("Processing post", "title", item.Title, "posted", item.CreatedAt)

	if item.CreatedAt.Before(r.cutoff) {
		log.Debug("Filtered out", "reason", ReasonTooOld)
		r.reject(item.Title, ReasonTooOld)
		return domain.Post{}, false
	}

	text := classify.Text(item.Title, item.Body)
	if !classify.IsStudyRelated(text) {
		log.Debug("Filtered out", "reason", ReasonNotStudy)
		r.reject(item.Title, ReasonNotStudy)
		return domain.Post{}, false
	}
	if s.classifier.IsExcluded(text) {
		log.Debug("Filtered out", "reason", ReasonExcluded)
		r.reject(item.Title, ReasonExcluded)
		return domain.Post{}, false
	}

	return buildPost(sub, item, text), true
}

func buildPost(sub string, item domain.Item, text string) domain.Post {
	location := classify.ExtractLocation(text)
	images := []string{}
	if img := classify.ImageURL(item.URL); img != "" {
		images = append(images, img)
	}
	return domain.Post{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Body,
		ImageURLs:   images,
		User: domain.Author{
			ID:           item.AuthorID,
			Username:     item.AuthorName,
			ProfileImage: profileImage,
			Location:     location,
		},
		Category:    category,
		Location:    location,
		Source:      source,
		OriginalURL: permalinkURL + item.Permalink,
		CreatedAt:   item.CreatedAt,
		IsOnline:    classify.IsOnline(text),
		Comments:    []map[string]any{},
		Subreddit:   sub,
	}
}
