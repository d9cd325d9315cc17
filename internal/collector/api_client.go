package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/qepting91/studybuddy-scraper/internal/domain"
	"golang.org/x/time/rate"
)

type APIClient struct {
	client  *reddit.Client
	limiter *rate.Limiter
}

func NewAPIClient(id, secret, user, pass, userAgent string) (*APIClient, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: user, Password: pass}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}

	// API Rate Limit: ~60 reqs/min (safe buffer)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &APIClient{client: client, limiter: limiter}, nil
}

func (ac *APIClient) Search(ctx context.Context, sub, query string, opts domain.SearchOptions) ([]domain.Item, error) {
	if err := ac.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	posts, _, err := ac.client.Subreddit.SearchPosts(ctx, query, sub, &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: opts.Limit},
			Time:        opts.Time,
		},
		Sort: opts.Sort,
	})
	if err != nil {
		if isThrottled(err) {
			return nil, fmt.Errorf("authenticated api search r/%s: %w: %v", sub, domain.ErrTooManyRequests, err)
		}
		return nil, fmt.Errorf("authenticated api error: %w", err)
	}

	result := make([]domain.Item, 0, len(posts))
	for _, p := range posts {
		item := domain.Item{
			ID:         p.ID,
			Title:      p.Title,
			Body:       p.Body,
			URL:        p.URL,
			Permalink:  p.Permalink,
			AuthorID:   p.AuthorID,
			AuthorName: p.Author,
			Subreddit:  p.SubredditName,
		}
		if p.Created != nil {
			item.CreatedAt = p.Created.Time.UTC()
		}
		result = append(result, normalizeAuthor(item))
	}
	return result, nil
}

func isThrottled(err error) bool {
	var rle *reddit.RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	var er *reddit.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return er.Response.StatusCode == http.StatusTooManyRequests
	}
	return false
}
