package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/qepting91/studybuddy-scraper/internal/domain"
	"golang.org/x/time/rate"
)

const publicBaseURL = "https://www.reddit.com"

type PublicClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
}

type redditJSONResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				ID             string  `json:"id"`
				Title          string  `json:"title"`
				Selftext       string  `json:"selftext"`
				Subreddit      string  `json:"subreddit"`
				Author         string  `json:"author"`
				AuthorFullname string  `json:"author_fullname"`
				URL            string  `json:"url"`
				Permalink      string  `json:"permalink"`
				CreatedUTC     float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func NewPublicClient(userAgent string) (*PublicClient, error) {
	return &PublicClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Public JSON Limit: 1 req / 2 seconds (Stricter)
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		userAgent: userAgent,
		baseURL:   publicBaseURL,
	}, nil
}

func (pc *PublicClient) Search(ctx context.Context, sub, query string, opts domain.SearchOptions) ([]domain.Item, error) {
	if err := pc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("restrict_sr", "1")
	q.Set("sort", opts.Sort)
	q.Set("t", opts.Time)
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("raw_json", "1")
	u := fmt.Sprintf("%s/r/%s/search.json?%s", pc.baseURL, url.PathEscape(sub), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", pc.userAgent)

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("reddit public search r/%s: %w", sub, domain.ErrTooManyRequests)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit public access status: %d", resp.StatusCode)
	}

	var rResp redditJSONResponse
	if err := json.NewDecoder(resp.Body).Decode(&rResp); err != nil {
		return nil, fmt.Errorf("decode search listing: %w", err)
	}

	items := make([]domain.Item, 0, len(rResp.Data.Children))
	for _, child := range rResp.Data.Children {
		d := child.Data
		items = append(items, normalizeAuthor(domain.Item{
			ID:         d.ID,
			Title:      d.Title,
			Body:       d.Selftext,
			URL:        d.URL,
			Permalink:  d.Permalink,
			AuthorID:   d.AuthorFullname,
			AuthorName: d.Author,
			Subreddit:  d.Subreddit,
			CreatedAt:  time.Unix(int64(d.CreatedUTC), 0).UTC(),
		}))
	}
	return items, nil
}
