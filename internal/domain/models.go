package domain

import (
	"context"
	"time"
)

// Item is a single search hit as returned by the content platform
type Item struct {
	ID         string
	Title      string
	Body       string
	URL        string
	Permalink  string
	AuthorID   string
	AuthorName string
	Subreddit  string
	CreatedAt  time.Time
}

// SearchOptions mirrors the listing parameters of the platform's search endpoint
type SearchOptions struct {
	Sort  string
	Time  string
	Limit int
}

// Searcher defines the interface for querying a community
type Searcher interface {
	Search(ctx context.Context, subreddit, query string, opts SearchOptions) ([]Item, error)
}

// Author is the user descriptor attached to every post
type Author struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
	Location     string `json:"location"`
	Bio          string `json:"bio"`
}

// Post is a candidate that passed every filter
type Post struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ImageURLs   []string         `json:"image_urls"`
	User        Author           `json:"user"`
	Category    string           `json:"category"`
	Location    string           `json:"location"`
	Source      string           `json:"source"`
	OriginalURL string           `json:"original_url"`
	CreatedAt   time.Time        `json:"created_at"`
	IsPrivate   bool             `json:"is_private"`
	IsPinned    bool             `json:"is_pinned"`
	IsOnline    bool             `json:"is_online"`
	Comments    []map[string]any `json:"comments"`

	// Subreddit is kept for the dashboard only.
	Subreddit string `json:"-"`
}

// Rejection explains why an item (or a whole query) produced nothing
type Rejection struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// Result is the payload returned by a collection run
type Result struct {
	Posts         []Post      `json:"success_posts"`
	Rejections    []Rejection `json:"filtered_debug_info"`
	StatusMessage string      `json:"status_message"`
	IsComplete    bool        `json:"is_complete"`
}
