package collector

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/qepting91/studybuddy-scraper/internal/domain"
)

var mockBodies = []string{
	"Looking for a study partner in East London for exams",
	"online study group for accountability, zoom welcome",
	"Anyone revising at the Senate House library this weekend?",
	"French language exchange partner wanted",
	"Flatmate needed near campus, room available",
	"Lost my cat near the canal",
}

// MockClient implements domain.Searcher but returns fake data
type MockClient struct {
	now func() time.Time
}

func NewMockClient() *MockClient {
	return &MockClient{now: time.Now}
}

func (mc *MockClient) Search(ctx context.Context, sub, query string, opts domain.SearchOptions) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []domain.Item
	for i := 0; i < opts.Limit; i++ {
		body := mockBodies[rand.Intn(len(mockBodies))]
		id := fmt.Sprintf("mock_%s_%d", sub, rand.Intn(1000))
		items = append(items, domain.Item{
			ID:         id,
			Title:      fmt.Sprintf("[%s] %s #%d", sub, query, i),
			Body:       body,
			URL:        fmt.Sprintf("https://reddit.com/r/%s/comments/%s/", sub, id),
			Permalink:  fmt.Sprintf("/r/%s/comments/%s/", sub, id),
			AuthorID:   "t2_simulated",
			AuthorName: "simulated_user",
			Subreddit:  sub,
			CreatedAt:  mc.now().Add(-time.Duration(rand.Intn(120*24)) * time.Hour).UTC(),
		})
	}
	return items, nil
}
