package collector

import (
	"fmt"

	"github.com/qepting91/studybuddy-scraper/internal/config"
	"github.com/qepting91/studybuddy-scraper/internal/domain"
)

// NewCollector selects the correct implementation based on the MODE.
// Credentials are passed through unchecked; missing ones surface as call failures.
func NewCollector(cfg config.RedditConfig) (domain.Searcher, error) {
	switch cfg.Mode {
	case "api":
		return NewAPIClient(cfg.ClientID, cfg.ClientSecret, cfg.Username, cfg.Password, cfg.UserAgent)
	case "public":
		return NewPublicClient(cfg.UserAgent)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown COLLECTOR_MODE: %s (use 'api', 'public', or 'mock')", cfg.Mode)
	}
}
