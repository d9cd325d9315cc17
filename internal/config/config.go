package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service
type Config struct {
	Reddit  RedditConfig
	Session SessionConfig
	Inputs  InputConfig
	Server  ServerConfig
	Log     LogConfig
}

// RedditConfig selects the collector and carries its secrets
type RedditConfig struct {
	Mode         string // "api", "public", "mock"
	ClientID     string
	ClientSecret string
	UserAgent    string
	Username     string
	Password     string
}

// SessionConfig holds the stopping limits of a collection run
type SessionConfig struct {
	MaxTotalPosts          int
	PostsPerQuery          int
	MinSuccessRate         float64
	SuccessRateFloor       int
	MaxConsecutiveFailures int
	MaxRequestsPerSession  int
	MaxPostAge             time.Duration
	RequestsPerMinute      int
}

// InputConfig points at optional CSV overrides for the search lists
type InputConfig struct {
	SubredditsFile string
	QueriesFile    string
	ExclusionsFile string
}

type ServerConfig struct {
	Port int
}

type LogConfig struct {
	Level slog.Level
}

// DefaultSessionConfig returns the limits the service ships with.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxTotalPosts:          50,
		PostsPerQuery:          10,
		MinSuccessRate:         0.1,
		SuccessRateFloor:       20,
		MaxConsecutiveFailures: 3,
		MaxRequestsPerSession:  200,
		MaxPostAge:             90 * 24 * time.Hour,
		RequestsPerMinute:      60,
	}
}

// Load reads .env (if present) and the environment, falling back to defaults
func Load() (*Config, error) {
	godotenv.Load()

	def := DefaultSessionConfig()
	cfg := &Config{
		Reddit: RedditConfig{
			Mode:         getEnv("COLLECTOR_MODE", "api"),
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			UserAgent:    os.Getenv("REDDIT_USER_AGENT"),
			Username:     os.Getenv("REDDIT_USERNAME"),
			Password:     os.Getenv("REDDIT_PASSWORD"),
		},
		Session: SessionConfig{
			MaxTotalPosts:          getEnvInt("MAX_TOTAL_POSTS", def.MaxTotalPosts),
			PostsPerQuery:          getEnvInt("POSTS_PER_QUERY", def.PostsPerQuery),
			MinSuccessRate:         getEnvFloat("MIN_SUCCESS_RATE", def.MinSuccessRate),
			SuccessRateFloor:       getEnvInt("SUCCESS_RATE_FLOOR", def.SuccessRateFloor),
			MaxConsecutiveFailures: getEnvInt("MAX_CONSECUTIVE_FAILURES", def.MaxConsecutiveFailures),
			MaxRequestsPerSession:  getEnvInt("MAX_REQUESTS_PER_SESSION", def.MaxRequestsPerSession),
			MaxPostAge:             getEnvDuration("MAX_POST_AGE", def.MaxPostAge),
			RequestsPerMinute:      getEnvInt("REQUESTS_PER_MINUTE", def.RequestsPerMinute),
		},
		Inputs: InputConfig{
			SubredditsFile: os.Getenv("SUBREDDITS_FILE"),
			QueriesFile:    os.Getenv("QUERIES_FILE"),
			ExclusionsFile: os.Getenv("EXCLUDE_KEYWORDS_FILE"),
		},
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8000),
		},
		Log: LogConfig{
			Level: parseLevel(getEnv("LOG_LEVEL", "info")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks limits and the port. Reddit secrets are deliberately not checked here.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return c.Session.Validate()
}

func (s SessionConfig) Validate() error {
	positive := map[string]int{
		"MAX_TOTAL_POSTS":          s.MaxTotalPosts,
		"POSTS_PER_QUERY":          s.PostsPerQuery,
		"MAX_CONSECUTIVE_FAILURES": s.MaxConsecutiveFailures,
		"MAX_REQUESTS_PER_SESSION": s.MaxRequestsPerSession,
		"REQUESTS_PER_MINUTE":      s.RequestsPerMinute,
	}
	for k, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", k, v)
		}
	}
	if s.SuccessRateFloor < 0 {
		return fmt.Errorf("SUCCESS_RATE_FLOOR must not be negative, got %d", s.SuccessRateFloor)
	}
	if s.MinSuccessRate < 0 || s.MinSuccessRate > 1 {
		return fmt.Errorf("MIN_SUCCESS_RATE must be within [0,1], got %v", s.MinSuccessRate)
	}
	if s.MaxPostAge <= 0 {
		return fmt.Errorf("MAX_POST_AGE must be positive, got %s", s.MaxPostAge)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
