package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qepting91/studybuddy-scraper/internal/api"
	"github.com/qepting91/studybuddy-scraper/internal/classify"
	"github.com/qepting91/studybuddy-scraper/internal/clock"
	"github.com/qepting91/studybuddy-scraper/internal/collector"
	"github.com/qepting91/studybuddy-scraper/internal/config"
	"github.com/qepting91/studybuddy-scraper/internal/ingest"
	"github.com/qepting91/studybuddy-scraper/internal/ratelimit"
	"github.com/qepting91/studybuddy-scraper/internal/retry"
	"github.com/qepting91/studybuddy-scraper/internal/session"
	"github.com/qepting91/studybuddy-scraper/internal/storage"
)

func main() {
	// 1. Setup
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.Level}))
	slog.SetDefault(logger)

	// 2. Load Inputs (optional CSV overrides)
	subreddits := loadList(logger, "subreddits", cfg.Inputs.SubredditsFile, ingest.LoadSubreddits)
	queries := loadList(logger, "queries", cfg.Inputs.QueriesFile, ingest.LoadQueries)
	exclusions := loadList(logger, "exclusions", cfg.Inputs.ExclusionsFile, ingest.LoadKeywords)

	// 3. Initialize Client (Using Factory)
	searcher, err := collector.NewCollector(cfg.Reddit)
	if err != nil {
		logger.Error("Failed to initialize collector", "error", err)
		os.Exit(1)
	}
	logger.Info("Collector initialized", "mode", cfg.Reddit.Mode)

	// 4. Wire the session. The tracker lives for the whole process.
	clk := clock.Real()
	tracker := ratelimit.NewTracker(clk, cfg.Session.RequestsPerMinute)
	sess := session.New(
		searcher,
		classify.New(exclusions),
		tracker,
		clk,
		cfg.Session,
		logger,
		session.WithSubreddits(subreddits),
		session.WithQueries(queries),
	)
	wrapper := retry.New(retry.DefaultPolicy(), clk, logger)
	server := api.NewServer(cfg.Server.Port, sess, wrapper, tracker, storage.NewSnapshotStore(), clk, logger)

	// 5. Run HTTP server
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("HTTP server failed", "err", err)
			os.Exit(1)
		}
	}()

	// 6. Graceful Shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "err", err)
	}
	logger.Info("Shutdown complete")
}

// loadList returns nil (use built-in defaults) when path is empty or unreadable.
func loadList(logger *slog.Logger, name, path string, load func(string) ([]string, error)) []string {
	if path == "" {
		return nil
	}
	list, err := load(path)
	if err != nil {
		logger.Warn("Falling back to built-in list", "list", name, "path", path, "err", err)
		return nil
	}
	logger.Info("Loaded list override", "list", name, "entries", len(list))
	return list
}
