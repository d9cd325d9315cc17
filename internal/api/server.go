package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qepting91/studybuddy-scraper/internal/clock"
	"github.com/qepting91/studybuddy-scraper/internal/dashboard"
	"github.com/qepting91/studybuddy-scraper/internal/domain"
	"github.com/qepting91/studybuddy-scraper/internal/ratelimit"
	"github.com/qepting91/studybuddy-scraper/internal/retry"
	"github.com/qepting91/studybuddy-scraper/internal/storage"
)

// Collector runs one collection pass.
type Collector interface {
	Collect(ctx context.Context) (domain.Result, error)
}

// Server exposes the collection run over HTTP.
type Server struct {
	collector Collector
	retry     *retry.Wrapper
	tracker   *ratelimit.Tracker
	store     *storage.SnapshotStore
	clock     clock.Clock
	logger    *slog.Logger

	// runs are sequential; the session and tracker assume a single caller
	runMu sync.Mutex
	http  *http.Server
}

func NewServer(
	port int,
	collector Collector,
	wrapper *retry.Wrapper,
	tracker *ratelimit.Tracker,
	store *storage.SnapshotStore,
	clk clock.Clock,
	logger *slog.Logger,
) *Server {
	s := &Server{
		collector: collector,
		retry:     wrapper,
		tracker:   tracker,
		store:     store,
		clock:     clk,
		logger:    logger.With("component", "api"),
	}
	s.http = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     s.Routes(),
		ReadTimeout: 15 * time.Second,
		// a full run can take several minutes with pacing and rate-limit pauses
		WriteTimeout: 30 * time.Minute,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Logger)

	mux.Get("/posts", s.handlePosts)
	mux.Get("/dashboard", dashboard.Handler(s.store))

	mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", s.handleHealth)
		r.Get("/rate", s.handleRate)
	})

	return mux
}

func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handlePosts runs a full collection pass and returns the result payload.
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	log := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	log.Info("Collection requested")

	// A started run always finishes, even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	res, err := retry.Do(ctx, s.retry, s.collector.Collect)
	if err != nil {
		var rle *retry.RateLimitExceeded
		switch {
		case errors.As(err, &rle):
			log.Warn("Collection rate limited", "attempts", rle.Attempts)
			writeError(w, rle.Status, ErrCodeRateLimited, rle.Detail)
		default:
			log.Error("Collection failed", "err", err)
			writeError(w, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	s.store.Save(res, s.clock.Now())
	log.Info("Collection served", "posts", len(res.Posts), "rejections", len(res.Rejections))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.clock.Now().Format(time.RFC3339),
	})
}

type rateStatus struct {
	Budget    int       `json:"budget"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rateStatus{
		Budget:    s.tracker.Budget(),
		Used:      s.tracker.Count(),
		Remaining: s.tracker.Remaining(),
		ResetsAt:  s.tracker.ResetTime(),
	})
}
