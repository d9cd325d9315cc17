// Package retry wraps a remote call with exponential backoff on platform
// throttling. Any other failure is returned on the first attempt.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/qepting91/studybuddy-scraper/internal/clock"
	"github.com/qepting91/studybuddy-scraper/internal/domain"
)

// RateLimitExceeded is returned once every attempt was throttled.
type RateLimitExceeded struct {
	Status   int
	Detail   string
	Attempts int
	Err      error
}

func (e *RateLimitExceeded) Error() string {
	return fmt.Sprintf("%d %s after %d attempts: %v", e.Status, e.Detail, e.Attempts, e.Err)
}

func (e *RateLimitExceeded) Unwrap() error { return e.Err }

// Policy: attempt n (0-based) that gets throttled waits BaseDelay * 2^n before the next one.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

type Wrapper struct {
	policy Policy
	clock  clock.Clock
	logger *slog.Logger
}

func New(p Policy, c clock.Clock, logger *slog.Logger) *Wrapper {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	return &Wrapper{policy: p, clock: c, logger: logger.With("component", "retry")}
}

func (w *Wrapper) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.policy.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = w.policy.BaseDelay << w.policy.MaxAttempts
	b.MaxElapsedTime = 0
	b.Clock = w.clock
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(w.policy.MaxAttempts-1)), ctx)
}

// Do runs call, retrying only while it reports domain.ErrTooManyRequests.
func Do[T any](ctx context.Context, w *Wrapper, call func(context.Context) (T, error)) (T, error) {
	var (
		out      T
		attempts int
	)
	op := func() error {
		attempts++
		v, err := call(ctx)
		if err == nil {
			out = v
			return nil
		}
		if domain.IsRateLimited(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, d time.Duration) {
		w.logger.Warn("Rate limit hit, backing off", "attempt", attempts, "delay", d.String(), "err", err)
	}

	err := backoff.RetryNotifyWithTimer(op, w.backOff(ctx), notify, newSleepTimer(ctx, w.clock))
	if err == nil {
		return out, nil
	}

	var zero T
	if domain.IsRateLimited(err) {
		w.logger.Error("Rate limit retries exhausted", "attempts", attempts)
		return zero, &RateLimitExceeded{
			Status:   http.StatusTooManyRequests,
			Detail:   "Reddit rate limit exceeded",
			Attempts: attempts,
			Err:      err,
		}
	}
	return zero, err
}

// sleepTimer drives backoff waits through the injected clock.
type sleepTimer struct {
	ctx   context.Context
	clock clock.Clock
	ch    chan time.Time
}

func newSleepTimer(ctx context.Context, c clock.Clock) *sleepTimer {
	return &sleepTimer{ctx: ctx, clock: c, ch: make(chan time.Time, 1)}
}

func (t *sleepTimer) Start(d time.Duration) {
	if err := t.clock.Sleep(t.ctx, d); err != nil {
		return
	}
	t.ch <- t.clock.Now()
}

func (t *sleepTimer) Stop() {}

func (t *sleepTimer) C() <-chan time.Time { return t.ch }
