// Package ratelimit keeps per-minute request accounting. It never blocks a
// call; pacing is done by the collectors' token buckets.
package ratelimit

import (
	"sync"
	"time"

	"github.com/qepting91/studybuddy-scraper/internal/clock"
)

const window = time.Minute

// Tracker counts requests inside a fixed one-minute window. The mutex only
// lets the HTTP status route read it while a run is in progress.
type Tracker struct {
	mu          sync.Mutex
	clock       clock.Clock
	budget      int
	count       int
	windowStart time.Time
}

func NewTracker(c clock.Clock, perMinute int) *Tracker {
	return &Tracker{
		clock:       c,
		budget:      perMinute,
		windowStart: c.Now(),
	}
}

// Record counts one request and returns the count inside the current window.
func (t *Tracker) Record() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	if now.Sub(t.windowStart) >= window {
		t.count = 0
		t.windowStart = now
	}
	t.count++
	return t.count
}

// Remaining is the unused budget of the current window.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clock.Now().Sub(t.windowStart) >= window {
		return t.budget
	}
	return max(0, t.budget-t.count)
}

// ResetTime is when the current window closes.
func (t *Tracker) ResetTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.windowStart.Add(window)
}

// Count is the number of requests recorded in the current window.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Budget is the configured requests-per-minute allowance.
func (t *Tracker) Budget() int { return t.budget }
