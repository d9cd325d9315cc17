package storage

import (
	"sync"
	"time"

	"github.com/qepting91/studybuddy-scraper/internal/domain"
)

// Snapshot is the most recent collection result, kept in memory only.
type Snapshot struct {
	Result     domain.Result
	FinishedAt time.Time
}

// SnapshotStore implements the Monitor Pattern for thread safety: the HTTP
// handlers write and the dashboard reads concurrently.
type SnapshotStore struct {
	mu   sync.RWMutex
	last *Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (s *SnapshotStore) Save(res domain.Result, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &Snapshot{Result: res, FinishedAt: at}
}

// Latest returns the last saved snapshot, or false if no run has finished yet.
func (s *SnapshotStore) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Snapshot{}, false
	}
	return *s.last, true
}
