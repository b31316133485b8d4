package usecase

import (
	"sync"
	"time"

	"talant-web/internal/domain/listing"
)

// Snapshot is the full record set of one source at one fetch. A failed fetch
// yields an empty snapshot carrying Err.
type Snapshot struct {
	Records  []listing.Record
	LoadedAt time.Time
	Err      error
}

func (s Snapshot) Loaded() bool {
	return !s.LoadedAt.IsZero()
}

// Store holds the current snapshot of a source. Snapshots are replaced
// wholesale and never mutated after Replace.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) Replace(snap Snapshot) {
	if snap.Records == nil {
		snap.Records = []listing.Record{}
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
