package tle

import (
	"sync/atomic"
	"time"

	"iss-aprs-tracker/internal/domain/model"
)

// Store publishes the current orbital state to readers. Snapshots are
// immutable and replaced wholesale by atomic pointer swap, so a consumer
// never observes a partial update; a failed refresh simply leaves the
// previous snapshot in place.
type Store struct {
	state atomic.Pointer[model.OrbitalState]
}

func NewStore() *Store {
	return &Store{}
}

// Get returns the current snapshot, or nil before the first successful load.
func (s *Store) Get() *model.OrbitalState {
	return s.state.Load()
}

// Set atomically replaces the current snapshot.
func (s *Store) Set(st *model.OrbitalState) {
	s.state.Store(st)
}

// EpochAge returns the element age since epoch, or -1 if nothing is loaded.
func (s *Store) EpochAge(now time.Time) time.Duration {
	st := s.state.Load()
	if st == nil {
		return -1
	}
	return st.Age(now)
}
