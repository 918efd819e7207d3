package config

import (
	"sync/atomic"

	guard "github.com/apollosolutions/graphguard/internal/guard"
)

// Store publishes configuration snapshots to concurrent readers. Each
// generation is one immutable guard.Snapshot swapped in atomically:
// a reader that captured a snapshot keeps it for the whole request,
// and a failed reload leaves the last good generation in place.
type Store struct {
	current atomic.Pointer[guard.Snapshot]
}

// NewStore creates a store serving the given initial snapshot.
func NewStore(snap *guard.Snapshot) *Store {
	s := &Store{}
	s.current.Store(snap)
	return s
}

// Current returns the active snapshot.
func (s *Store) Current() *guard.Snapshot { return s.current.Load() }

// Reload validates cfg, builds its snapshot and publishes it. On any
// error the active snapshot is left untouched and keeps serving.
func (s *Store) Reload(cfg *Config, baseDir string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	snap, err := BuildSnapshot(cfg, baseDir)
	if err != nil {
		return err
	}
	s.current.Store(snap)
	return nil
}
