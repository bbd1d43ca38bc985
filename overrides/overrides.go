// Package overrides holds user-supplied game outcomes, keyed by game id.
// The store is read-mostly: simulations take a stamped schedule copy, writes
// only happen on explicit user action and persist atomically.
package overrides

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gridironmc/gridiron/nfl"
)

// FileName is the persisted store, under the cache directory.
const FileName = "user_overrides.json"

// Entry is one overridden outcome.
type Entry struct {
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	SetAt     time.Time `json:"set_at"`
}

// Store maps game ids to override entries.
type Store struct {
	path   string
	logger zerolog.Logger

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewStore builds a store persisted under dir.
func NewStore(dir string, logger zerolog.Logger) *Store {
	return &Store{
		path:    filepath.Join(dir, FileName),
		logger:  logger,
		entries: make(map[string]Entry),
	}
}

// Load reads the persisted store. A missing file is an empty store.
func (s *Store) Load() error {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	entries := make(map[string]Entry)
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	s.logger.Info().Int("overrides", len(entries)).Msg("overrides-loaded")
	return nil
}

// Set records an override and persists the store.
func (s *Store) Set(gameID string, home, away int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[gameID] = Entry{HomeScore: home, AwayScore: away, SetAt: time.Now().UTC()}
	return s.saveLocked()
}

// Clear removes an override and persists the store. Clearing an absent entry
// is a no-op.
func (s *Store) Clear(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[gameID]; !ok {
		return nil
	}
	delete(s.entries, gameID)
	return s.saveLocked()
}

// Get returns the entry for a game id.
func (s *Store) Get(gameID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[gameID]
	return e, ok
}

// Len returns the number of overridden games.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Apply stamps the overrides onto a copy of the schedule. The original is
// untouched; a game's actual score, when present, stays visible alongside
// the override.
func (s *Store) Apply(sched *nfl.Schedule) *nfl.Schedule {
	out := sched.Copy()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range out.Games {
		e, ok := s.entries[out.Games[i].ID]
		if !ok {
			continue
		}
		home, away := e.HomeScore, e.AwayScore
		out.Games[i].IsOverridden = true
		out.Games[i].OverrideHomeScore = &home
		out.Games[i].OverrideAwayScore = &away
	}
	return out
}

// saveLocked writes the store to a temp file and renames it into place.
func (s *Store) saveLocked() error {
	b, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".overrides-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
