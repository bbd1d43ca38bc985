// Package cache reads and writes the local data snapshots: schedule,
// results, and team metadata, each a JSON file under the cache directory.
// An external collaborator refreshes the snapshots; this package never
// talks to the network.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gridironmc/gridiron/nfl"
)

// ErrNotCached is returned when a snapshot file does not exist.
var ErrNotCached = errors.New("snapshot not cached")

// Store is a handle on the cache directory.
type Store struct {
	dir    string
	logger zerolog.Logger
}

// NewStore creates the cache directory if needed.
func NewStore(dir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the cache directory path.
func (s *Store) Dir() string { return s.dir }

type scheduleFile struct {
	Season    int        `json:"season"`
	CachedAt  time.Time  `json:"cached_at"`
	GameCount int        `json:"game_count"`
	Games     []nfl.Game `json:"games"`
}

type resultsFile struct {
	CachedAt  time.Time  `json:"cached_at"`
	GameCount int        `json:"game_count"`
	Games     []nfl.Game `json:"games"`
}

type teamsFile struct {
	CachedAt  time.Time  `json:"cached_at"`
	TeamCount int        `json:"team_count"`
	Teams     []nfl.Team `json:"teams"`
}

// LoadTeams reads teams.json. A missing file falls back to the built-in
// 32-team league.
func (s *Store) LoadTeams() ([]nfl.Team, error) {
	var f teamsFile
	err := s.read("teams.json", &f)
	if errors.Is(err, ErrNotCached) {
		s.logger.Info().Msg("no teams snapshot, using built-in league")
		return nfl.DefaultTeams(), nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("teams", len(f.Teams)).Msg("teams-loaded")
	return f.Teams, nil
}

// SaveTeams writes teams.json.
func (s *Store) SaveTeams(teams []nfl.Team) error {
	return s.write("teams.json", teamsFile{
		CachedAt:  time.Now().UTC(),
		TeamCount: len(teams),
		Teams:     teams,
	})
}

// LoadSchedule reads schedule_<season>.json.
func (s *Store) LoadSchedule(season int) (*nfl.Schedule, error) {
	var f scheduleFile
	if err := s.read(scheduleName(season), &f); err != nil {
		return nil, err
	}
	s.logger.Info().Int("season", season).Int("games", len(f.Games)).Msg("schedule-loaded")
	return &nfl.Schedule{Season: season, Games: f.Games}, nil
}

// SaveSchedule writes schedule_<season>.json.
func (s *Store) SaveSchedule(sched *nfl.Schedule) error {
	return s.write(scheduleName(sched.Season), scheduleFile{
		Season:    sched.Season,
		CachedAt:  time.Now().UTC(),
		GameCount: len(sched.Games),
		Games:     sched.Games,
	})
}

// LoadResults reads results_current.json.
func (s *Store) LoadResults() ([]nfl.Game, error) {
	var f resultsFile
	if err := s.read("results_current.json", &f); err != nil {
		return nil, err
	}
	s.logger.Info().Int("results", len(f.Games)).Msg("results-loaded")
	return f.Games, nil
}

// SaveResults writes results_current.json.
func (s *Store) SaveResults(games []nfl.Game) error {
	return s.write("results_current.json", resultsFile{
		CachedAt:  time.Now().UTC(),
		GameCount: len(games),
		Games:     games,
	})
}

// ApplyResults stamps completed results onto the schedule in place and
// returns the number of games updated. Overrides live in their own store;
// a fresh actual score never removes one, the conflict stays visible.
func (s *Store) ApplyResults(sched *nfl.Schedule, results []nfl.Game) int {
	applied := 0
	for _, r := range results {
		if !r.IsCompleted || r.HomeScore == nil || r.AwayScore == nil {
			continue
		}
		i, ok := sched.GameIndex(r.ID)
		if !ok {
			s.logger.Warn().Str("gameID", r.ID).Msg("result for unknown game")
			continue
		}
		g := &sched.Games[i]
		g.IsCompleted = true
		g.HomeScore = copyScore(r.HomeScore)
		g.AwayScore = copyScore(r.AwayScore)
		applied++
	}
	s.logger.Info().Int("applied", applied).Msg("results-applied")
	return applied
}

func scheduleName(season int) string {
	return fmt.Sprintf("schedule_%d.json", season)
}

func (s *Store) read(name string, v any) error {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, ErrNotCached)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// write is atomic: temp file then rename, so readers never see a torn
// snapshot.
func (s *Store) write(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
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
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}

func copyScore(p *int) *int {
	v := *p
	return &v
}
