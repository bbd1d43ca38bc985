// Package nfl defines the static league structures: teams, games, and the
// season schedule. A League wraps the 32 teams with a dense 0..31 index so
// that the simulation hot path can work on flat arrays instead of maps.
package nfl

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

type Conference string

const (
	AFC Conference = "AFC"
	NFC Conference = "NFC"
)

type Division string

const (
	East  Division = "East"
	North Division = "North"
	South Division = "South"
	West  Division = "West"
)

// Conferences returns the two conferences in canonical order.
func Conferences() []Conference {
	return []Conference{AFC, NFC}
}

// Divisions returns the four divisions in canonical order.
func Divisions() []Division {
	return []Division{East, North, South, West}
}

const (
	// NumTeams is the league size; the teams partition evenly into
	// 8 divisions of 4.
	NumTeams = 32
	// TeamsPerDivision is the division size.
	TeamsPerDivision = 4
	// RegularSeasonGames is the number of games each team plays.
	RegularSeasonGames = 17
	// RegularSeasonWeeks is the number of scheduled weeks.
	RegularSeasonWeeks = 18
)

// Team is an NFL franchise. IDs are stable lowercase abbreviations
// ("kc", "buf", ...).
type Team struct {
	ID           string     `json:"id"`
	Abbreviation string     `json:"abbreviation"`
	Name         string     `json:"name"`
	DisplayName  string     `json:"display_name"`
	Conference   Conference `json:"conference"`
	Division     Division   `json:"division"`
}

// Game is a single regular-season matchup. HomeScore/AwayScore hold the
// actual result once IsCompleted is set; the override fields hold a
// user-supplied substitute outcome. Both can be present at once; the
// override wins and the conflict stays visible to the user.
type Game struct {
	ID                string `json:"id"`
	Week              int    `json:"week"`
	Season            int    `json:"season"`
	HomeTeamID        string `json:"home_team_id"`
	AwayTeamID        string `json:"away_team_id"`
	IsCompleted       bool   `json:"is_completed"`
	HomeScore         *int   `json:"home_score,omitempty"`
	AwayScore         *int   `json:"away_score,omitempty"`
	IsOverridden      bool   `json:"is_overridden"`
	OverrideHomeScore *int   `json:"override_home_score,omitempty"`
	OverrideAwayScore *int   `json:"override_away_score,omitempty"`
}

// Result is the outcome of a single game from the home team's point of view.
type Result uint8

const (
	NoResult Result = iota
	HomeWin
	AwayWin
	Tie
)

func (r Result) String() string {
	switch r {
	case HomeWin:
		return "home"
	case AwayWin:
		return "away"
	case Tie:
		return "tie"
	}
	return "unresolved"
}

// EffectiveScores returns the scores that count for standings purposes:
// the override when the game is overridden, otherwise the actual result
// when completed. ok is false for an unresolved game.
func (g *Game) EffectiveScores() (home, away int, ok bool) {
	if g.IsOverridden && g.OverrideHomeScore != nil && g.OverrideAwayScore != nil {
		return *g.OverrideHomeScore, *g.OverrideAwayScore, true
	}
	if g.IsCompleted && g.HomeScore != nil && g.AwayScore != nil {
		return *g.HomeScore, *g.AwayScore, true
	}
	return 0, 0, false
}

// Resolved reports whether the game has an effective outcome.
func (g *Game) Resolved() bool {
	_, _, ok := g.EffectiveScores()
	return ok
}

// Winner returns the effective result, or NoResult for an unresolved game.
func (g *Game) Winner() Result {
	home, away, ok := g.EffectiveScores()
	if !ok {
		return NoResult
	}
	switch {
	case home > away:
		return HomeWin
	case away > home:
		return AwayWin
	}
	return Tie
}

// Outcome is a per-trial record of a single game's result. Slices of
// Outcome are index-aligned with Schedule.Games.
type Outcome struct {
	HomeScore int
	AwayScore int
	Winner    Result
}

// Schedule is a season's worth of games.
type Schedule struct {
	Season int    `json:"season"`
	Games  []Game `json:"games"`
}

// Copy returns a deep copy of the schedule. Score pointers are duplicated
// so callers can stamp overrides without touching the original.
func (s *Schedule) Copy() *Schedule {
	out := &Schedule{Season: s.Season, Games: make([]Game, len(s.Games))}
	copy(out.Games, s.Games)
	for i := range out.Games {
		out.Games[i].HomeScore = copyScore(out.Games[i].HomeScore)
		out.Games[i].AwayScore = copyScore(out.Games[i].AwayScore)
		out.Games[i].OverrideHomeScore = copyScore(out.Games[i].OverrideHomeScore)
		out.Games[i].OverrideAwayScore = copyScore(out.Games[i].OverrideAwayScore)
	}
	return out
}

func copyScore(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Week returns the games scheduled for the given week.
func (s *Schedule) Week(week int) []Game {
	return lo.Filter(s.Games, func(g Game, _ int) bool { return g.Week == week })
}

// GameIndex returns the position of the game with the given id.
func (s *Schedule) GameIndex(id string) (int, bool) {
	for i := range s.Games {
		if s.Games[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// ResolvedOutcomes folds the schedule's effective results into an
// index-aligned outcome slice. Unresolved games are marked NoResult.
func (s *Schedule) ResolvedOutcomes() []Outcome {
	out := make([]Outcome, len(s.Games))
	for i := range s.Games {
		home, away, ok := s.Games[i].EffectiveScores()
		if !ok {
			continue
		}
		out[i] = Outcome{HomeScore: home, AwayScore: away, Winner: s.Games[i].Winner()}
	}
	return out
}

// League holds the teams plus the dense index used throughout the
// simulation code.
type League struct {
	teams []Team
	index map[string]int
	// byDivision[conference][division] holds dense team indexes.
	byDivision map[Conference]map[Division][]int
}

// NewLeague validates the team set and builds the dense index. The teams
// must partition evenly into 8 divisions of 4.
func NewLeague(teams []Team) (*League, error) {
	if len(teams) != NumTeams {
		return nil, fmt.Errorf("league needs %d teams, got %d", NumTeams, len(teams))
	}
	lg := &League{
		teams:      make([]Team, len(teams)),
		index:      make(map[string]int, len(teams)),
		byDivision: make(map[Conference]map[Division][]int, 2),
	}
	copy(lg.teams, teams)
	for i, t := range lg.teams {
		if t.ID == "" {
			return nil, errors.New("team with empty id")
		}
		if _, dup := lg.index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate team id %q", t.ID)
		}
		lg.index[t.ID] = i
	}
	for _, conf := range Conferences() {
		lg.byDivision[conf] = make(map[Division][]int, 4)
	}
	grouped := lo.GroupBy(lo.Range(len(lg.teams)), func(i int) Conference {
		return lg.teams[i].Conference
	})
	for _, conf := range Conferences() {
		members := grouped[conf]
		if len(members) != NumTeams/2 {
			return nil, fmt.Errorf("conference %s has %d teams, want %d", conf, len(members), NumTeams/2)
		}
		byDiv := lo.GroupBy(members, func(i int) Division { return lg.teams[i].Division })
		for _, div := range Divisions() {
			if len(byDiv[div]) != TeamsPerDivision {
				return nil, fmt.Errorf("%s %s has %d teams, want %d", conf, div, len(byDiv[div]), TeamsPerDivision)
			}
			lg.byDivision[conf][div] = byDiv[div]
		}
	}
	return lg, nil
}

// NumTeams returns the league size.
func (lg *League) NumTeams() int { return len(lg.teams) }

// Teams returns the team list in dense-index order.
func (lg *League) Teams() []Team { return lg.teams }

// Team returns the team at a dense index.
func (lg *League) Team(i int) Team { return lg.teams[i] }

// Index maps a team id to its dense index.
func (lg *League) Index(id string) (int, bool) {
	i, ok := lg.index[id]
	return i, ok
}

// Division returns the dense indexes of a division's teams.
func (lg *League) Division(conf Conference, div Division) []int {
	return lg.byDivision[conf][div]
}

// ConferenceTeams returns the dense indexes of a conference's 16 teams.
func (lg *League) ConferenceTeams(conf Conference) []int {
	out := make([]int, 0, NumTeams/2)
	for _, div := range Divisions() {
		out = append(out, lg.byDivision[conf][div]...)
	}
	return out
}

// SameDivision reports whether two dense indexes share a division.
func (lg *League) SameDivision(i, j int) bool {
	return lg.teams[i].Conference == lg.teams[j].Conference &&
		lg.teams[i].Division == lg.teams[j].Division
}

// SameConference reports whether two dense indexes share a conference.
func (lg *League) SameConference(i, j int) bool {
	return lg.teams[i].Conference == lg.teams[j].Conference
}
