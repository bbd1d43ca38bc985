package nfl

import (
	"testing"

	"github.com/matryer/is"
)

func TestNewLeague(t *testing.T) {
	is := is.New(t)
	lg, err := NewLeague(DefaultTeams())
	is.NoErr(err)
	is.Equal(lg.NumTeams(), 32)
	for _, conf := range Conferences() {
		is.Equal(len(lg.ConferenceTeams(conf)), 16)
		for _, div := range Divisions() {
			is.Equal(len(lg.Division(conf, div)), 4)
		}
	}
	kc, ok := lg.Index("kc")
	is.True(ok)
	is.Equal(lg.Team(kc).Name, "Kansas City Chiefs")
}

func TestNewLeagueRejectsBadShapes(t *testing.T) {
	is := is.New(t)
	_, err := NewLeague(DefaultTeams()[:31])
	is.True(err != nil)

	teams := DefaultTeams()
	teams[0].ID = teams[1].ID
	_, err = NewLeague(teams)
	is.True(err != nil)

	teams = DefaultTeams()
	teams[0].Division = North // AFC East loses a team
	_, err = NewLeague(teams)
	is.True(err != nil)
}

func TestEffectiveScores(t *testing.T) {
	is := is.New(t)
	h, a := 24, 17
	oh, oa := 3, 30

	g := Game{ID: "g1", HomeTeamID: "kc", AwayTeamID: "buf"}
	_, _, ok := g.EffectiveScores()
	is.True(!ok)
	is.Equal(g.Winner(), NoResult)

	g.IsCompleted = true
	g.HomeScore, g.AwayScore = &h, &a
	home, away, ok := g.EffectiveScores()
	is.True(ok)
	is.Equal(home, 24)
	is.Equal(away, 17)
	is.Equal(g.Winner(), HomeWin)

	// The override wins over the actual score; both stay visible.
	g.IsOverridden = true
	g.OverrideHomeScore, g.OverrideAwayScore = &oh, &oa
	home, away, ok = g.EffectiveScores()
	is.True(ok)
	is.Equal(home, 3)
	is.Equal(away, 30)
	is.Equal(g.Winner(), AwayWin)
	is.Equal(*g.HomeScore, 24)
}

func TestTie(t *testing.T) {
	is := is.New(t)
	h, a := 20, 20
	g := Game{IsCompleted: true, HomeScore: &h, AwayScore: &a}
	is.Equal(g.Winner(), Tie)
}

func TestScheduleCopyIsDeep(t *testing.T) {
	is := is.New(t)
	h, a := 10, 7
	s := &Schedule{Season: 2025, Games: []Game{
		{ID: "g1", IsCompleted: true, HomeScore: &h, AwayScore: &a},
	}}
	c := s.Copy()
	*c.Games[0].HomeScore = 99
	c.Games[0].IsOverridden = true
	is.Equal(*s.Games[0].HomeScore, 10)
	is.True(!s.Games[0].IsOverridden)
}

func TestResolvedOutcomes(t *testing.T) {
	is := is.New(t)
	h, a := 10, 7
	s := &Schedule{Season: 2025, Games: []Game{
		{ID: "g1", IsCompleted: true, HomeScore: &h, AwayScore: &a},
		{ID: "g2"},
	}}
	out := s.ResolvedOutcomes()
	is.Equal(len(out), 2)
	is.Equal(out[0].Winner, HomeWin)
	is.Equal(out[0].HomeScore, 10)
	is.Equal(out[1].Winner, NoResult)
}
