// Package nfltest provides league and schedule fixtures for tests.
package nfltest

import (
	"fmt"

	"github.com/gridironmc/gridiron/nfl"
)

// League returns the standard 32-team league.
func League() *nfl.League {
	lg, err := nfl.NewLeague(nfl.DefaultTeams())
	if err != nil {
		panic(err)
	}
	return lg
}

// Schedule builds a deterministic 17-week season where every team plays 17
// games and no pairing repeats, using the circle method over the dense team
// order. It is not the real NFL rotation, but it satisfies every structural
// invariant the standings and seeding code relies on. All games start
// unresolved.
func Schedule(lg *nfl.League, season int) *nfl.Schedule {
	n := lg.NumTeams()
	sched := &nfl.Schedule{Season: season}
	// Circle method: fix team 0, rotate the rest one step per week.
	rot := make([]int, n-1)
	for i := range rot {
		rot[i] = i + 1
	}
	gameNum := 0
	for week := 1; week <= nfl.RegularSeasonGames; week++ {
		pair := func(a, b int) {
			gameNum++
			sched.Games = append(sched.Games, nfl.Game{
				ID:         fmt.Sprintf("g%d", gameNum),
				Week:       week,
				Season:     season,
				HomeTeamID: lg.Team(a).ID,
				AwayTeamID: lg.Team(b).ID,
			})
		}
		pair(0, rot[len(rot)-1])
		for i := 0; i < (n/2)-1; i++ {
			pair(rot[i], rot[len(rot)-2-i])
		}
		// rotate
		last := rot[len(rot)-1]
		copy(rot[1:], rot[:len(rot)-1])
		rot[0] = last
	}
	return sched
}

// EnsureGame returns the index of the game between a and b. The rotation
// covers only 17 of the 31 possible rounds, so pairings it lacks are
// materialized as an extra week-18 matchup with a home. Callers that keep a
// schedule-aligned outcome slice must re-check its length afterwards.
func EnsureGame(sched *nfl.Schedule, a, b string) int {
	for i := range sched.Games {
		g := &sched.Games[i]
		if (g.HomeTeamID == a && g.AwayTeamID == b) || (g.HomeTeamID == b && g.AwayTeamID == a) {
			return i
		}
	}
	sched.Games = append(sched.Games, nfl.Game{
		ID:         fmt.Sprintf("x-%s-%s", a, b),
		Week:       nfl.RegularSeasonWeeks,
		Season:     sched.Season,
		HomeTeamID: a,
		AwayTeamID: b,
	})
	return len(sched.Games) - 1
}

// CompleteAllWins marks every game of the given team as completed with a
// 24-10 win for that team. Other games are left untouched.
func CompleteAllWins(sched *nfl.Schedule, teamID string) {
	winner, loser := 24, 10
	for i := range sched.Games {
		g := &sched.Games[i]
		switch teamID {
		case g.HomeTeamID:
			g.IsCompleted = true
			h, a := winner, loser
			g.HomeScore, g.AwayScore = &h, &a
		case g.AwayTeamID:
			g.IsCompleted = true
			h, a := loser, winner
			g.HomeScore, g.AwayScore = &h, &a
		}
	}
}

// Complete marks one game as completed with the given score.
func Complete(sched *nfl.Schedule, gameID string, home, away int) {
	i, ok := sched.GameIndex(gameID)
	if !ok {
		panic("unknown game " + gameID)
	}
	h, a := home, away
	sched.Games[i].IsCompleted = true
	sched.Games[i].HomeScore = &h
	sched.Games[i].AwayScore = &a
}
