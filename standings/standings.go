// Package standings folds a set of game outcomes into per-team records.
// Everything here is derived state: a Table is recomputed from scratch for
// every simulation trial and never cached across trials.
package standings

import (
	"sort"

	"github.com/gridironmc/gridiron/nfl"
)

// Record is a win/loss/tie triple.
type Record struct {
	Wins   int
	Losses int
	Ties   int
}

// Played returns the number of games in the record.
func (r Record) Played() int { return r.Wins + r.Losses + r.Ties }

// Pct returns the win percentage with ties counted as half a win.
// An empty record is an even 0.5.
func (r Record) Pct() float64 {
	n := r.Played()
	if n == 0 {
		return 0.5
	}
	return (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(n)
}

// Add folds one game result into the record.
func (r *Record) Add(res nfl.Result, home bool) {
	switch {
	case res == nfl.Tie:
		r.Ties++
	case (res == nfl.HomeWin) == home:
		r.Wins++
	default:
		r.Losses++
	}
}

// Table holds the per-team season records for one outcome set, indexed by
// the league's dense team index.
type Table struct {
	lg *nfl.League

	Overall []Record
	Div     []Record
	Conf    []Record

	PointsFor     []int
	PointsAgainst []int

	// H2H[i][j] is team i's record against team j.
	H2H [][]Record

	// Opponents[i] is a bitset of the dense indexes team i has played
	// (resolved games only).
	Opponents []uint64

	SOV []float64 // strength of victory
	SOS []float64 // strength of schedule
}

// Compute builds a Table from an index-aligned outcome slice. Games whose
// outcome is NoResult contribute nothing.
func Compute(lg *nfl.League, sched *nfl.Schedule, out []nfl.Outcome) *Table {
	n := lg.NumTeams()
	t := &Table{
		lg:            lg,
		Overall:       make([]Record, n),
		Div:           make([]Record, n),
		Conf:          make([]Record, n),
		PointsFor:     make([]int, n),
		PointsAgainst: make([]int, n),
		H2H:           make([][]Record, n),
		Opponents:     make([]uint64, n),
		SOV:           make([]float64, n),
		SOS:           make([]float64, n),
	}
	h2hBacking := make([]Record, n*n)
	for i := 0; i < n; i++ {
		t.H2H[i] = h2hBacking[i*n : (i+1)*n]
	}

	// opponentsPlayed and opponentsBeaten count per-meeting, so a team
	// beaten twice weighs twice in strength of victory.
	oppPlayed := make([][]int, n)
	oppBeaten := make([][]int, n)

	for gi := range sched.Games {
		res := out[gi].Winner
		if res == nfl.NoResult {
			continue
		}
		g := &sched.Games[gi]
		hi, ok := lg.Index(g.HomeTeamID)
		if !ok {
			continue
		}
		ai, ok := lg.Index(g.AwayTeamID)
		if !ok {
			continue
		}

		t.Overall[hi].Add(res, true)
		t.Overall[ai].Add(res, false)
		if lg.SameDivision(hi, ai) {
			t.Div[hi].Add(res, true)
			t.Div[ai].Add(res, false)
		}
		if lg.SameConference(hi, ai) {
			t.Conf[hi].Add(res, true)
			t.Conf[ai].Add(res, false)
		}

		t.PointsFor[hi] += out[gi].HomeScore
		t.PointsAgainst[hi] += out[gi].AwayScore
		t.PointsFor[ai] += out[gi].AwayScore
		t.PointsAgainst[ai] += out[gi].HomeScore

		t.H2H[hi][ai].Add(res, true)
		t.H2H[ai][hi].Add(res, false)
		t.Opponents[hi] |= 1 << uint(ai)
		t.Opponents[ai] |= 1 << uint(hi)

		oppPlayed[hi] = append(oppPlayed[hi], ai)
		oppPlayed[ai] = append(oppPlayed[ai], hi)
		if res == nfl.HomeWin {
			oppBeaten[hi] = append(oppBeaten[hi], ai)
		} else if res == nfl.AwayWin {
			oppBeaten[ai] = append(oppBeaten[ai], hi)
		}
	}

	for i := 0; i < n; i++ {
		t.SOV[i] = meanWinPct(t, oppBeaten[i])
		t.SOS[i] = meanWinPct(t, oppPlayed[i])
	}
	return t
}

// meanWinPct averages opponents' win percentages, counting an opponent once
// per meeting. Zero when there are no qualifying opponents.
func meanWinPct(t *Table, opps []int) float64 {
	if len(opps) == 0 {
		return 0
	}
	var sum float64
	for _, o := range opps {
		sum += t.WinPct(o)
	}
	return sum / float64(len(opps))
}

// WinPct returns a team's overall win percentage (0.5 with no games played).
func (t *Table) WinPct(i int) float64 { return t.Overall[i].Pct() }

// NetPoints returns a team's overall point differential.
func (t *Table) NetPoints(i int) int { return t.PointsFor[i] - t.PointsAgainst[i] }

// Standing is the wire shape of one team's record.
type Standing struct {
	TeamID            string  `json:"team_id"`
	TeamName          string  `json:"team_name"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	Ties              int     `json:"ties"`
	WinPercentage     float64 `json:"win_percentage"`
	DivisionWins      int     `json:"division_wins"`
	DivisionLosses    int     `json:"division_losses"`
	DivisionTies      int     `json:"division_ties"`
	ConferenceWins    int     `json:"conference_wins"`
	ConferenceLosses  int     `json:"conference_losses"`
	ConferenceTies    int     `json:"conference_ties"`
	PointsFor         int     `json:"points_for"`
	PointsAgainst     int     `json:"points_against"`
	NetPoints         int     `json:"net_points"`
	StrengthOfVictory float64 `json:"strength_of_victory"`
	StrengthOfSched   float64 `json:"strength_of_schedule"`
}

// Standings returns the table as wire records, best record first.
func (t *Table) Standings() []Standing {
	out := make([]Standing, t.lg.NumTeams())
	for i := range out {
		team := t.lg.Team(i)
		out[i] = Standing{
			TeamID:            team.ID,
			TeamName:          team.Name,
			Wins:              t.Overall[i].Wins,
			Losses:            t.Overall[i].Losses,
			Ties:              t.Overall[i].Ties,
			WinPercentage:     t.WinPct(i),
			DivisionWins:      t.Div[i].Wins,
			DivisionLosses:    t.Div[i].Losses,
			DivisionTies:      t.Div[i].Ties,
			ConferenceWins:    t.Conf[i].Wins,
			ConferenceLosses:  t.Conf[i].Losses,
			ConferenceTies:    t.Conf[i].Ties,
			PointsFor:         t.PointsFor[i],
			PointsAgainst:     t.PointsAgainst[i],
			NetPoints:         t.NetPoints(i),
			StrengthOfVictory: t.SOV[i],
			StrengthOfSched:   t.SOS[i],
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].WinPercentage > out[b].WinPercentage
	})
	return out
}
