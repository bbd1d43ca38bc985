// Package tiebreak implements the NFL tiebreaking procedure: eleven ordered
// rules applied to a set of tied clubs, with multi-team reduction and a
// deterministic coin toss at the bottom. A single rule evaluator serves both
// entry points; the division and wild-card procedures differ only in the
// head-to-head semantics (simple record vs clean sweep) and in the
// pre-reduction that keeps one club per division in wild-card ties.
//
// Net touchdowns is deliberately not part of the rule list; the coin toss
// is rule 11.
package tiebreak

import (
	"math/rand/v2"
	"slices"

	"github.com/gridironmc/gridiron/nfl"
	"github.com/gridironmc/gridiron/standings"
)

// Procedure selects the head-to-head semantics of rule 1.
type Procedure int

const (
	// Division compares the simple head-to-head record among the tied
	// clubs. Also used to rank division winners against each other.
	Division Procedure = iota
	// WildCard requires a clean sweep for head-to-head to apply, and
	// first eliminates all but the best club of each division.
	WildCard
)

// commonGamesMinimum is the number of games against shared opponents each
// tied club must have before the common-games rules apply.
const commonGamesMinimum = 4

// Breaker ranks tied teams for one outcome set. It is built once per trial;
// the rng is the trial's random stream, so coin tosses are reproducible
// under a fixed seed.
type Breaker struct {
	lg    *nfl.League
	sched *nfl.Schedule
	out   []nfl.Outcome
	tbl   *standings.Table
	rng   *rand.Rand

	confCombined   map[nfl.Conference][]float64
	leagueCombined []float64
}

// New builds a Breaker over one trial's outcomes.
func New(lg *nfl.League, sched *nfl.Schedule, out []nfl.Outcome, tbl *standings.Table, rng *rand.Rand) *Breaker {
	return &Breaker{
		lg:           lg,
		sched:        sched,
		out:          out,
		tbl:          tbl,
		rng:          rng,
		confCombined: make(map[nfl.Conference][]float64, 2),
	}
}

// Best returns the highest-ranked club of a tied set.
func (b *Breaker) Best(set []int, proc Procedure) int {
	if len(set) == 1 {
		return set[0]
	}
	s := slices.Clone(set)
	for {
		if proc == WildCard {
			s = b.reduceByDivision(s)
			if len(s) == 1 {
				return s[0]
			}
		}
		winners, separated := b.applyRules(s, proc)
		if !separated {
			// Rules 1-10 exhausted: coin toss.
			return s[b.rng.IntN(len(s))]
		}
		if len(winners) == 1 {
			return winners[0]
		}
		// A strict subset survived; restart the rule list with it.
		s = winners
	}
}

// Rank returns the full ordering of a tied set, best first. Each position
// re-runs the procedure over the remaining clubs, so in wild-card mode a
// division's second club becomes eligible once its first is ranked.
func (b *Breaker) Rank(set []int, proc Procedure) []int {
	remaining := slices.Clone(set)
	order := make([]int, 0, len(set))
	for len(remaining) > 0 {
		best := b.Best(remaining, proc)
		order = append(order, best)
		remaining = slices.DeleteFunc(remaining, func(i int) bool { return i == best })
	}
	return order
}

// applyRules walks the rule list once. It returns the surviving subset and
// whether any rule separated the clubs.
func (b *Breaker) applyRules(s []int, proc Procedure) ([]int, bool) {
	for _, rule := range ruleList {
		scores, applies := rule(b, s, proc)
		if !applies {
			continue
		}
		w := topSet(s, scores)
		if len(w) < len(s) {
			return w, true
		}
	}
	return s, false
}

// reduceByDivision keeps only the best club of each division represented in
// the set, using the division procedure. Order of survivors is preserved.
func (b *Breaker) reduceByDivision(s []int) []int {
	type divKey struct {
		conf nfl.Conference
		div  nfl.Division
	}
	groups := make(map[divKey][]int)
	var keys []divKey
	for _, i := range s {
		k := divKey{b.lg.Team(i).Conference, b.lg.Team(i).Division}
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}
	survivors := make(map[int]bool, len(keys))
	for _, k := range keys {
		g := groups[k]
		if len(g) == 1 {
			survivors[g[0]] = true
			continue
		}
		survivors[b.Best(g, Division)] = true
	}
	out := s[:0:0]
	for _, i := range s {
		if survivors[i] {
			out = append(out, i)
		}
	}
	return out
}

// A ruleFn scores every club in the set (aligned with set order, higher is
// better). applies is false when the rule cannot be evaluated for this set,
// e.g. fewer than four common games.
type ruleFn func(b *Breaker, set []int, proc Procedure) (scores []float64, applies bool)

var ruleList = []ruleFn{
	ruleHeadToHead,
	ruleDivisionRecord,
	ruleCommonGamesRecord,
	ruleConferenceRecord,
	ruleStrengthOfVictory,
	ruleStrengthOfSchedule,
	ruleCombinedRankConference,
	ruleCombinedRankLeague,
	ruleNetPointsCommon,
	ruleNetPointsAll,
}

// Rule 1. Division: win percentage in games played among the tied clubs.
// Wild card: a club that defeated every other club in the set (at least one
// win against each, no losses or ties) wins outright; otherwise the rule
// does not separate.
func ruleHeadToHead(b *Breaker, set []int, proc Procedure) ([]float64, bool) {
	scores := make([]float64, len(set))
	if proc == WildCard {
		for si, i := range set {
			if b.sweeps(i, set) {
				scores[si] = 1
			}
		}
		return scores, true
	}
	for si, i := range set {
		var rec standings.Record
		for _, j := range set {
			if i == j {
				continue
			}
			h := b.tbl.H2H[i][j]
			rec.Wins += h.Wins
			rec.Losses += h.Losses
			rec.Ties += h.Ties
		}
		scores[si] = rec.Pct()
	}
	return scores, true
}

func (b *Breaker) sweeps(i int, set []int) bool {
	for _, j := range set {
		if i == j {
			continue
		}
		h := b.tbl.H2H[i][j]
		if h.Wins == 0 || h.Losses > 0 || h.Ties > 0 {
			return false
		}
	}
	return true
}

// Rule 2.
func ruleDivisionRecord(b *Breaker, set []int, _ Procedure) ([]float64, bool) {
	scores := make([]float64, len(set))
	for si, i := range set {
		scores[si] = b.tbl.Div[i].Pct()
	}
	return scores, true
}

// Rule 3. Record in games against opponents common to every club in the
// set. Skipped unless each club has at least four such games.
func ruleCommonGamesRecord(b *Breaker, set []int, _ Procedure) ([]float64, bool) {
	mask := b.commonOpponents(set)
	scores := make([]float64, len(set))
	for si, i := range set {
		rec, _ := b.commonGames(i, mask)
		if rec.Played() < commonGamesMinimum {
			return nil, false
		}
		scores[si] = rec.Pct()
	}
	return scores, true
}

// Rule 4.
func ruleConferenceRecord(b *Breaker, set []int, _ Procedure) ([]float64, bool) {
	scores := make([]float64, len(set))
	for si, i := range set {
		scores[si] = b.tbl.Conf[i].Pct()
	}
	return scores, true
}

// Rule 5.
func ruleStrengthOfVictory(b *Breaker, set []int, _ Procedure) ([]float64, bool) {
	scores := make([]float64, len(set))
	for si, i := range set {
		scores[si] = b.tbl.SOV[i]
	}
	return scores, true
}

// Rule 6.
func ruleStrengthOfSchedule(b *Breaker, set []int, _ Procedure) ([]float64, bool) {
	scores := make([]float64, len(set))
	for si, i := range set {
		scores[si] = b.tbl.SOS[i]
	}
	return scores, true
}

// Rule 7. Combined ranking (points scored + points allowed) within the
// conference; lower combined rank is better, so the score is negated.
func ruleCombinedRankConference(b *Breaker, set []int, _ Procedure) ([]float64, bool) {
	scores := make([]float64, len(set))
	for si, i := range set {
		combined := b.conferenceCombined(b.lg.Team(i).Conference)
		scores[si] = -combined[i]
	}
	return scores, true
}

// Rule 8. Combined ranking across the league.
func ruleCombinedRankLeague(b *Breaker, set []int, _ Procedure) ([]float64, bool) {
	combined := b.leagueCombinedRanks()
	scores := make([]float64, len(set))
	for si, i := range set {
		scores[si] = -combined[i]
	}
	return scores, true
}

// Rule 9. Net points in common games, under the same four-game minimum as
// rule 3.
func ruleNetPointsCommon(b *Breaker, set []int, _ Procedure) ([]float64, bool) {
	mask := b.commonOpponents(set)
	scores := make([]float64, len(set))
	for si, i := range set {
		rec, net := b.commonGames(i, mask)
		if rec.Played() < commonGamesMinimum {
			return nil, false
		}
		scores[si] = float64(net)
	}
	return scores, true
}

// Rule 10.
func ruleNetPointsAll(b *Breaker, set []int, _ Procedure) ([]float64, bool) {
	scores := make([]float64, len(set))
	for si, i := range set {
		scores[si] = float64(b.tbl.NetPoints(i))
	}
	return scores, true
}

// commonOpponents returns the bitset of clubs every member of the set has
// played. Set members never appear (no club is its own opponent).
func (b *Breaker) commonOpponents(set []int) uint64 {
	mask := ^uint64(0)
	for _, i := range set {
		mask &= b.tbl.Opponents[i]
	}
	return mask
}

// commonGames accumulates team i's record and net points in resolved games
// against the opponents in mask.
func (b *Breaker) commonGames(i int, mask uint64) (rec standings.Record, net int) {
	teamID := b.lg.Team(i).ID
	for gi := range b.sched.Games {
		res := b.out[gi].Winner
		if res == nfl.NoResult {
			continue
		}
		g := &b.sched.Games[gi]
		var opp string
		var home bool
		switch teamID {
		case g.HomeTeamID:
			opp, home = g.AwayTeamID, true
		case g.AwayTeamID:
			opp, home = g.HomeTeamID, false
		default:
			continue
		}
		oi, ok := b.lg.Index(opp)
		if !ok || mask&(1<<uint(oi)) == 0 {
			continue
		}
		rec.Add(res, home)
		if home {
			net += b.out[gi].HomeScore - b.out[gi].AwayScore
		} else {
			net += b.out[gi].AwayScore - b.out[gi].HomeScore
		}
	}
	return rec, net
}

// conferenceCombined lazily computes combined point rankings within one
// conference, keyed by dense team index.
func (b *Breaker) conferenceCombined(conf nfl.Conference) []float64 {
	if c, ok := b.confCombined[conf]; ok {
		return c
	}
	c := b.combinedRanks(b.lg.ConferenceTeams(conf))
	b.confCombined[conf] = c
	return c
}

func (b *Breaker) leagueCombinedRanks() []float64 {
	if b.leagueCombined == nil {
		all := make([]int, b.lg.NumTeams())
		for i := range all {
			all[i] = i
		}
		b.leagueCombined = b.combinedRanks(all)
	}
	return b.leagueCombined
}

// combinedRanks computes rank-in-points-scored plus rank-in-points-allowed
// over the given scope. Equal values share the average of the ordinal
// positions they span. The returned slice is indexed by dense team index;
// entries outside the scope are zero.
func (b *Breaker) combinedRanks(scope []int) []float64 {
	pf := make([]float64, len(scope))
	pa := make([]float64, len(scope))
	for si, i := range scope {
		pf[si] = float64(b.tbl.PointsFor[i])
		pa[si] = float64(b.tbl.PointsAgainst[i])
	}
	pfRank := rankWithTies(pf, true)  // more points scored is better
	paRank := rankWithTies(pa, false) // fewer points allowed is better
	out := make([]float64, b.lg.NumTeams())
	for si, i := range scope {
		out[i] = pfRank[si] + paRank[si]
	}
	return out
}

// rankWithTies assigns ordinal ranks 1..n (1 is best); tied values receive
// the mean of the positions they occupy.
func rankWithTies(values []float64, higherBetter bool) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, c int) int {
		switch {
		case values[a] == values[c]:
			return 0
		case (values[a] > values[c]) == higherBetter:
			return -1
		}
		return 1
	})
	ranks := make([]float64, len(values))
	for start := 0; start < len(idx); {
		end := start
		for end+1 < len(idx) && values[idx[end+1]] == values[idx[start]] {
			end++
		}
		// positions are 1-based; mean of start+1 .. end+1
		mean := float64(start+end+2) / 2
		for k := start; k <= end; k++ {
			ranks[idx[k]] = mean
		}
		start = end + 1
	}
	return ranks
}

// topSet returns the clubs tied for the best score.
func topSet(set []int, scores []float64) []int {
	best := scores[0]
	for _, s := range scores[1:] {
		if s > best {
			best = s
		}
	}
	var out []int
	for si, i := range set {
		if scores[si] == best {
			out = append(out, i)
		}
	}
	return out
}
