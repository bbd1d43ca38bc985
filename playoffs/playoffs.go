// Package playoffs seeds the postseason field from a standings table: four
// division winners ordered 1-4, then three wild cards, per conference.
package playoffs

import (
	"sort"

	"github.com/gridironmc/gridiron/nfl"
	"github.com/gridironmc/gridiron/standings"
	"github.com/gridironmc/gridiron/tiebreak"
)

// SeedsPerConference is the size of each conference's playoff field.
const SeedsPerConference = 7

// DivisionWinners is the number of seeds reserved for division winners.
const DivisionWinners = 4

// Seeding holds one conference's playoff field, dense team indexes with
// seed 1 first.
type Seeding [SeedsPerConference]int

// DivisionWinner returns the winner of one division. Ties at the top of the
// division are resolved with the division procedure.
func DivisionWinner(br *tiebreak.Breaker, tbl *standings.Table, lg *nfl.League, conf nfl.Conference, div nfl.Division) int {
	groups := groupByPct(tbl, lg.Division(conf, div))
	top := groups[0]
	if len(top) == 1 {
		return top[0]
	}
	return br.Best(top, tiebreak.Division)
}

// SeedConference seeds one conference's playoff field.
func SeedConference(br *tiebreak.Breaker, tbl *standings.Table, lg *nfl.League, conf nfl.Conference) Seeding {
	var seeds Seeding

	winners := make([]int, 0, DivisionWinners)
	isWinner := make(map[int]bool, DivisionWinners)
	for _, div := range nfl.Divisions() {
		w := DivisionWinner(br, tbl, lg, conf, div)
		winners = append(winners, w)
		isWinner[w] = true
	}

	// Seeds 1-4: division winners ordered by record; equal records are
	// broken with the division procedure (simple head-to-head applies even
	// though the clubs come from different divisions).
	ordered := make([]int, 0, DivisionWinners)
	for _, g := range groupByPct(tbl, winners) {
		if len(g) == 1 {
			ordered = append(ordered, g[0])
			continue
		}
		ordered = append(ordered, br.Rank(g, tiebreak.Division)...)
	}
	copy(seeds[:DivisionWinners], ordered)

	// Seeds 5-7: best remaining clubs under the wild-card procedure, one
	// at a time. Regrouping after each pick keeps the per-division
	// elimination correct as clubs leave the pool.
	remaining := make([]int, 0, nfl.NumTeams/2-DivisionWinners)
	for _, i := range lg.ConferenceTeams(conf) {
		if !isWinner[i] {
			remaining = append(remaining, i)
		}
	}
	for seed := DivisionWinners; seed < SeedsPerConference; seed++ {
		groups := groupByPct(tbl, remaining)
		top := groups[0]
		var pick int
		if len(top) == 1 {
			pick = top[0]
		} else {
			pick = br.Best(top, tiebreak.WildCard)
		}
		seeds[seed] = pick
		remaining = remove(remaining, pick)
	}
	return seeds
}

// Seed seeds both conferences.
func Seed(br *tiebreak.Breaker, tbl *standings.Table, lg *nfl.League) map[nfl.Conference]Seeding {
	out := make(map[nfl.Conference]Seeding, 2)
	for _, conf := range nfl.Conferences() {
		out[conf] = SeedConference(br, tbl, lg, conf)
	}
	return out
}

// groupByPct partitions a team set into groups of equal overall win
// percentage, best group first. Tiebreakers only ever run within a group.
func groupByPct(tbl *standings.Table, set []int) [][]int {
	s := make([]int, len(set))
	copy(s, set)
	sort.SliceStable(s, func(a, b int) bool {
		return tbl.WinPct(s[a]) > tbl.WinPct(s[b])
	})
	var groups [][]int
	for start := 0; start < len(s); {
		end := start
		for end+1 < len(s) && tbl.WinPct(s[end+1]) == tbl.WinPct(s[start]) {
			end++
		}
		groups = append(groups, s[start:end+1])
		start = end + 1
	}
	return groups
}

func remove(s []int, v int) []int {
	out := s[:0]
	for _, i := range s {
		if i != v {
			out = append(out, i)
		}
	}
	return out
}
