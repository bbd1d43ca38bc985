// Package montecarlo runs the season simulation: every unresolved game is
// decided by a fair coin flip with Poisson-drawn scores, the resulting
// standings are seeded, and per-team playoff counters accumulate across
// trials.
//
// Trials are embarrassingly parallel. Each worker owns an RNG substream
// seeded from seed XOR worker index and a private counter block; the blocks
// are summed in worker order on completion, so a fixed seed reproduces the
// result exactly regardless of thread timing.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
	"lukechampine.com/frand"

	"github.com/gridironmc/gridiron/nfl"
	"github.com/gridironmc/gridiron/playoffs"
	"github.com/gridironmc/gridiron/standings"
	"github.com/gridironmc/gridiron/stats"
	"github.com/gridironmc/gridiron/tiebreak"
)

const (
	// MaxTrials caps a single simulation request.
	MaxTrials = 1_000_000
	// ScoreLambda is the Poisson mean for simulated game scores.
	ScoreLambda = 22.5
	// trialsPerThread sizes the worker pool: one thread per thousand
	// trials, capped at the available cores.
	trialsPerThread = 1000
)

// ErrTrialsOutOfRange is returned when the trial count is outside
// [1, MaxTrials].
var ErrTrialsOutOfRange = fmt.Errorf("num_simulations must be between 1 and %d", MaxTrials)

// ProgressFunc is called roughly every 1% of trials. It may be called
// concurrently from several workers; completed counts are not guaranteed to
// arrive in order.
type ProgressFunc func(completed, total uint64)

// RandomSeed draws a seed from a nondeterministic source, for requests that
// do not pin one.
func RandomSeed() uint64 {
	return frand.Uint64n(1 << 62)
}

// TeamStats is one team's share of a simulation result.
type TeamStats struct {
	AverageWins               float64            `json:"average_wins"`
	WinsStdev                 float64            `json:"wins_stdev"`
	PlayoffProbability        float64            `json:"playoff_probability"`
	DivisionWinProbability    float64            `json:"division_win_probability"`
	FirstSeedProbability      float64            `json:"first_seed_probability"`
	MissedPlayoffsProbability float64            `json:"missed_playoffs_probability"`
	SeedProbabilities         map[string]float64 `json:"seed_probabilities"`
	// WinDistribution[w] counts the trials in which the team won exactly
	// w games.
	WinDistribution []uint64       `json:"win_distribution"`
	WinPercentiles  map[string]int `json:"win_percentiles"`
}

// Result is the aggregate of one simulation run.
type Result struct {
	NumSimulations int                  `json:"num_simulations"`
	RandomSeed     uint64               `json:"random_seed"`
	ExecutionTime  float64              `json:"execution_time"`
	TeamStats      map[string]TeamStats `json:"team_stats"`
}

// counters is one worker's private tally block.
type counters struct {
	seedCount   [nfl.NumTeams][playoffs.SeedsPerConference]uint64
	divisionWin [nfl.NumTeams]uint64
	missed      [nfl.NumTeams]uint64
	winDist     [nfl.NumTeams][nfl.RegularSeasonGames + 1]uint64
	winStats    [nfl.NumTeams]stats.Statistic
}

func (c *counters) merge(o *counters) {
	for i := 0; i < nfl.NumTeams; i++ {
		for s := 0; s < playoffs.SeedsPerConference; s++ {
			c.seedCount[i][s] += o.seedCount[i][s]
		}
		c.divisionWin[i] += o.divisionWin[i]
		c.missed[i] += o.missed[i]
		for w := 0; w <= nfl.RegularSeasonGames; w++ {
			c.winDist[i][w] += o.winDist[i][w]
		}
		c.winStats[i].Combine(&o.winStats[i])
	}
}

// Simulator runs Monte Carlo trials over one schedule snapshot. The snapshot
// is treated as immutable for the simulator's lifetime.
type Simulator struct {
	lg         *nfl.League
	sched      *nfl.Schedule
	base       []nfl.Outcome
	unresolved []int
	threads    int
}

// New prepares a simulator. Completed and overridden games are folded into a
// fixed base outcome set; only the remaining games are redrawn per trial.
func New(lg *nfl.League, sched *nfl.Schedule) *Simulator {
	s := &Simulator{
		lg:    lg,
		sched: sched,
		base:  sched.ResolvedOutcomes(),
	}
	for i := range s.base {
		if s.base[i].Winner == nfl.NoResult {
			s.unresolved = append(s.unresolved, i)
		}
	}
	return s
}

// SetThreads overrides the automatic worker count. Zero restores the
// default.
func (s *Simulator) SetThreads(n int) {
	s.threads = n
}

func (s *Simulator) threadCount(trials int) int {
	if s.threads > 0 {
		return s.threads
	}
	n := trials / trialsPerThread
	if n > runtime.NumCPU() {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Simulate runs the given number of trials and aggregates the playoff
// counters. A fixed seed yields an identical Result on every invocation.
// Cancellation via ctx returns the context's error; no partial result is
// surfaced.
func (s *Simulator) Simulate(ctx context.Context, trials int, seed uint64, progress ProgressFunc) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	if trials < 1 || trials > MaxTrials {
		return nil, ErrTrialsOutOfRange
	}

	threads := s.threadCount(trials)
	interval := uint64(trials / 100)
	if interval == 0 {
		interval = 1
	}
	logger.Info().Int("trials", trials).Int("threads", threads).
		Uint64("seed", seed).Int("unresolvedGames", len(s.unresolved)).
		Msg("sim-started")

	tstart := time.Now()
	var completed atomic.Uint64

	perWorker := make([]*counters, threads)
	chunk := trials / threads
	rem := trials % threads

	g, ctx := errgroup.WithContext(ctx)
	for t := 0; t < threads; t++ {
		n := chunk
		if t < rem {
			n++
		}
		c := &counters{}
		perWorker[t] = c
		worker := t
		g.Go(func() error {
			return s.simWorker(ctx, c, n, seed, worker, interval, uint64(trials), &completed, progress)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Info().Err(err).Uint64("completed", completed.Load()).Msg("sim-aborted")
		return nil, err
	}

	total := perWorker[0]
	for _, c := range perWorker[1:] {
		total.merge(c)
	}
	elapsed := time.Since(tstart)
	logger.Info().Dur("elapsed", elapsed).
		Float64("trialsPerSec", float64(trials)/elapsed.Seconds()).
		Msg("sim-ended")

	return s.buildResult(total, trials, seed, elapsed), nil
}

// simWorker runs one worker's share of the trials. The outcome buffer starts
// as a copy of the fixed base; only unresolved slots are rewritten, so
// completed games never need resetting between trials.
func (s *Simulator) simWorker(ctx context.Context, c *counters, n int, seed uint64, worker int,
	interval, total uint64, completed *atomic.Uint64, progress ProgressFunc) error {

	src := rand.NewPCG(seed^uint64(worker), 0x9e3779b97f4a7c15)
	rng := rand.New(src)
	poisson := distuv.Poisson{Lambda: ScoreLambda, Src: src}

	out := make([]nfl.Outcome, len(s.base))
	copy(out, s.base)

	for trial := 0; trial < n; trial++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, gi := range s.unresolved {
			out[gi] = drawOutcome(rng, poisson)
		}

		// The coin-toss stream restarts from the base seed every trial,
		// so identical standings always toss identically. A fully
		// resolved season therefore seeds the same way in every trial.
		tossRng := rand.New(rand.NewPCG(seed, 0xda942042e4dd58b5))
		tbl := standings.Compute(s.lg, s.sched, out)
		br := tiebreak.New(s.lg, s.sched, out, tbl, tossRng)
		for _, conf := range nfl.Conferences() {
			seeds := playoffs.SeedConference(br, tbl, s.lg, conf)
			seeded := uint64(0)
			for pos, i := range seeds {
				c.seedCount[i][pos]++
				seeded |= 1 << uint(i)
			}
			for pos := 0; pos < playoffs.DivisionWinners; pos++ {
				c.divisionWin[seeds[pos]]++
			}
			for _, i := range s.lg.ConferenceTeams(conf) {
				if seeded&(1<<uint(i)) == 0 {
					c.missed[i]++
				}
			}
		}
		for i := 0; i < nfl.NumTeams; i++ {
			wins := tbl.Overall[i].Wins
			c.winDist[i][wins]++
			c.winStats[i].Push(float64(wins))
		}

		done := completed.Add(1)
		if done%interval == 0 && progress != nil {
			progress(done, total)
		}
	}
	return nil
}

// drawOutcome decides a game: fair coin for the winner, then Poisson score
// pairs redrawn until the winner's score strictly exceeds the loser's.
// Simulated games never tie.
func drawOutcome(rng *rand.Rand, poisson distuv.Poisson) nfl.Outcome {
	homeWins := rng.Uint64()&1 == 0
	var winScore, loseScore int
	for {
		winScore = int(poisson.Rand())
		loseScore = int(poisson.Rand())
		if winScore > loseScore {
			break
		}
	}
	if homeWins {
		return nfl.Outcome{HomeScore: winScore, AwayScore: loseScore, Winner: nfl.HomeWin}
	}
	return nfl.Outcome{HomeScore: loseScore, AwayScore: winScore, Winner: nfl.AwayWin}
}

func (s *Simulator) buildResult(c *counters, trials int, seed uint64, elapsed time.Duration) *Result {
	n := float64(trials)
	res := &Result{
		NumSimulations: trials,
		RandomSeed:     seed,
		ExecutionTime:  elapsed.Seconds(),
		TeamStats:      make(map[string]TeamStats, nfl.NumTeams),
	}
	for i := 0; i < nfl.NumTeams; i++ {
		seedProbs := make(map[string]float64, playoffs.SeedsPerConference)
		var playoffCount uint64
		for sd := 0; sd < playoffs.SeedsPerConference; sd++ {
			playoffCount += c.seedCount[i][sd]
			seedProbs[fmt.Sprintf("%d", sd+1)] = float64(c.seedCount[i][sd]) / n
		}
		dist := make([]uint64, nfl.RegularSeasonGames+1)
		copy(dist, c.winDist[i][:])
		res.TeamStats[s.lg.Team(i).ID] = TeamStats{
			AverageWins:               c.winStats[i].Mean(),
			WinsStdev:                 c.winStats[i].Stdev(),
			PlayoffProbability:        float64(playoffCount) / n,
			DivisionWinProbability:    float64(c.divisionWin[i]) / n,
			FirstSeedProbability:      float64(c.seedCount[i][0]) / n,
			MissedPlayoffsProbability: float64(c.missed[i]) / n,
			SeedProbabilities:         seedProbs,
			WinDistribution:           dist,
			WinPercentiles:            percentiles(dist, uint64(trials)),
		}
	}
	return res
}

// percentiles reads the 10/25/50/75/90th percentile win totals off the
// cumulative distribution.
func percentiles(dist []uint64, trials uint64) map[string]int {
	marks := []int{10, 25, 50, 75, 90}
	out := make(map[string]int, len(marks))
	for _, p := range marks {
		threshold := uint64(p) * trials // compare cum*100 >= p*trials
		var cum uint64
		val := len(dist) - 1
		for w, count := range dist {
			cum += count
			if cum*100 >= threshold {
				val = w
				break
			}
		}
		out[fmt.Sprintf("p%d", p)] = val
	}
	return out
}
