// Package shell is the interactive console: standings, schedules, overrides,
// and synchronous simulations from a readline loop.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/gridironmc/gridiron/montecarlo"
	"github.com/gridironmc/gridiron/nfl"
	"github.com/gridironmc/gridiron/overrides"
	"github.com/gridironmc/gridiron/playoffs"
	"github.com/gridironmc/gridiron/standings"
	"github.com/gridironmc/gridiron/stats"
	"github.com/gridironmc/gridiron/tiebreak"
)

var errExit = errors.New("exit")

type ShellController struct {
	l *readline.Instance

	lg    *nfl.League
	sched *nfl.Schedule
	ovr   *overrides.Store

	lastResult *montecarlo.Result
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(lg *nfl.League, sched *nfl.Schedule, ovr *overrides.Store) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mgridiron>\033[0m ",
		HistoryFile:     "/tmp/gridiron_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	return &ShellController{l: l, lg: lg, sched: sched, ovr: ovr}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		err = sc.dispatch(line)
		if errors.Is(err, errExit) {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			showMessage("error: "+err.Error(), sc.l.Stderr())
		}
	}
	log.Debug().Msg("exiting readline loop")
}

// Execute runs a single command line non-interactively.
func (sc *ShellController) Execute(line string) {
	if err := sc.dispatch(strings.TrimSpace(line)); err != nil && !errors.Is(err, errExit) {
		showMessage("error: "+err.Error(), sc.l.Stderr())
	}
}

func (sc *ShellController) Cleanup() {}

func (sc *ShellController) dispatch(line string) error {
	fields, err := shellquote.Split(line)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "standings":
		return sc.showStandings()
	case "schedule":
		return sc.showSchedule(args)
	case "sim":
		return sc.runSim(args)
	case "seeds":
		return sc.showSeeds()
	case "override":
		return sc.setOverride(args)
	case "hist":
		return sc.showHistogram(args)
	case "help":
		sc.usage()
		return nil
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
}

func (sc *ShellController) usage() {
	showMessage(strings.TrimSpace(`
standings                      current standings from completed + overridden games
schedule [week]                list games, optionally for one week
sim <n> [seed]                 run n Monte Carlo trials
seeds                          playoff seeds from current results
override <game> <home> <away>  force a game's outcome
override clear <game>          remove an override
hist <team>                    win-total histogram from the last sim
exit`), sc.l.Stderr())
}

// effective returns the schedule with current overrides stamped on.
func (sc *ShellController) effective() *nfl.Schedule {
	return sc.ovr.Apply(sc.sched)
}

func (sc *ShellController) showStandings() error {
	eff := sc.effective()
	tbl := standings.Compute(sc.lg, eff, eff.ResolvedOutcomes())
	var ss strings.Builder
	fmt.Fprintf(&ss, "%-26s %3s %3s %3s  %6s  %5s\n", "TEAM", "W", "L", "T", "PCT", "NET")
	for _, st := range tbl.Standings() {
		fmt.Fprintf(&ss, "%-26s %3d %3d %3d  %.3f  %+5d\n",
			st.TeamName, st.Wins, st.Losses, st.Ties, st.WinPercentage, st.NetPoints)
	}
	showMessage(ss.String(), sc.l.Stderr())
	return nil
}

func (sc *ShellController) showSchedule(args []string) error {
	eff := sc.effective()
	games := eff.Games
	if len(args) > 0 {
		week, err := strconv.Atoi(args[0])
		if err != nil || week < 1 || week > nfl.RegularSeasonWeeks {
			return fmt.Errorf("invalid week %q", args[0])
		}
		games = eff.Week(week)
	}
	var ss strings.Builder
	for i := range games {
		g := &games[i]
		line := fmt.Sprintf("%-8s wk%-2d  %s at %s", g.ID, g.Week, g.AwayTeamID, g.HomeTeamID)
		if home, away, ok := g.EffectiveScores(); ok {
			line += fmt.Sprintf("  %d-%d", away, home)
			if g.IsOverridden {
				line += " (override)"
			}
		}
		ss.WriteString(line + "\n")
	}
	showMessage(ss.String(), sc.l.Stderr())
	return nil
}

func (sc *ShellController) showSeeds() error {
	eff := sc.effective()
	out := eff.ResolvedOutcomes()
	tbl := standings.Compute(sc.lg, eff, out)
	// Seeding from partial results is a snapshot; a fixed stream keeps the
	// coin-toss rule deterministic between invocations.
	rng := rand.New(rand.NewPCG(0, 0))
	br := tiebreak.New(sc.lg, eff, out, tbl, rng)
	var ss strings.Builder
	for _, conf := range nfl.Conferences() {
		seeds := playoffs.SeedConference(br, tbl, sc.lg, conf)
		fmt.Fprintf(&ss, "%s\n", conf)
		for pos, i := range seeds {
			team := sc.lg.Team(i)
			fmt.Fprintf(&ss, "  %d. %-26s (%.3f)\n", pos+1, team.Name, tbl.WinPct(i))
		}
	}
	showMessage(ss.String(), sc.l.Stderr())
	return nil
}

func (sc *ShellController) setOverride(args []string) error {
	if len(args) == 2 && args[0] == "clear" {
		if err := sc.ovr.Clear(args[1]); err != nil {
			return err
		}
		showMessage("override cleared", sc.l.Stderr())
		return nil
	}
	if len(args) != 3 {
		return errors.New("usage: override <game> <home> <away> | override clear <game>")
	}
	if _, ok := sc.sched.GameIndex(args[0]); !ok {
		return fmt.Errorf("unknown game %q", args[0])
	}
	home, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	away, err := strconv.Atoi(args[2])
	if err != nil {
		return err
	}
	if home < 0 || away < 0 {
		return errors.New("scores must be non-negative")
	}
	if err := sc.ovr.Set(args[0], home, away); err != nil {
		return err
	}
	showMessage("override set", sc.l.Stderr())
	return nil
}

func (sc *ShellController) runSim(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: sim <n> [seed]")
	}
	trials, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	seed := montecarlo.RandomSeed()
	if len(args) > 1 {
		seed, err = strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return err
		}
	}

	sim := montecarlo.New(sc.lg, sc.effective())
	ctx := log.Logger.WithContext(context.Background())
	res, err := sim.Simulate(ctx, trials, seed, func(completed, total uint64) {
		pct := completed * 100 / total
		if pct%10 == 0 {
			fmt.Fprintf(sc.l.Stderr(), "... %d%%\n", pct)
		}
	})
	if err != nil {
		return err
	}
	sc.lastResult = res
	showMessage(sc.formatResult(res), sc.l.Stderr())
	return nil
}

func (sc *ShellController) formatResult(res *montecarlo.Result) string {
	type row struct {
		name  string
		stats montecarlo.TeamStats
	}
	rows := make([]row, 0, len(res.TeamStats))
	for i := 0; i < sc.lg.NumTeams(); i++ {
		team := sc.lg.Team(i)
		rows = append(rows, row{team.Name, res.TeamStats[team.ID]})
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].stats.PlayoffProbability > rows[b].stats.PlayoffProbability
	})
	// 99% confidence margin on the mean win total.
	z := stats.ZVal(99)
	n := math.Sqrt(float64(res.NumSimulations))
	var ss strings.Builder
	fmt.Fprintf(&ss, "%d trials (seed %d) in %.2fs; intervals are 99%% confidence\n",
		res.NumSimulations, res.RandomSeed, res.ExecutionTime)
	fmt.Fprintf(&ss, "%-26s %10s %8s %8s %8s\n", "TEAM", "WINS", "PLAYOFF", "DIV", "SEED1")
	for _, r := range rows {
		fmt.Fprintf(&ss, "%-26s %5.1f±%.2f %8.3f %8.3f %8.3f\n",
			r.name, r.stats.AverageWins, z*r.stats.WinsStdev/n,
			r.stats.PlayoffProbability, r.stats.DivisionWinProbability,
			r.stats.FirstSeedProbability)
	}
	return ss.String()
}
