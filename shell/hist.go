package shell

import (
	"errors"
	"fmt"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/gridironmc/gridiron/nfl"
)

// histMaxPoints caps the expanded sample count fed to the plotter; the
// distribution shape survives scaling down.
const histMaxPoints = 2000

func (sc *ShellController) showHistogram(args []string) error {
	if sc.lastResult == nil {
		return errors.New("run a sim first")
	}
	if len(args) != 1 {
		return errors.New("usage: hist <team>")
	}
	ts, ok := sc.lastResult.TeamStats[args[0]]
	if !ok {
		return fmt.Errorf("unknown team %q", args[0])
	}

	var total uint64
	for _, c := range ts.WinDistribution {
		total += c
	}
	if total == 0 {
		return errors.New("empty distribution")
	}
	scale := uint64(1)
	if total > histMaxPoints {
		scale = total / histMaxPoints
	}
	var data []float64
	for wins, count := range ts.WinDistribution {
		for k := uint64(0); k < count/scale; k++ {
			data = append(data, float64(wins))
		}
	}

	hist := histogram.Hist(nfl.RegularSeasonGames+1, data)
	return histogram.Fprint(sc.l.Stderr(), hist, histogram.Linear(40))
}
