package jobs

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/gridironmc/gridiron/montecarlo"
	"github.com/gridironmc/gridiron/nfl"
	"github.com/gridironmc/gridiron/nfl/nfltest"
)

func testManager() (*Manager, *nfl.Schedule) {
	lg := nfltest.League()
	sched := nfltest.Schedule(lg, 2025)
	return NewManager(lg, zerolog.Nop()), sched
}

// waitTerminal polls until the job leaves the active states.
func waitTerminal(t *testing.T, m *Manager, id string) Job {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.Get(id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return Job{}
}

func TestStartAndComplete(t *testing.T) {
	is := is.New(t)
	m, sched := testManager()

	seed := uint64(42)
	job, err := m.Start(sched, 200, &seed)
	is.NoErr(err)
	is.Equal(job.Status, StatusPending)
	is.Equal(job.Progress, 0)
	is.Equal(job.NumSimulations, 200)
	is.Equal(job.RandomSeed, seed)
	is.True(job.ScheduleChecksum != "")
	is.True(job.Result == nil)

	done := waitTerminal(t, m, job.ID)
	is.Equal(done.Status, StatusCompleted)
	is.Equal(done.Progress, 100)
	is.True(done.Result != nil)
	is.Equal(done.Result.NumSimulations, 200)
	is.True(done.CompletedAt != nil)
	is.Equal(done.Error, "")
}

func TestStartValidatesTrials(t *testing.T) {
	is := is.New(t)
	m, sched := testManager()
	_, err := m.Start(sched, 0, nil)
	is.Equal(err, montecarlo.ErrTrialsOutOfRange)
	_, err = m.Start(sched, montecarlo.MaxTrials+1, nil)
	is.Equal(err, montecarlo.ErrTrialsOutOfRange)
}

func TestSingleFlight(t *testing.T) {
	is := is.New(t)
	m, sched := testManager()

	job, err := m.Start(sched, montecarlo.MaxTrials, nil)
	is.NoErr(err)

	_, err = m.Start(sched, 100, nil)
	is.Equal(err, ErrSimulationActive)

	// After cancellation a new job may start.
	_, err = m.Cancel(job.ID)
	is.NoErr(err)
	waitTerminal(t, m, job.ID)
	next, err := m.Start(sched, 50, nil)
	is.NoErr(err)
	waitTerminal(t, m, next.ID)
}

func TestCancel(t *testing.T) {
	is := is.New(t)
	m, sched := testManager()

	job, err := m.Start(sched, montecarlo.MaxTrials, nil)
	is.NoErr(err)

	_, err = m.Cancel(job.ID)
	is.NoErr(err)
	done := waitTerminal(t, m, job.ID)
	is.Equal(done.Status, StatusCancelled)
	is.True(done.Result == nil) // no partial counters

	// Idempotent: cancelling a terminal job changes nothing.
	again, err := m.Cancel(job.ID)
	is.NoErr(err)
	is.Equal(again.Status, StatusCancelled)
}

func TestGetUnknown(t *testing.T) {
	is := is.New(t)
	m, _ := testManager()
	_, err := m.Get("nope")
	is.Equal(err, ErrNotFound)
	_, err = m.Cancel("nope")
	is.Equal(err, ErrNotFound)
}

func TestReap(t *testing.T) {
	is := is.New(t)
	m, sched := testManager()
	m.SetTTL(time.Nanosecond)

	seed := uint64(1)
	job, err := m.Start(sched, 10, &seed)
	is.NoErr(err)
	waitTerminal(t, m, job.ID)
	time.Sleep(5 * time.Millisecond)

	// Reaping happens on the next Start.
	next, err := m.Start(sched, 10, &seed)
	is.NoErr(err)
	_, err = m.Get(job.ID)
	is.Equal(err, ErrNotFound)
	waitTerminal(t, m, next.ID)
}

func TestRandomSeedAssigned(t *testing.T) {
	is := is.New(t)
	m, sched := testManager()
	job, err := m.Start(sched, 10, nil)
	is.NoErr(err)
	waitTerminal(t, m, job.ID)
	got, err := m.Get(job.ID)
	is.NoErr(err)
	is.Equal(got.RandomSeed, job.RandomSeed)
	is.Equal(got.Result.RandomSeed, job.RandomSeed)
}
