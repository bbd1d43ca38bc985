// Package jobs runs simulations in the background, one at a time. The
// registry is the only shared mutable structure; everything observable about
// a job is a snapshot taken under the registry lock.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gridironmc/gridiron/montecarlo"
	"github.com/gridironmc/gridiron/nfl"
)

// Status is a job's position in the Pending → Running → terminal machine.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Terminal reports whether the status is sticky.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusError
}

var (
	// ErrSimulationActive is returned by Start while another job is
	// pending or running.
	ErrSimulationActive = errors.New("a simulation is already active")
	// ErrNotFound is returned for unknown or reaped job ids.
	ErrNotFound = errors.New("job not found")
)

// DefaultTTL is how long terminal jobs stay visible after completion.
const DefaultTTL = time.Hour

// Job is the wire snapshot of one simulation job. Result is present iff the
// job completed; Error is present iff it failed.
type Job struct {
	ID               string              `json:"job_id"`
	Status           Status              `json:"status"`
	Progress         int                 `json:"progress"`
	Message          string              `json:"message"`
	NumSimulations   int                 `json:"num_simulations"`
	RandomSeed       uint64              `json:"random_seed"`
	ScheduleChecksum string              `json:"schedule_checksum"`
	Result           *montecarlo.Result  `json:"result,omitempty"`
	Error            string              `json:"error,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	StartedAt        *time.Time          `json:"started_at,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
}

type record struct {
	job    Job
	cancel context.CancelFunc
}

// Manager is the job registry plus the single background worker slot.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*record

	lg      *nfl.League
	ttl     time.Duration
	logger  zerolog.Logger
	printer *message.Printer
}

// NewManager builds a registry with the default TTL.
func NewManager(lg *nfl.League, logger zerolog.Logger) *Manager {
	return &Manager{
		jobs:    make(map[string]*record),
		lg:      lg,
		ttl:     DefaultTTL,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// SetTTL overrides the terminal-job retention period.
func (m *Manager) SetTTL(d time.Duration) {
	m.mu.Lock()
	m.ttl = d
	m.mu.Unlock()
}

// Start registers a new job against a snapshot of the schedule and returns
// immediately with the job in Pending. A nil seed draws one from a
// nondeterministic source. Fails with ErrSimulationActive while another job
// is pending or running, before any state mutation.
func (m *Manager) Start(sched *nfl.Schedule, trials int, seed *uint64) (Job, error) {
	if trials < 1 || trials > montecarlo.MaxTrials {
		return Job{}, montecarlo.ErrTrialsOutOfRange
	}
	actualSeed := montecarlo.RandomSeed()
	if seed != nil {
		actualSeed = *seed
	}
	snapshot := sched.Copy()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reapLocked()
	for _, rec := range m.jobs {
		if !rec.job.Status.Terminal() {
			return Job{}, ErrSimulationActive
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctx = m.logger.WithContext(ctx)
	job := Job{
		ID:               uuid.NewString(),
		Status:           StatusPending,
		Progress:         0,
		Message:          m.printer.Sprintf("Queued %d simulations", trials),
		NumSimulations:   trials,
		RandomSeed:       actualSeed,
		ScheduleChecksum: checksum(snapshot),
		CreatedAt:        time.Now().UTC(),
	}
	m.jobs[job.ID] = &record{job: job, cancel: cancel}

	m.logger.Info().Str("jobID", job.ID).Int("trials", trials).
		Uint64("seed", actualSeed).Msg("job-queued")
	go m.run(ctx, job.ID, snapshot, trials, actualSeed)
	return job, nil
}

// Get returns a snapshot of the job's current state.
func (m *Manager) Get(id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return rec.job, nil
}

// Cancel flips the job's cancel token. The worker observes it at the next
// progress tick; terminal jobs are untouched. Idempotent.
func (m *Manager) Cancel(id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	if !rec.job.Status.Terminal() {
		rec.cancel()
	}
	return rec.job, nil
}

// run is the single background worker for one job. Panics are caught and
// recorded as the Error state; the process never dies with the job.
func (m *Manager) run(ctx context.Context, id string, sched *nfl.Schedule, trials int, seed uint64) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Str("jobID", id).Interface("panic", r).Msg("job-panic")
			m.finish(id, StatusError, nil, fmt.Sprintf("internal error: %v", r))
		}
	}()

	m.transition(id, StatusRunning, m.printer.Sprintf("Running %d simulations", trials))

	sim := montecarlo.New(m.lg, sched)
	res, err := sim.Simulate(ctx, trials, seed, func(completed, total uint64) {
		pct := int(completed * 100 / total)
		m.setProgress(id, pct)
	})
	switch {
	case errors.Is(err, context.Canceled):
		m.finish(id, StatusCancelled, nil, "Simulation cancelled")
	case err != nil:
		m.finish(id, StatusError, nil, err.Error())
	default:
		m.finish(id, StatusCompleted, res,
			m.printer.Sprintf("Completed %d simulations in %.1fs", trials, res.ExecutionTime))
	}
}

func (m *Manager) transition(id string, st Status, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[id]
	if !ok || rec.job.Status.Terminal() {
		return
	}
	rec.job.Status = st
	rec.job.Message = msg
	if st == StatusRunning && rec.job.StartedAt == nil {
		now := time.Now().UTC()
		rec.job.StartedAt = &now
	}
}

// setProgress keeps progress monotonic even if workers report out of order.
func (m *Manager) setProgress(id string, pct int) {
	if pct > 100 {
		pct = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[id]
	if !ok || rec.job.Status.Terminal() || pct <= rec.job.Progress {
		return
	}
	rec.job.Progress = pct
	rec.job.Message = fmt.Sprintf("%d%% complete", pct)
}

func (m *Manager) finish(id string, st Status, res *montecarlo.Result, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.jobs[id]
	if !ok || rec.job.Status.Terminal() {
		return
	}
	now := time.Now().UTC()
	rec.job.Status = st
	rec.job.CompletedAt = &now
	rec.job.Message = msg
	switch st {
	case StatusCompleted:
		rec.job.Progress = 100
		rec.job.Result = res
	case StatusError:
		rec.job.Error = msg
	}
	m.logger.Info().Str("jobID", id).Str("status", string(st)).Msg("job-finished")
}

// reapLocked discards terminal jobs past the TTL. Called with the lock held,
// on every Start.
func (m *Manager) reapLocked() {
	cutoff := time.Now().Add(-m.ttl)
	for id, rec := range m.jobs {
		if rec.job.Status.Terminal() && rec.job.CompletedAt != nil &&
			rec.job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}

// checksum fingerprints the schedule snapshot a job ran against, so clients
// can tell whether a result predates a schedule refresh.
func checksum(sched *nfl.Schedule) string {
	b, err := json.Marshal(sched)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}
