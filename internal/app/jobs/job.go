// Package jobs tracks background directory scans.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yigit/photoalbum/internal/app/models"
)

// State is the lifecycle state of a job.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Status is a point-in-time snapshot of a job.
type Status struct {
	ID         string             `json:"id"`
	Dir        string             `json:"dir"`
	State      State              `json:"state"`
	Progress   models.ScanOutcome `json:"progress"`
	Error      string             `json:"error,omitempty"`
	StartedAt  time.Time          `json:"startedAt"`
	FinishedAt *time.Time         `json:"finishedAt,omitempty"`
}

// Job is the handle of one background scan.
type Job struct {
	ID  string
	Dir string

	mu         sync.RWMutex
	state      State
	progress   models.ScanOutcome
	err        error
	startedAt  time.Time
	finishedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func newJob(id, dir string, cancel context.CancelFunc) *Job {
	return &Job{
		ID:        id,
		Dir:       dir,
		state:     StateRunning,
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Status returns a snapshot safe to hand to other goroutines.
func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()

	s := Status{
		ID:        j.ID,
		Dir:       j.Dir,
		State:     j.state,
		Progress:  copyOutcome(j.progress),
		StartedAt: j.startedAt,
	}
	if j.err != nil {
		s.Error = j.err.Error()
	}
	if !j.finishedAt.IsZero() {
		t := j.finishedAt
		s.FinishedAt = &t
	}
	return s
}

// Report replaces the progress snapshot. It is called by the running scan.
func (j *Job) Report(progress models.ScanOutcome) {
	j.mu.Lock()
	j.progress = progress
	j.mu.Unlock()
}

// Cancel asks the scan to stop at its next batch boundary.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) (Status, error) {
	select {
	case <-j.done:
		return j.Status(), nil
	case <-ctx.Done():
		return j.Status(), ctx.Err()
	}
}

func (j *Job) finish(outcome *models.ScanOutcome, err error) {
	j.mu.Lock()
	if outcome != nil {
		j.progress = *outcome
	}
	j.err = err
	switch {
	case err == nil:
		j.state = StateCompleted
	case errors.Is(err, context.Canceled):
		j.state = StateCancelled
	default:
		j.state = StateFailed
	}
	j.finishedAt = time.Now()
	j.mu.Unlock()

	j.cancel()
}

func (j *Job) markDone() {
	close(j.done)
}

func (j *Job) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

func copyOutcome(o models.ScanOutcome) models.ScanOutcome {
	o.Missing = append([]string(nil), o.Missing...)
	o.Errors = append([]string(nil), o.Errors...)
	return o
}
