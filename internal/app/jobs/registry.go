package jobs

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// RunFunc performs the work of a job. It must return promptly once ctx is cancelled.
type RunFunc func(ctx context.Context, job *Job) (*models.ScanOutcome, error)

// Registry owns background jobs. Running jobs never expire; finished jobs
// are evicted ttl after they finish.
type Registry struct {
	jobs   *cache.Cache
	ttl    time.Duration
	root   context.Context
	cancel context.CancelFunc
}

// NewRegistry creates a registry whose finished jobs are kept for ttl.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	root, cancel := context.WithCancel(context.Background())
	return &Registry{
		jobs:   cache.New(ttl, ttl/2+time.Minute),
		ttl:    ttl,
		root:   root,
		cancel: cancel,
	}
}

// Start runs fn in a new goroutine detached from any request context.
func (r *Registry) Start(dir string, fn RunFunc) *Job {
	ctx, cancel := context.WithCancel(r.root)
	job := newJob(uuid.New().String(), dir, cancel)
	r.jobs.Set(job.ID, job, cache.NoExpiration)

	log := logger.Component("jobs").With().Str("job_id", job.ID).Str("dir", dir).Logger()
	log.Info().Msg("Scan job started")

	go func() {
		var (
			outcome *models.ScanOutcome
			err     error
		)
		defer func() {
			if p := recover(); p != nil {
				log.Error().Interface("panic", p).Msg("Scan job panicked")
				err = errors.New("scan job panicked")
			}
			job.finish(outcome, err)
			r.jobs.Set(job.ID, job, r.ttl)

			st := job.Status()
			log.Info().
				Str("state", string(st.State)).
				Int("found", st.Progress.Found).
				Int("matched", st.Progress.Matched).
				Int("missing", st.Progress.MissingCount).
				Int("failed_batches", st.Progress.FailedBatches).
				Msg("Scan job finished")
			job.markDone()
		}()
		outcome, err = fn(ctx, job)
	}()

	return job
}

// Get returns the job with the given id.
func (r *Registry) Get(id string) (*Job, error) {
	v, ok := r.jobs.Get(id)
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	return v.(*Job), nil
}

// List returns snapshots of all known jobs, newest first.
func (r *Registry) List() []Status {
	items := r.jobs.Items()
	out := make([]Status, 0, len(items))
	for _, it := range items {
		out = append(out, it.Object.(*Job).Status())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// Cancel stops a running job. Cancelling a finished job is a no-op.
func (r *Registry) Cancel(id string) error {
	job, err := r.Get(id)
	if err != nil {
		return err
	}
	job.Cancel()
	return nil
}

// Shutdown cancels every running job and waits for them until ctx is done.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.cancel()
	for _, it := range r.jobs.Items() {
		job := it.Object.(*Job)
		if job.finished() {
			continue
		}
		if _, err := job.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
