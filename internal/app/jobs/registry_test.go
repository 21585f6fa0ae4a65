package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"go.uber.org/goleak"
)

func verifyNoLeaks(t *testing.T) {
	goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRegistry_CompletedJob(t *testing.T) {
	defer verifyNoLeaks(t)
	r := NewRegistry(time.Hour)

	job := r.Start("/photos", func(ctx context.Context, j *Job) (*models.ScanOutcome, error) {
		j.Report(models.ScanOutcome{Found: 1})
		return &models.ScanOutcome{Dir: "/photos", Found: 2, Matched: 1, MissingCount: 1, Missing: []string{"R9"}}, nil
	})

	st, err := job.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, st.State)
	assert.Equal(t, 2, st.Progress.Found)
	assert.Equal(t, []string{"R9"}, st.Progress.Missing)
	require.NotNil(t, st.FinishedAt)

	got, err := r.Get(job.ID)
	require.NoError(t, err)
	assert.Same(t, job, got)
	assert.Len(t, r.List(), 1)
}

func TestRegistry_CancelStopsJob(t *testing.T) {
	defer verifyNoLeaks(t)
	r := NewRegistry(time.Hour)

	started := make(chan struct{})
	job := r.Start("/photos", func(ctx context.Context, j *Job) (*models.ScanOutcome, error) {
		close(started)
		<-ctx.Done()
		return &models.ScanOutcome{Found: 7}, ctx.Err()
	})
	<-started

	assert.Equal(t, StateRunning, job.Status().State)
	require.NoError(t, r.Cancel(job.ID))

	st, err := job.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, st.State)
	assert.Equal(t, 7, st.Progress.Found)
}

func TestRegistry_FailedAndPanickingJobs(t *testing.T) {
	defer verifyNoLeaks(t)
	r := NewRegistry(time.Hour)

	failed := r.Start("/a", func(context.Context, *Job) (*models.ScanOutcome, error) {
		return nil, errors.New("disk gone")
	})
	panicked := r.Start("/b", func(context.Context, *Job) (*models.ScanOutcome, error) {
		panic("boom")
	})

	st, err := failed.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StateFailed, st.State)
	assert.Equal(t, "disk gone", st.Error)

	st, err = panicked.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StateFailed, st.State)
}

func TestRegistry_UnknownJob(t *testing.T) {
	r := NewRegistry(time.Hour)

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
	assert.ErrorIs(t, r.Cancel("missing"), apperrors.ErrJobNotFound)
}

func TestRegistry_ShutdownCancelsRunningJobs(t *testing.T) {
	defer verifyNoLeaks(t)
	r := NewRegistry(time.Hour)

	job := r.Start("/photos", func(ctx context.Context, j *Job) (*models.ScanOutcome, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	require.NoError(t, r.Shutdown(waitCtx(t)))
	assert.Equal(t, StateCancelled, job.Status().State)
}
