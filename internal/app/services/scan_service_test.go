package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/photoalbum/internal/app/jobs"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"go.uber.org/goleak"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("img"), 0o600))
	}
}

func newScan(store *memStore, batch int) ScanService {
	return NewScanService(store, jobs.NewRegistry(time.Hour), ScanOptions{BatchSize: batch, MaxReportedMissing: 1000}, nil)
}

func TestScan_MatchesAndReportsMissing(t *testing.T) {
	store := newMemStore()
	seedStudents(t, store, "R1", "R2", "R3", "R4", "R5", "R6")

	dir := t.TempDir()
	touch(t, dir, "R1.jpg", "r2.JPG", "R3.png", "R4.jpeg", "R5.jpg", "R6.jpg",
		"X1.jpg", "X2.jpg", "X3.png", "X4.jpg", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755))
	touch(t, filepath.Join(dir, "sub.jpg"), "R9.jpg")

	var reports []models.ScanOutcome
	out, err := newScan(store, 3).Scan(context.Background(), dir, func(o models.ScanOutcome) {
		reports = append(reports, o)
	})
	require.NoError(t, err)

	assert.Equal(t, 10, out.Found)
	assert.Equal(t, 6, out.Matched)
	assert.Equal(t, 4, out.MissingCount)
	assert.ElementsMatch(t, []string{"X1", "X2", "X3", "X4"}, out.Missing)
	assert.Zero(t, out.FailedBatches)
	assert.Equal(t, []string{"R1", "R2", "R3", "R4", "R5", "R6"}, store.withPhotos())
	assert.Equal(t, filepath.Join(dir, "r2.JPG"), *store.student("R2").PhotoPath)
	assert.Len(t, reports, 5, "four flushes plus the final report")
	assert.False(t, out.FinishedAt.Before(out.StartedAt))
}

func TestScan_FollowsSymlinks(t *testing.T) {
	store := newMemStore()
	seedStudents(t, store, "R1")

	target := t.TempDir()
	touch(t, target, "original.jpg")
	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(target, "original.jpg"), filepath.Join(dir, "R1.jpg")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "linkdir.jpg")))

	out, err := newScan(store, 10).Scan(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Found)
	assert.Equal(t, 1, out.Matched)
}

func TestScan_FailedFlushDoesNotStopScan(t *testing.T) {
	store := newMemStore()
	store.failPhotoFlush = 1
	names := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		names = append(names, fmt.Sprintf("R%d.jpg", i))
	}
	seedStudents(t, store, "R0", "R1", "R2", "R3", "R4", "R5")
	dir := t.TempDir()
	touch(t, dir, names...)

	out, err := newScan(store, 2).Scan(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, out.Found)
	assert.Equal(t, 1, out.FailedBatches)
	assert.Equal(t, 4, out.Matched)
	assert.Len(t, out.Errors, 1)
	assert.Equal(t, 3, store.photoFlushes)
}

func TestScan_BatchCappedByStoreLimit(t *testing.T) {
	store := newMemStore()
	store.maxPhotoBatch = 2
	seedStudents(t, store, "R1", "R2", "R3")
	dir := t.TempDir()
	touch(t, dir, "R1.jpg", "R2.jpg", "R3.jpg")

	out, err := newScan(store, 5000).Scan(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Matched)
	assert.Zero(t, out.FailedBatches)
	assert.Equal(t, 2, store.photoFlushes)
}

// chunkedDir serves prepared chunks of entries, then fails with err.
type chunkedDir struct {
	chunks [][]fs.DirEntry
	err    error
}

func (d *chunkedDir) ReadDir(int) ([]fs.DirEntry, error) {
	if len(d.chunks) == 0 {
		return nil, d.err
	}
	next := d.chunks[0]
	d.chunks = d.chunks[1:]
	return next, nil
}

func TestScan_ReadErrorFlushesPendingBatch(t *testing.T) {
	store := newMemStore()
	seedStudents(t, store, "R1", "R2")
	dir := t.TempDir()
	touch(t, dir, "R1.jpg", "R2.jpg", "X1.jpg")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	readErr := errors.New("input/output error")
	svc := newScan(store, 10).(*scanServiceImpl)
	out, err := svc.scanDir(context.Background(), dir, &chunkedDir{chunks: [][]fs.DirEntry{entries}, err: readErr}, nil)
	require.ErrorIs(t, err, readErr)

	assert.Equal(t, 3, out.Found)
	assert.Equal(t, 2, out.Matched)
	assert.Equal(t, 1, out.MissingCount)
	assert.Equal(t, out.Found, out.Matched+out.MissingCount+out.Unresolved)
	assert.Equal(t, []string{"R1", "R2"}, store.withPhotos())
	assert.Equal(t, 1, store.photoFlushes)
	assert.Len(t, out.Errors, 1)
}

func TestScan_InvalidPath(t *testing.T) {
	svc := newScan(newMemStore(), 10)
	file := filepath.Join(t.TempDir(), "file.jpg")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	for _, dir := range []string{"", "relative/dir", filepath.Join(t.TempDir(), "absent"), file} {
		_, err := svc.Scan(context.Background(), dir, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPath, dir)

		_, err = svc.StartScan(dir)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPath, dir)
	}
}

func TestScan_CancelledBeforeStart(t *testing.T) {
	store := newMemStore()
	dir := t.TempDir()
	touch(t, dir, "R1.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := newScan(store, 10).Scan(ctx, dir, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Found)
	assert.Zero(t, store.photoFlushes)
}

func TestStartScan_BackgroundJob(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))

	store := newMemStore()
	seedStudents(t, store, "R1")
	dir := t.TempDir()
	touch(t, dir, "R1.jpg", "R2.jpg")

	svc := newScan(store, 10)
	job, err := svc.StartScan(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, err := job.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, jobs.StateCompleted, st.State)
	assert.Equal(t, 2, st.Progress.Found)
	assert.Equal(t, 1, st.Progress.Matched)
	assert.Equal(t, []string{"R2"}, st.Progress.Missing)

	got, err := svc.GetScan(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Len(t, svc.ListScans(), 1)
	assert.NoError(t, svc.CancelScan(job.ID), "cancelling a finished job is a no-op")
}

func TestScan_MatchCompletenessUnderVolume(t *testing.T) {
	if testing.Short() {
		t.Skip("creates 20,000 files")
	}
	const total, matching = 20000, 12345

	store := newMemStore()
	regNos := make([]string, matching)
	for i := range regNos {
		regNos[i] = fmt.Sprintf("REG%06d", i)
	}
	seedStudents(t, store, regNos...)

	dir := t.TempDir()
	for i := 0; i < total; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("REG%06d.jpg", i)), nil, 0o600))
	}

	svc := NewScanService(store, jobs.NewRegistry(time.Hour), ScanOptions{BatchSize: 1000, MaxReportedMissing: 10}, nil)
	out, err := svc.Scan(context.Background(), dir, nil)
	require.NoError(t, err)

	assert.Equal(t, total, out.Found)
	assert.Equal(t, matching, out.Matched)
	assert.Equal(t, total-matching, out.MissingCount)
	assert.Len(t, out.Missing, 10, "reported missing identifiers are capped")
	assert.Len(t, store.withPhotos(), matching)
	assert.Equal(t, total/1000, store.photoFlushes)
}
