package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/photoalbum/internal/app/jobs"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/metrics"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// readDirChunk is the number of directory entries requested per ReadDir call.
const readDirChunk = 1024

// ScanService reconciles a directory of photos against students in the background.
type ScanService interface {
	// Scan runs a scan to completion on the calling goroutine. report, when
	// non-nil, receives a progress snapshot after every flush.
	Scan(ctx context.Context, dir string, report func(models.ScanOutcome)) (*models.ScanOutcome, error)
	StartScan(dir string) (*jobs.Job, error)
	GetScan(id string) (*jobs.Job, error)
	ListScans() []jobs.Status
	CancelScan(id string) error
}

// ScanOptions configures batching and reporting of directory scans.
type ScanOptions struct {
	BatchSize          int
	MaxReportedMissing int
}

// scanServiceImpl implements the ScanService interface
type scanServiceImpl struct {
	students StudentStore
	registry *jobs.Registry
	opts     ScanOptions
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewScanService creates a new scan service instance
func NewScanService(students StudentStore, registry *jobs.Registry, opts ScanOptions, m *metrics.Metrics) ScanService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5000
	}
	return &scanServiceImpl{
		students: students,
		registry: registry,
		opts:     opts,
		metrics:  m,
		log:      logger.Component("scan"),
	}
}

// ValidateScanDir returns the absolute form of dir if it exists and is a directory.
func ValidateScanDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", apperrors.NewInvalidPathError(dir, "path is empty")
	}
	if !filepath.IsAbs(dir) {
		return "", apperrors.NewInvalidPathError(dir, "path must be absolute")
	}
	abs := filepath.Clean(dir)
	info, err := os.Stat(abs)
	if err != nil {
		return "", apperrors.NewInvalidPathError(dir, "path does not exist")
	}
	if !info.IsDir() {
		return "", apperrors.NewInvalidPathError(dir, "path is not a directory")
	}
	return abs, nil
}

// StartScan validates dir and starts a background scan of it.
func (s *scanServiceImpl) StartScan(dir string) (*jobs.Job, error) {
	abs, err := ValidateScanDir(dir)
	if err != nil {
		return nil, err
	}
	return s.registry.Start(abs, func(ctx context.Context, job *jobs.Job) (*models.ScanOutcome, error) {
		s.metrics.ScanStarted()
		defer s.metrics.ScanFinished()
		return s.Scan(ctx, abs, job.Report)
	}), nil
}

// GetScan returns the job with the given id.
func (s *scanServiceImpl) GetScan(id string) (*jobs.Job, error) {
	return s.registry.Get(id)
}

// ListScans returns snapshots of known scan jobs.
func (s *scanServiceImpl) ListScans() []jobs.Status {
	return s.registry.List()
}

// CancelScan stops a running scan at its next batch boundary.
func (s *scanServiceImpl) CancelScan(id string) error {
	return s.registry.Cancel(id)
}

// scanner holds the state of one Scan call.
type scanner struct {
	svc     *scanServiceImpl
	out     *models.ScanOutcome
	batch   []models.PhotoMatch
	size    int
	flushes int
	report  func(models.ScanOutcome)
	log     zerolog.Logger
}

// Scan walks the top level of dir without listing it in full, batching
// matches into bulk updates. A failed flush is logged and counted and the
// scan goes on. Cancellation is checked between flushes; the pending batch
// is dropped and ctx.Err() is returned with the counts so far.
func (s *scanServiceImpl) Scan(ctx context.Context, dir string, report func(models.ScanOutcome)) (*models.ScanOutcome, error) {
	abs, err := ValidateScanDir(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, apperrors.NewInvalidPathError(abs, err.Error())
	}
	defer f.Close()

	return s.scanDir(ctx, abs, f, report)
}

// dirReader yields directory entries in chunks; *os.File satisfies it.
type dirReader interface {
	ReadDir(n int) ([]fs.DirEntry, error)
}

// scanDir reconciles the entries of abs read from d. Unless the scan was
// cancelled, the pending batch is flushed even when reading stops early.
func (s *scanServiceImpl) scanDir(ctx context.Context, abs string, d dirReader, report func(models.ScanOutcome)) (*models.ScanOutcome, error) {
	size := s.opts.BatchSize
	if limit := s.students.MaxPhotoBatch(); limit > 0 && size > limit {
		size = limit
	}

	sc := &scanner{
		svc: s,
		out: &models.ScanOutcome{
			Dir:       abs,
			Missing:   []string{},
			Errors:    []string{},
			StartedAt: time.Now(),
		},
		batch:  make([]models.PhotoMatch, 0, size),
		size:   size,
		report: report,
		log:    s.log.With().Str("dir", abs).Logger(),
	}
	sc.log.Info().Int("batch_size", size).Msg("Directory scan started")

	err := sc.walk(ctx, d)
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		sc.flush(ctx)
	}
	sc.out.FinishedAt = time.Now()

	s.metrics.ObservePhotos(metrics.ModeScan, sc.out.Found, sc.out.Matched, sc.out.MissingCount, len(sc.out.Errors))
	ev := sc.log.Info()
	if err != nil {
		ev = sc.log.Warn().Err(err)
	}
	ev.Int("found", sc.out.Found).
		Int("matched", sc.out.Matched).
		Int("missing", sc.out.MissingCount).
		Int("unresolved", sc.out.Unresolved).
		Int("failed_batches", sc.out.FailedBatches).
		Dur("elapsed", sc.out.FinishedAt.Sub(sc.out.StartedAt).Round(time.Millisecond)).
		Msg("Directory scan finished")
	if report != nil {
		report(sc.snapshot())
	}

	return sc.out, err
}

func (sc *scanner) walk(ctx context.Context, d dirReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, rerr := d.ReadDir(readDirChunk)
		for _, e := range entries {
			sc.consider(e)
			if len(sc.batch) >= sc.size {
				if err := ctx.Err(); err != nil {
					return err
				}
				sc.flush(ctx)
			}
		}
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			sc.out.Errors = addError(sc.out.Errors, rerr)
			return fmt.Errorf("reading directory %s: %w", sc.out.Dir, rerr)
		}
	}
}

// consider adds a directory entry to the batch if it is an image file.
// Symlinks are followed; subdirectories are not descended into.
func (sc *scanner) consider(e fs.DirEntry) {
	name := e.Name()
	if !IsImage(name) {
		return
	}
	full := filepath.Join(sc.out.Dir, name)

	switch t := e.Type(); {
	case t.IsRegular():
	case t&fs.ModeSymlink != 0:
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			return
		}
	default:
		return
	}

	sc.out.Found++
	id := DeriveIdentifier(name)
	if id == "" {
		sc.out.Unresolved++
		return
	}
	sc.batch = append(sc.batch, models.PhotoMatch{Identifier: id, Path: full})
}

// flush writes the pending batch. Failures are absorbed into the outcome.
func (sc *scanner) flush(ctx context.Context) {
	if len(sc.batch) == 0 {
		return
	}
	defer func() { sc.batch = sc.batch[:0] }()

	idx := sc.flushes
	sc.flushes++
	start := time.Now()
	matched, err := sc.svc.students.SetPhotoPaths(ctx, sc.batch)
	sc.svc.metrics.ObserveFlush(time.Since(start).Seconds(), err != nil)

	if err != nil {
		sc.out.FailedBatches++
		sc.out.Errors = addError(sc.out.Errors, fmt.Errorf("batch %d: %w", idx, err))
		sc.log.Error().Err(err).Int("batch", idx).Int("size", len(sc.batch)).Msg("Photo batch update failed")
		return
	}

	hit := make(KeySet, len(matched))
	for _, id := range matched {
		hit.Add(strings.ToLower(id))
	}
	seen := make(KeySet, len(sc.batch))
	for _, m := range sc.batch {
		key := strings.ToLower(m.Identifier)
		if seen.Has(key) {
			continue
		}
		seen.Add(key)
		if hit.Has(key) {
			sc.out.Matched++
			continue
		}
		sc.out.MissingCount++
		sc.out.Missing = appendCapped(sc.out.Missing, sc.svc.opts.MaxReportedMissing, m.Identifier)
	}

	sc.log.Info().
		Int("batch", idx).
		Int("found", sc.out.Found).
		Int("matched", sc.out.Matched).
		Int("missing", sc.out.MissingCount).
		Msg("Photo batch flushed")
	if sc.report != nil {
		sc.report(sc.snapshot())
	}
}

// snapshot copies the outcome so the receiver does not share slices with
// the running scan.
func (sc *scanner) snapshot() models.ScanOutcome {
	o := *sc.out
	o.Missing = append([]string(nil), sc.out.Missing...)
	o.Errors = append([]string(nil), sc.out.Errors...)
	return o
}
