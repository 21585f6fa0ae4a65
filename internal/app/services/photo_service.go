package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/metrics"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/archive"
	"github.com/yigit/photoalbum/internal/pkg/filestorage"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// PhotoService reconciles uploaded photos synchronously.
type PhotoService interface {
	UploadPhotos(ctx context.Context, cmd UploadPhotosCommand) (*models.PhotoOutcome, error)
}

// UploadedFile is a photo supplied on its own rather than inside an archive.
type UploadedFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// UploadPhotosCommand carries an optional archive and any individual files.
type UploadPhotosCommand struct {
	ArchivePath string
	Files       []UploadedFile
}

// photoServiceImpl implements the PhotoService interface
type photoServiceImpl struct {
	students StudentStore
	storage  filestorage.PhotoStorage
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewPhotoService creates a new photo service instance
func NewPhotoService(students StudentStore, storage filestorage.PhotoStorage, m *metrics.Metrics) PhotoService {
	return &photoServiceImpl{
		students: students,
		storage:  storage,
		metrics:  m,
		log:      logger.Component("photos"),
	}
}

// photoRun accumulates one UploadPhotos call.
type photoRun struct {
	out     *models.PhotoOutcome
	missing KeySet
	found   int
	errs    int
}

// UploadPhotos saves every image whose identifier matches a student and
// records its path. Unmatched identifiers are reported; a failure on one
// file is recorded and the run continues. The archive is read first. Only an
// unreadable archive is returned as an error, together with the outcome of
// every file that could be processed.
func (s *photoServiceImpl) UploadPhotos(ctx context.Context, cmd UploadPhotosCommand) (*models.PhotoOutcome, error) {
	if cmd.ArchivePath == "" && len(cmd.Files) == 0 {
		return nil, fmt.Errorf("%w: no archive or photo files given", apperrors.ErrBadRequest)
	}

	run := &photoRun{out: newPhotoOutcome(), missing: KeySet{}}
	defer func() {
		s.metrics.ObservePhotos(metrics.ModeArchive, run.found, run.out.Saved, len(run.out.MissingStudents), run.errs)
		s.log.Info().
			Int("found", run.found).
			Int("saved", run.out.Saved).
			Int("missing", len(run.out.MissingStudents)).
			Int("errors", run.errs).
			Msg("Photo upload processed")
	}()

	var archiveErr error
	if cmd.ArchivePath != "" {
		archiveErr = archive.Walk(cmd.ArchivePath, func(e archive.Entry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.processFile(ctx, run, e.Name, e.Open)
			return nil
		})
		if archiveErr != nil {
			s.log.Error().Err(archiveErr).Str("archive", cmd.ArchivePath).Msg("Failed to read photo archive")
			run.out.Errors = addError(run.out.Errors, archiveErr)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return run.out, ctxErr
			}
		}
	}

	// Individual files come last so they win over an archive entry with the
	// same identifier.
	for _, f := range cmd.Files {
		if err := ctx.Err(); err != nil {
			return run.out, err
		}
		s.processFile(ctx, run, f.Name, f.Open)
	}

	return run.out, archiveErr
}

// processFile handles one candidate photo. Errors never escape.
func (s *photoServiceImpl) processFile(ctx context.Context, run *photoRun, name string, open func() (io.ReadCloser, error)) {
	if !IsImage(name) {
		return
	}
	run.found++

	fail := func(err error) {
		run.errs++
		run.out.Errors = addError(run.out.Errors, fmt.Errorf("%s: %w", name, err))
		s.log.Warn().Err(err).Str("file", name).Msg("Photo not processed")
	}

	id := DeriveIdentifier(name)
	if id == "" {
		fail(errors.New("file name yields an empty identifier"))
		return
	}

	student, err := s.students.FindByRegNo(ctx, id)
	if errors.Is(err, apperrors.ErrStudentNotFound) {
		key := strings.ToLower(id)
		if !run.missing.Has(key) {
			run.missing.Add(key)
			run.out.MissingStudents = append(run.out.MissingStudents, id)
		}
		return
	}
	if err != nil {
		fail(err)
		return
	}

	rc, err := open()
	if err != nil {
		fail(fmt.Errorf("opening photo: %w", err))
		return
	}
	info, err := s.storage.SavePhoto(id, photoExt(name), rc)
	rc.Close()
	if err != nil {
		fail(err)
		return
	}

	if err := s.students.SetPhotoPath(ctx, student.ID, info.Path); err != nil {
		fail(err)
		return
	}
	run.out.Saved++
}
