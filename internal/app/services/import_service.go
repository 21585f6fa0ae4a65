package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/metrics"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/extract"
	"github.com/yigit/photoalbum/internal/pkg/helpers"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// flushWindow is the number of parsed records held in memory before they are
// handed to the store. The store splits each window into its own batches.
const flushWindow = 10000

// ImportService defines the reference data import operations. Stages must
// run in the order states, schools, students; each commits on its own.
type ImportService interface {
	ImportStates(ctx context.Context, path string) (*models.StageResult, error)
	ImportSchools(ctx context.Context, path string) (*models.StageResult, error)
	ImportStudents(ctx context.Context, path string) (*models.StageResult, error)
	ImportAll(ctx context.Context, files ImportFiles) (*models.ImportOutcome, error)
}

// ImportFiles names the extract of each stage. An empty path skips the stage.
type ImportFiles struct {
	States   string
	Schools  string
	Students string
}

// ImportOptions configures record decoding and reporting.
type ImportOptions struct {
	Encoding     string
	DefaultBatch string
	// ReportLimit caps the skipped school details in a result.
	ReportLimit int
}

// importServiceImpl implements the ImportService interface
type importServiceImpl struct {
	states   StateStore
	schools  SchoolStore
	students StudentStore
	opts     ImportOptions
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewImportService creates a new import service instance
func NewImportService(states StateStore, schools SchoolStore, students StudentStore, opts ImportOptions, m *metrics.Metrics) ImportService {
	if opts.DefaultBatch == "" {
		opts.DefaultBatch = "2025"
	}
	if opts.ReportLimit <= 0 {
		opts.ReportLimit = 10
	}
	return &importServiceImpl{
		states:   states,
		schools:  schools,
		students: students,
		opts:     opts,
		metrics:  m,
		log:      logger.Component("import"),
	}
}

// readRecords streams the extract at path through build, handing every full
// window of built entities to flush. Records rejected by build are counted
// as skipped. A malformed file aborts with the error from the reader.
func readRecords[T any](ctx context.Context, path string, opts extract.Options, res *models.StageResult,
	build func(extract.Record) (T, error), flush func([]T) error) error {

	r, err := extract.Open(path, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	window := make([]T, 0, flushWindow)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		item, err := build(rec)
		if err != nil {
			res.Skipped++
			res.Errors = addError(res.Errors, err)
			continue
		}
		window = append(window, item)
		if len(window) == flushWindow {
			if err := flush(window); err != nil {
				return err
			}
			window = make([]T, 0, flushWindow)
		}
	}

	if len(window) > 0 {
		return flush(window)
	}
	return nil
}

func (s *importServiceImpl) extractOptions() extract.Options {
	return extract.Options{Encoding: s.opts.Encoding}
}

// finishStage logs and records metrics for a completed or failed stage.
func (s *importServiceImpl) finishStage(res *models.StageResult, start time.Time, err error) (*models.StageResult, error) {
	if err != nil {
		failStage(res, err)
	}
	s.metrics.ObserveStage(res.Stage, res.Imported, res.Skipped, res.Failed)

	ev := s.log.Info()
	if err != nil {
		ev = s.log.Error().Err(err)
	}
	ev.Str("stage", res.Stage).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Int("missing_parents", len(res.MissingParentKeys)).
		Int("missing_school_matches", len(res.MissingSchoolMatches)).
		Dur("elapsed", helpers.Elapsed(start)).
		Msg("Import stage finished")

	return res, err
}

// ImportStates upserts states by code.
func (s *importServiceImpl) ImportStates(ctx context.Context, path string) (*models.StageResult, error) {
	start := time.Now()
	res := newStageResult(models.StageStates)
	s.log.Info().Str("stage", res.Stage).Str("path", path).Msg("Import stage started")

	err := readRecords(ctx, path, s.extractOptions(), res, StateFromRecord, func(states []*models.State) error {
		n, err := s.states.UpsertStates(ctx, states)
		res.Imported += n
		return err
	})
	return s.finishStage(res, start, err)
}

// ImportSchools upserts the schools whose state exists; the rest are
// reported and never written.
func (s *importServiceImpl) ImportSchools(ctx context.Context, path string) (*models.StageResult, error) {
	start := time.Now()
	res := newStageResult(models.StageSchools)
	s.log.Info().Str("stage", res.Stage).Str("path", path).Msg("Import stage started")

	states, err := s.states.ListStates(ctx)
	if err != nil {
		return s.finishStage(res, start, fmt.Errorf("loading state keys: %w", err))
	}
	stateNames := make(map[string]string, len(states))
	for _, st := range states {
		stateNames[st.Code] = st.Name
	}

	missing := KeySet{}
	var skipped []models.SkippedSchool
	err = readRecords(ctx, path, s.extractOptions(), res, SchoolFromRecord, func(schools []*models.School) error {
		resolved := ResolveSchools(schools, stateNames)
		res.Skipped += len(resolved.Orphans)
		if room := s.opts.ReportLimit - len(skipped); room > 0 {
			skipped = append(skipped, capSkipped(resolved.Orphans, room)...)
		}
		for _, key := range resolved.MissingParentKeys {
			if !missing.Has(key) {
				missing.Add(key)
				res.MissingParentKeys = append(res.MissingParentKeys, key)
			}
		}

		n, err := s.schools.UpsertSchools(ctx, resolved.Admissible)
		res.Imported += n
		return err
	})
	res.SkippedSchools = skipped
	if len(res.MissingParentKeys) > 0 {
		s.log.Warn().Strs("state_codes", res.MissingParentKeys).Int("skipped", res.Skipped).
			Msg("Schools reference unknown states")
	}
	return s.finishStage(res, start, err)
}

// ImportStudents inserts students, linking each to its school when schnum
// resolves, and reports student counts per state and per school.
func (s *importServiceImpl) ImportStudents(ctx context.Context, path string) (*models.StageResult, error) {
	start := time.Now()
	res := newStageResult(models.StageStudents)
	s.log.Info().Str("stage", res.Stage).Str("path", path).Msg("Import stage started")

	schools, err := s.schools.ListSchools(ctx)
	if err != nil {
		return s.finishStage(res, start, fmt.Errorf("loading schools: %w", err))
	}
	bySchnum := make(map[string]*models.School, len(schools))
	for _, sc := range schools {
		bySchnum[sc.Schnum] = sc
	}

	build := func(rec extract.Record) (*models.Student, error) {
		return StudentFromRecord(rec, s.opts.DefaultBatch)
	}
	err = readRecords(ctx, path, s.extractOptions(), res, build, func(students []*models.Student) error {
		res.MissingSchoolMatches = append(res.MissingSchoolMatches, ResolveStudents(students, bySchnum)...)
		n, err := s.students.InsertStudents(ctx, students)
		res.Imported += n
		return err
	})
	if err != nil {
		return s.finishStage(res, start, err)
	}

	if res.StudentsByState, err = s.students.CountsByState(ctx); err != nil {
		return s.finishStage(res, start, fmt.Errorf("counting students by state: %w", err))
	}
	if res.StudentsBySchool, err = s.students.CountsBySchool(ctx); err != nil {
		return s.finishStage(res, start, fmt.Errorf("counting students by school: %w", err))
	}
	return s.finishStage(res, start, nil)
}

// ImportAll runs the stages in order and stops at the first failed stage.
// Stages that already committed stay committed.
func (s *importServiceImpl) ImportAll(ctx context.Context, files ImportFiles) (*models.ImportOutcome, error) {
	out := &models.ImportOutcome{}
	var err error

	if files.States != "" {
		if out.States, err = s.ImportStates(ctx, files.States); err != nil {
			return out, err
		}
	}
	if files.Schools != "" {
		if out.Schools, err = s.ImportSchools(ctx, files.Schools); err != nil {
			return out, err
		}
	}
	if files.Students != "" {
		if out.Students, err = s.ImportStudents(ctx, files.Students); err != nil {
			return out, err
		}
	}
	if out.States == nil && out.Schools == nil && out.Students == nil {
		return out, fmt.Errorf("%w: no import files given", apperrors.ErrBadRequest)
	}
	return out, nil
}
