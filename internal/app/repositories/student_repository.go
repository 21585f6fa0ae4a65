package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/helpers"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// Students are insert-only per reg_no: a re-import never overwrites an
// existing student or the photo path reconciliation set on it.
var studentInsert = upsertSpec[*models.Student]{
	table:    "students",
	columns:  []string{"id", "batch", "schnum", "school_name", "reg_no", "ser_no", "cand_name", "school_id"},
	conflict: "reg_no",
	key:      func(s *models.Student) string { return s.RegNo },
	values: func(s *models.Student) []interface{} {
		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		return []interface{}{id, s.Batch, s.Schnum, s.SchoolName, s.RegNo, s.SerNo, s.CandName, s.SchoolID}
	},
}

// photoPathCols is the number of bind parameters per row of the bulk photo update.
const photoPathCols = 2

// StudentRepository handles student database operations
type StudentRepository struct {
	db   DBTX
	sb   squirrel.StatementBuilderType
	opts BatchOptions
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db DBTX, opts BatchOptions) *StudentRepository {
	return &StudentRepository{
		db:   db,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		opts: opts,
	}
}

// InsertStudents bulk-inserts students, ignoring reg_no values that already exist.
func (r *StudentRepository) InsertStudents(ctx context.Context, students []*models.Student) (int, error) {
	return bulkWrite(ctx, r.db, r.sb, studentInsert, students, r.opts)
}

// FindByRegNo looks a student up by registration number, ignoring case.
func (r *StudentRepository) FindByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	sql, args, err := r.sb.Select("id", "batch", "schnum", "school_name", "reg_no", "ser_no", "cand_name", "school_id", "photo_path").
		From("students").
		Where(squirrel.Expr("lower(reg_no) = lower(?)", regNo)).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building find student SQL")
		return nil, fmt.Errorf("failed to build find student query: %w", err)
	}

	s := &models.Student{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.Batch, &s.Schnum, &s.SchoolName, &s.RegNo, &s.SerNo, &s.CandName, &s.SchoolID, &s.PhotoPath,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("regNo", regNo).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student by reg_no: %w", err)
	}

	return s, nil
}

// SetPhotoPath records the stored photo of a single student.
func (r *StudentRepository) SetPhotoPath(ctx context.Context, id uuid.UUID, path string) error {
	sql, args, err := r.sb.Update("students").
		Set("photo_path", path).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set photo path query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("studentID", id.String()).Msg("Error updating photo path")
		return apperrors.NewStoreWriteError("students", 0, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// SetPhotoPaths sets photo_path for every match in one statement, joining on
// a VALUES list and matching reg_no case-insensitively. It returns the
// identifiers that matched a student. Duplicate identifiers (ignoring case)
// collapse to the last path given. Callers size the slice; it must fit the
// parameter limit.
func (r *StudentRepository) SetPhotoPaths(ctx context.Context, matches []models.PhotoMatch) ([]string, error) {
	matches = helpers.DedupeLast(matches, func(m models.PhotoMatch) string {
		return strings.ToLower(m.Identifier)
	})
	if len(matches) == 0 {
		return nil, nil
	}
	if limit := r.MaxPhotoBatch(); len(matches) > limit {
		return nil, apperrors.NewStoreWriteError("students", 0,
			fmt.Errorf("%d photo matches exceed the %d rows a statement can carry", len(matches), limit))
	}

	args := make([]interface{}, 0, len(matches)*photoPathCols)
	for _, m := range matches {
		args = append(args, m.Identifier, m.Path)
	}

	sql := `UPDATE students AS s
		SET photo_path = v.photo_path, updated_at = now()
		FROM (VALUES ` + helpers.Placeholders(len(matches), photoPathCols, 1, "::text") + `) AS v(reg_no, photo_path)
		WHERE lower(s.reg_no) = lower(v.reg_no)
		RETURNING v.reg_no`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewStoreWriteError("students", 0, err)
	}
	defer rows.Close()

	seen := make(map[string]struct{}, len(matches))
	matched := make([]string, 0, len(matches))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewStoreWriteError("students", 0, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		matched = append(matched, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreWriteError("students", 0, err)
	}

	return matched, nil
}

// MaxPhotoBatch is the largest number of matches SetPhotoPaths accepts.
func (r *StudentRepository) MaxPhotoBatch() int {
	return BatchOptions{MaxParams: r.opts.MaxParams}.rowsPerBatch(photoPathCols)
}

// CountsByState returns the number of students linked to a school in each state.
func (r *StudentRepository) CountsByState(ctx context.Context) (map[string]int, error) {
	sql, args, err := r.sb.Select("sc.state_code", "count(*)").
		From("students st").
		Join("schools sc ON sc.id = st.school_id").
		GroupBy("sc.state_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build counts by state query: %w", err)
	}
	return r.groupedCounts(ctx, sql, args)
}

// CountsBySchool returns the number of students per schnum.
func (r *StudentRepository) CountsBySchool(ctx context.Context) (map[string]int, error) {
	sql, args, err := r.sb.Select("schnum", "count(*)").
		From("students").
		Where(squirrel.NotEq{"schnum": ""}).
		GroupBy("schnum").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build counts by school query: %w", err)
	}
	return r.groupedCounts(ctx, sql, args)
}

func (r *StudentRepository) groupedCounts(ctx context.Context, sql string, args []interface{}) (map[string]int, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing grouped count query")
		return nil, fmt.Errorf("error querying student counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("error scanning student count row: %w", err)
		}
		counts[key] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student count rows: %w", err)
	}
	return counts, nil
}
