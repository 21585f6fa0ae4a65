package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// The id column is only written for new rows; an existing school keeps the
// id students already reference.
var schoolUpsert = upsertSpec[*models.School]{
	table:    "schools",
	columns:  []string{"id", "schnum", "name", "state_code", "state_name", "custodian", "town"},
	conflict: "schnum",
	update:   []string{"name", "state_code", "state_name", "custodian", "town"},
	key:      func(s *models.School) string { return s.Schnum },
	values: func(s *models.School) []interface{} {
		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		return []interface{}{id, s.Schnum, s.Name, s.StateCode, s.StateName, s.Custodian, s.Town}
	},
}

// SchoolRepository handles school database operations
type SchoolRepository struct {
	db   DBTX
	sb   squirrel.StatementBuilderType
	opts BatchOptions
}

// NewSchoolRepository creates a new SchoolRepository
func NewSchoolRepository(db DBTX, opts BatchOptions) *SchoolRepository {
	return &SchoolRepository{
		db:   db,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		opts: opts,
	}
}

// UpsertSchools writes schools keyed by schnum. Callers must have filtered out
// schools whose state does not exist.
func (r *SchoolRepository) UpsertSchools(ctx context.Context, schools []*models.School) (int, error) {
	return bulkWrite(ctx, r.db, r.sb, schoolUpsert, schools, r.opts)
}

// ListSchools loads the whole school table for in-memory lookups by schnum.
func (r *SchoolRepository) ListSchools(ctx context.Context) ([]*models.School, error) {
	sql, args, err := r.sb.Select("id", "schnum", "name", "state_code", "state_name").
		From("schools").
		OrderBy("schnum ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list schools SQL")
		return nil, fmt.Errorf("failed to build list schools query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list schools query")
		return nil, fmt.Errorf("error querying schools: %w", err)
	}
	defer rows.Close()

	schools := []*models.School{}
	for rows.Next() {
		s := &models.School{}
		if err := rows.Scan(&s.ID, &s.Schnum, &s.Name, &s.StateCode, &s.StateName); err != nil {
			return nil, fmt.Errorf("error scanning school row: %w", err)
		}
		schools = append(schools, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school rows: %w", err)
	}

	return schools, nil
}
