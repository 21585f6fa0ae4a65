package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

var stateUpsert = upsertSpec[*models.State]{
	table:    "states",
	columns:  []string{"code", "name", "school_count"},
	conflict: "code",
	update:   []string{"name", "school_count"},
	key:      func(s *models.State) string { return s.Code },
	values: func(s *models.State) []interface{} {
		return []interface{}{s.Code, s.Name, s.SchoolCount}
	},
}

// StateRepository handles state database operations
type StateRepository struct {
	db   DBTX
	sb   squirrel.StatementBuilderType
	opts BatchOptions
}

// NewStateRepository creates a new StateRepository
func NewStateRepository(db DBTX, opts BatchOptions) *StateRepository {
	return &StateRepository{
		db:   db,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		opts: opts,
	}
}

// UpsertStates inserts new states and refreshes name and school count of existing ones.
func (r *StateRepository) UpsertStates(ctx context.Context, states []*models.State) (int, error) {
	return bulkWrite(ctx, r.db, r.sb, stateUpsert, states, r.opts)
}

// ListStates returns every stored state ordered by code.
func (r *StateRepository) ListStates(ctx context.Context) ([]*models.State, error) {
	sql, args, err := r.sb.Select("code", "name", "school_count").
		From("states").
		OrderBy("code ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list states SQL")
		return nil, fmt.Errorf("failed to build list states query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list states query")
		return nil, fmt.Errorf("error querying states: %w", err)
	}
	defer rows.Close()

	states := []*models.State{}
	for rows.Next() {
		s := &models.State{}
		if err := rows.Scan(&s.Code, &s.Name, &s.SchoolCount); err != nil {
			return nil, fmt.Errorf("error scanning state row: %w", err)
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating state rows: %w", err)
	}

	return states, nil
}
