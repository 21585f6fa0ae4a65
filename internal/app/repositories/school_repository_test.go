package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSchools_MapsRows(t *testing.T) {
	id := uuid.New()
	db := &stubDB{
		queryFunc: func(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
			require.Equal(t, "SELECT id, schnum, name, state_code, state_name FROM schools ORDER BY schnum ASC", sql)
			return &stubRows{data: [][]interface{}{{id, "S1", "Demo School", "LA", "Lagos"}}}, nil
		},
	}

	schools, err := NewSchoolRepository(db, DefaultBatchOptions()).ListSchools(context.Background())
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, id, schools[0].ID)
	assert.Equal(t, "S1", schools[0].Schnum)
	assert.Equal(t, "Lagos", schools[0].StateName)
}

func TestListStates_MapsRows(t *testing.T) {
	db := &stubDB{
		queryFunc: func(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
			require.Contains(t, sql, "FROM states")
			return &stubRows{data: [][]interface{}{{"LA", "Lagos", 120}}}, nil
		},
	}

	states, err := NewStateRepository(db, DefaultBatchOptions()).ListStates(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "LA", states[0].Code)
	assert.Equal(t, 120, states[0].SchoolCount)
}
