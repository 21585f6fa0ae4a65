package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by the repositories. *pgxpool.Pool,
// *pgx.Conn and pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// BatchOptions bounds the size of multi-row statements.
type BatchOptions struct {
	// BatchSize is the preferred number of rows per statement.
	BatchSize int
	// MaxParams is the store's limit on bind parameters per statement.
	MaxParams int
}

// PostgresMaxParams is the bind parameter limit of the PostgreSQL wire protocol.
const PostgresMaxParams = 65535

// DefaultBatchOptions returns 1000-row batches under the PostgreSQL limit.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{BatchSize: 1000, MaxParams: PostgresMaxParams}
}

// rowsPerBatch caps the configured batch size so that rows*cols never
// exceeds the parameter limit.
func (o BatchOptions) rowsPerBatch(cols int) int {
	maxParams := o.MaxParams
	if maxParams <= 0 {
		maxParams = PostgresMaxParams
	}
	if cols < 1 {
		cols = 1
	}
	limit := maxParams / cols
	if limit < 1 {
		limit = 1
	}
	size := o.BatchSize
	if size <= 0 || size > limit {
		size = limit
	}
	return size
}
