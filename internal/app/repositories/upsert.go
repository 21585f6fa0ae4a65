package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/dberrors"
	"github.com/yigit/photoalbum/internal/pkg/helpers"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// upsertSpec describes how one entity type maps onto a multi-row
// INSERT ... ON CONFLICT statement.
type upsertSpec[T any] struct {
	table    string
	columns  []string
	conflict string
	// update lists the columns refreshed from EXCLUDED on conflict.
	// When empty, conflicting rows are left untouched (DO NOTHING).
	update []string
	key    func(T) string
	values func(T) []interface{}
}

func (s upsertSpec[T]) suffix() string {
	if len(s.update) == 0 {
		return "ON CONFLICT (" + s.conflict + ") DO NOTHING"
	}
	sets := make([]string, 0, len(s.update)+1)
	for _, col := range s.update {
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	sets = append(sets, "updated_at = now()")
	return "ON CONFLICT (" + s.conflict + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

// batchError classifies a failed batch statement.
func batchError(table string, batch int, err error) error {
	if dberrors.IsForeignKeyViolation(err) {
		return apperrors.NewReferentialError(table, batch, dberrors.ConstraintName(err), err)
	}
	werr := apperrors.NewStoreWriteError(table, batch, err)
	var custom *apperrors.CustomError
	if dberrors.IsParameterLimitError(err) && errors.As(werr, &custom) {
		custom.Details["parameter_limit"] = true
	}
	return werr
}

// bulkWrite writes items in batches, each batch a single autocommitted
// statement. Rows sharing a key are collapsed to the last occurrence first,
// since ON CONFLICT DO UPDATE cannot touch the same row twice in one
// statement. It returns the number of rows in batches that were committed;
// on failure that count is still authoritative and the error wraps
// ErrStoreWrite.
func bulkWrite[T any](ctx context.Context, db DBTX, sb squirrel.StatementBuilderType, spec upsertSpec[T], items []T, opts BatchOptions) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if len(spec.update) > 0 && spec.key != nil {
		items = helpers.DedupeLast(items, spec.key)
	}

	size := opts.rowsPerBatch(len(spec.columns))
	suffix := spec.suffix()
	written := 0

	for i, batch := range helpers.Chunk(items, size) {
		if err := ctx.Err(); err != nil {
			return written, apperrors.NewStoreWriteError(spec.table, i, err)
		}

		ib := sb.Insert(spec.table).Columns(spec.columns...)
		for _, item := range batch {
			ib = ib.Values(spec.values(item)...)
		}
		sql, args, err := ib.Suffix(suffix).ToSql()
		if err != nil {
			logger.Error().Err(err).Str("table", spec.table).Msg("Error building bulk upsert SQL")
			return written, apperrors.NewStoreWriteError(spec.table, i, err)
		}

		if _, err := db.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).
				Str("table", spec.table).
				Int("batch", i).
				Int("rows", len(batch)).
				Int("committed", written).
				Msg("Bulk upsert batch failed")
			return written, batchError(spec.table, i, err)
		}
		written += len(batch)

		logger.Debug().Str("table", spec.table).Int("batch", i).Int("rows", len(batch)).Msg("Bulk upsert batch committed")
	}

	return written, nil
}
