package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the pipeline cares about.
const (
	codeForeignKeyViolation = "23503"
	codeProtocolViolation   = "08P01"
	codeProgramLimit        = "54000"
)

// IsForeignKeyViolation reports a dangling reference rejected by the store.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// IsParameterLimitError reports a statement rejected for carrying too many bind parameters.
func IsParameterLimitError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeProtocolViolation || pgErr.Code == codeProgramLimit
}

// ConstraintName returns the constraint named by a PostgreSQL error, if any.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
