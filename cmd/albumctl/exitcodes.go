package main

import (
	"errors"

	"github.com/yigit/photoalbum/internal/pkg/apperrors"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
	exitDBWrite    = 5
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// exitCode prefers an explicit code, then classifies pipeline errors.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	switch {
	case errors.Is(err, apperrors.ErrStoreWrite):
		return exitDBWrite
	case errors.Is(err, apperrors.ErrMalformedSourceFile),
		errors.Is(err, apperrors.ErrUnsupportedFormat),
		errors.Is(err, apperrors.ErrInvalidPath),
		errors.Is(err, apperrors.ErrBadRequest):
		return exitValidation
	}
	return exitFailure
}
