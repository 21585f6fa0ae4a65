package apperrors

import (
	"errors"
	"fmt"
)

// Pipeline errors
var (
	// ErrMalformedSourceFile means an extract or archive could not be opened or its structure parsed
	ErrMalformedSourceFile = errors.New("malformed source file")
	// ErrMissingRequiredField means a single record lacks a mandatory field
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrReferentialViolation means a child record references an unknown parent
	ErrReferentialViolation = errors.New("referential violation")
	// ErrStoreWrite means a batch failed to commit
	ErrStoreWrite = errors.New("store write failed")
	// ErrInvalidPath means a scan target is missing or is not a directory
	ErrInvalidPath = errors.New("invalid path")
	// ErrUnsupportedFormat means the file extension or magic bytes are not recognised
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Resource errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrJobNotFound      = errors.New("scan job not found")
	ErrBadRequest       = errors.New("bad request")
)

// Error codes carried by CustomError
const (
	CodeMalformedSource = "IMP_001"
	CodeMissingField    = "IMP_002"
	CodeReferential     = "IMP_003"
	CodeStoreWrite      = "IMP_004"
	CodeInvalidPath     = "IMP_005"
	CodeUnsupported     = "IMP_006"
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewMalformedSourceFileError reports a file that could not be opened or parsed.
func NewMalformedSourceFileError(path string, cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrMalformedSourceFile, cause),
		Message: fmt.Sprintf("malformed source file %s: %v", path, cause),
		Code:    CodeMalformedSource,
		Details: map[string]interface{}{"path": path},
	}
}

// NewMissingFieldError reports a record without a mandatory field. row is 1-based.
func NewMissingFieldError(entity, field string, row int) error {
	return &CustomError{
		Err:     ErrMissingRequiredField,
		Message: fmt.Sprintf("%s record %d: missing required field %s", entity, row, field),
		Code:    CodeMissingField,
		Details: map[string]interface{}{"entity": entity, "field": field, "row": row},
	}
}

// NewReferentialError reports a batch the store rejected because a row
// references a parent that no longer exists. It is also a store write error.
func NewReferentialError(table string, batch int, constraint string, cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrReferentialViolation, ErrStoreWrite, cause),
		Message: fmt.Sprintf("writing %s batch %d: unknown parent (%s): %v", table, batch, constraint, cause),
		Code:    CodeReferential,
		Details: map[string]interface{}{"table": table, "batch": batch, "constraint": constraint},
	}
}

// NewStoreWriteError reports a failed batch. batch is the zero-based batch index.
func NewStoreWriteError(table string, batch int, cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrStoreWrite, cause),
		Message: fmt.Sprintf("writing %s batch %d: %v", table, batch, cause),
		Code:    CodeStoreWrite,
		Details: map[string]interface{}{"table": table, "batch": batch},
	}
}

// NewInvalidPathError reports an unusable scan target.
func NewInvalidPathError(path, reason string) error {
	return &CustomError{
		Err:     ErrInvalidPath,
		Message: fmt.Sprintf("invalid path %s: %s", path, reason),
		Code:    CodeInvalidPath,
		Details: map[string]interface{}{"path": path},
	}
}

// NewUnsupportedFormatError reports a file whose format is not recognised.
func NewUnsupportedFormatError(path string) error {
	return &CustomError{
		Err:     errors.Join(ErrUnsupportedFormat, ErrMalformedSourceFile),
		Message: fmt.Sprintf("unsupported file format: %s", path),
		Code:    CodeUnsupported,
		Details: map[string]interface{}{"path": path},
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
