// Package extract reads legacy tabular extract files (dBase, CSV, XLSX) as a
// lazy sequence of raw records.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/yigit/photoalbum/internal/pkg/apperrors"
)

// Reader yields records in file order. Next returns io.EOF once the file is
// exhausted. A Reader is not restartable and not safe for concurrent use.
type Reader interface {
	Fields() []string
	Next() (Record, error)
	Close() error
}

// Options controls decoding of the extract.
type Options struct {
	// Encoding names the code page of DBF text fields and of CSV files that
	// are not valid UTF-8. Defaults to latin1.
	Encoding string
}

// Open picks a reader by file extension.
func Open(path string, opts Options) (Reader, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, apperrors.NewMalformedSourceFileError(path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".dbf":
		return openDBF(path, enc)
	case ".csv", ".txt":
		return openCSV(path, enc)
	case ".xlsx", ".xlsm":
		return openXLSX(path)
	default:
		return nil, apperrors.NewUnsupportedFormatError(path)
	}
}

// Supported reports whether Open understands the file's extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".dbf", ".csv", ".txt", ".xlsx", ".xlsm":
		return true
	}
	return false
}
