// Package archive iterates the file entries of zip and rar archives.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yigit/photoalbum/internal/pkg/apperrors"
)

// Format identifies a supported archive container.
type Format string

const (
	FormatZip Format = "zip"
	FormatRar Format = "rar"
)

var (
	zipMagic = []byte("PK\x03\x04")
	// Covers RAR 1.5-4.x ("Rar!\x1a\x07\x00") and 5.x ("Rar!\x1a\x07\x01\x00").
	rarMagic = []byte("Rar!\x1a\x07")
)

// ErrStop ends a Walk early without reporting an error.
var ErrStop = errors.New("archive: stop walking")

// Entry is one regular file inside an archive. Open must be called before
// the walk moves on to the next entry.
type Entry struct {
	// Name is the base name of the entry; directory components are dropped.
	Name string
	// FullName is the path as stored in the archive.
	FullName string
	Size     int64
	open     func() (io.ReadCloser, error)
}

// Open returns the decompressed content of the entry.
func (e Entry) Open() (io.ReadCloser, error) {
	return e.open()
}

// WalkFunc is called for every file entry. Returning ErrStop ends the walk.
type WalkFunc func(Entry) error

// Detect chooses the container format from the file signature, falling back
// to the extension for empty or unreadable headers.
func Detect(p string) (Format, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", apperrors.NewMalformedSourceFileError(p, err)
	}
	defer f.Close()

	head := make([]byte, 8)
	n, _ := io.ReadFull(f, head)
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return FormatZip, nil
	case bytes.HasPrefix(head, rarMagic):
		return FormatRar, nil
	}

	switch strings.ToLower(filepath.Ext(p)) {
	case ".zip":
		return FormatZip, nil
	case ".rar":
		return FormatRar, nil
	}
	return "", apperrors.NewUnsupportedFormatError(p)
}

// Walk calls fn for every regular file in the archive at p, in archive order.
// Directory entries are skipped. An error from fn other than ErrStop aborts
// the walk and is returned.
func Walk(p string, fn WalkFunc) error {
	format, err := Detect(p)
	if err != nil {
		return err
	}

	switch format {
	case FormatZip:
		err = walkZip(p, fn)
	case FormatRar:
		err = walkRar(p, fn)
	default:
		return apperrors.NewUnsupportedFormatError(p)
	}
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// baseName strips both slash styles since archives built on Windows store
// backslash separators.
func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return path.Base(name)
}

func skippable(name string) bool {
	base := baseName(name)
	return base == "" || base == "." || base == "/" || strings.HasPrefix(name, "__MACOSX/")
}

func malformed(p string, err error) error {
	return apperrors.NewMalformedSourceFileError(p, fmt.Errorf("reading archive: %w", err))
}
