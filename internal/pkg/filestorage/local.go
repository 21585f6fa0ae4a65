package filestorage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// ErrTooLarge is returned when a photo exceeds the configured size limit.
var ErrTooLarge = errors.New("photo exceeds size limit")

// LocalStorage saves photos into a single directory on the local filesystem.
type LocalStorage struct {
	basePath string // Absolute directory where photos are stored
	maxBytes int64  // Upper bound on a single photo; 0 disables the check
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath string, maxBytes int64) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, apperrors.NewInvalidPathError(basePath, err.Error())
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		logger.Error().Err(err).Str("path", abs).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", abs, err)
	}
	logger.Info().Str("path", abs).Msg("Photo storage directory ensured")

	return &LocalStorage{basePath: abs, maxBytes: maxBytes}, nil
}

// Root returns the storage directory.
func (ls *LocalStorage) Root() string {
	return ls.basePath
}

// NormalizeExt lower-cases ext, ensures the leading dot and maps .jpeg to .jpg.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}

// SavePhoto writes content to <root>/<identifier><ext>. The file is written
// to a temporary name first and renamed into place, so readers never observe
// a partial photo and an existing photo is replaced atomically.
func (ls *LocalStorage) SavePhoto(identifier, ext string, content io.Reader) (*PhotoInfo, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || identifier != filepath.Base(identifier) || identifier == ".." {
		return nil, apperrors.NewInvalidPathError(identifier, "photo identifier must be a plain file name")
	}

	name := identifier + NormalizeExt(ext)
	dstPath := filepath.Join(ls.basePath, name)

	tmp, err := os.CreateTemp(ls.basePath, "."+name+".*.tmp")
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create temporary file")
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	src := content
	if ls.maxBytes > 0 {
		src = io.LimitReader(content, ls.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		cleanup()
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy photo content")
		return nil, fmt.Errorf("failed to save photo content: %w", err)
	}
	if ls.maxBytes > 0 && n > ls.maxBytes {
		cleanup()
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, name, ls.maxBytes)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to flush photo: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to set photo permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to move photo into place")
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	logger.Debug().Str("identifier", identifier).Str("path", dstPath).Int64("bytes", n).Msg("Photo saved")
	return &PhotoInfo{Identifier: identifier, Path: dstPath, Size: n}, nil
}
