package controllers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// uploadSpool writes multipart files into a working directory so the
// extract and archive readers can open them by path. The original
// extension is kept because format detection relies on it.
type uploadSpool struct {
	dir   string
	paths []string
}

func newUploadSpool(dir string) *uploadSpool {
	return &uploadSpool{dir: dir}
}

// save stores fh under a unique name and returns its path.
func (s *uploadSpool) save(ctx *gin.Context, fh *multipart.FileHeader, prefix string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	tmp, err := os.CreateTemp(s.dir, prefix+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	s.paths = append(s.paths, path)

	if err := ctx.SaveUploadedFile(fh, path); err != nil {
		return "", fmt.Errorf("failed to store upload %s: %w", fh.Filename, err)
	}
	return path, nil
}

// optional saves the form file named field when the request carries one.
func (s *uploadSpool) optional(ctx *gin.Context, field string) (string, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return "", nil
	}
	return s.save(ctx, fh, field)
}

// cleanup removes every spooled file.
func (s *uploadSpool) cleanup() {
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to remove spooled upload")
		}
	}
	s.paths = nil
}
