package archive

import (
	"archive/zip"
	"io"
	"strings"
)

func walkZip(p string, fn WalkFunc) error {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return malformed(p, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") || skippable(f.Name) {
			continue
		}
		zf := f
		entry := Entry{
			Name:     baseName(zf.Name),
			FullName: zf.Name,
			Size:     int64(zf.UncompressedSize64),
			open:     func() (io.ReadCloser, error) { return zf.Open() },
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}
