package archive

import (
	"errors"
	"io"

	"github.com/nwaples/rardecode/v2"
)

func walkRar(p string, fn WalkFunc) error {
	rc, err := rardecode.OpenReader(p)
	if err != nil {
		return malformed(p, err)
	}
	defer rc.Close()

	for {
		hdr, err := rc.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return malformed(p, err)
		}
		if hdr.IsDir || skippable(hdr.Name) {
			continue
		}

		// The reader is positioned on the current entry until Next is called again.
		entry := Entry{
			Name:     baseName(hdr.Name),
			FullName: hdr.Name,
			Size:     hdr.UnPackedSize,
			open:     func() (io.ReadCloser, error) { return io.NopCloser(rc), nil },
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
}
