package services

import (
	"path"
	"strings"
)

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// DeriveIdentifier returns the student identifier encoded in a photo file
// name: the base name up to the first dot, trimmed. "reg.no.png" yields
// "reg"; registration numbers containing dots cannot be expressed.
func DeriveIdentifier(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return strings.TrimSpace(base)
}

// IsImage reports whether name has one of the accepted image extensions,
// ignoring case.
func IsImage(name string) bool {
	_, ok := imageExts[strings.ToLower(path.Ext(strings.TrimSpace(name)))]
	return ok
}

// photoExt returns the extension used to store a photo.
func photoExt(name string) string {
	return strings.ToLower(path.Ext(strings.TrimSpace(name)))
}
