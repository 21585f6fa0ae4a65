package filestorage

import "io"

// PhotoInfo describes a photo written to the store
type PhotoInfo struct {
	Identifier string // Student identifier the file is named after
	Path       string // Absolute path of the stored file
	Size       int64  // Size in bytes
}

// PhotoStorage defines the interface for photo storage operations
type PhotoStorage interface {
	// SavePhoto writes content as <identifier><ext>, replacing any previous file
	SavePhoto(identifier, ext string, content io.Reader) (*PhotoInfo, error)
}
