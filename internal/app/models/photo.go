package models

// PhotoMatch pairs an identifier derived from a file name with the file's location.
// It only lives until the batch that carries it has been flushed.
type PhotoMatch struct {
	Identifier string
	Path       string
}
