package services

import (
	"github.com/yigit/photoalbum/internal/app/jobs"
	"github.com/yigit/photoalbum/internal/app/repositories"
	"github.com/yigit/photoalbum/internal/metrics"
	"github.com/yigit/photoalbum/internal/pkg/filestorage"
)

// Services groups the pipeline services used by the HTTP and CLI adapters.
type Services struct {
	Import    ImportService
	Photos    PhotoService
	Scans     ScanService
	Reference ReferenceService
}

// Options collects the per-service settings.
type Options struct {
	Import ImportOptions
	Scan   ScanOptions
}

// NewServices wires the services onto the repositories.
func NewServices(repos *repositories.Repositories, storage filestorage.PhotoStorage, registry *jobs.Registry, opts Options, m *metrics.Metrics) *Services {
	return &Services{
		Import:    NewImportService(repos.StateRepository, repos.SchoolRepository, repos.StudentRepository, opts.Import, m),
		Photos:    NewPhotoService(repos.StudentRepository, storage, m),
		Scans:     NewScanService(repos.StudentRepository, registry, opts.Scan, m),
		Reference: NewReferenceService(repos.StateRepository, repos.SchoolRepository, repos.StudentRepository),
	}
}
