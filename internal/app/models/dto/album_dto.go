package dto

import (
	"github.com/yigit/photoalbum/internal/app/jobs"
	"github.com/yigit/photoalbum/internal/app/models"
)

// StartScanRequest names a directory on the server to reconcile
type StartScanRequest struct {
	Dir string `json:"dir" validate:"required,min=1" example:"/srv/album/photos"`
}

// ScanJobResponse is the handle returned when a scan starts
type ScanJobResponse struct {
	JobID     string `json:"jobId" example:"6f1c2d8e-1b43-4f55-a9a4-0d6c5a3b9e10"`
	Dir       string `json:"dir" example:"/srv/album/photos"`
	StatusURL string `json:"statusUrl" example:"/api/v1/photos/scans/6f1c2d8e-1b43-4f55-a9a4-0d6c5a3b9e10"`
}

// ScanListResponse lists known scan jobs, newest first
type ScanListResponse struct {
	Scans []jobs.Status `json:"scans"`
}

// StateListResponse lists stored states
type StateListResponse struct {
	States []*models.State `json:"states"`
}

// SchoolListResponse lists stored schools
type SchoolListResponse struct {
	Schools []*models.School `json:"schools"`
}

// StudentCountsResponse carries student totals grouped by state and school
type StudentCountsResponse struct {
	ByState  map[string]int `json:"byState"`
	BySchool map[string]int `json:"bySchool"`
}
