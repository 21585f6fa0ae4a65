package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/photoalbum/internal/app/models/dto"
	"github.com/yigit/photoalbum/internal/app/services"
	"github.com/yigit/photoalbum/internal/middleware"
)

// ScanController handles background directory scans
type ScanController struct {
	scanService services.ScanService
}

// NewScanController creates a new ScanController
func NewScanController(scanService services.ScanService) *ScanController {
	return &ScanController{scanService: scanService}
}

// NewStartScanRequest allocates the body bound by the validation middleware
func NewStartScanRequest() interface{} {
	return &dto.StartScanRequest{}
}

// StartScan starts a background scan of a server-side directory
// @Summary Start a directory scan
// @Description Matches every image under dir to a student and records its path in batches
// @Tags photos
// @Accept json
// @Produce json
// @Param request body dto.StartScanRequest true "Directory to scan"
// @Success 202 {object} dto.APIResponse{data=dto.ScanJobResponse} "Scan started"
// @Failure 400 {object} dto.ErrorResponse "Directory missing, relative or not a directory"
// @Router /photos/scans [post]
func (c *ScanController) StartScan(ctx *gin.Context) {
	req, ok := ctx.MustGet(middleware.ValidatedBodyKey).(*dto.StartScanRequest)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid scan request")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	job, err := c.scanService.StartScan(req.Dir)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, dto.NewMessageResponse(dto.ScanJobResponse{
		JobID:     job.ID,
		Dir:       job.Dir,
		StatusURL: ctx.FullPath() + "/" + job.ID,
	}, "Scan started"))
}

// GetScan returns the status of one scan
// @Summary Get scan status
// @Tags photos
// @Produce json
// @Param id path string true "Scan job ID"
// @Success 200 {object} dto.APIResponse{data=jobs.Status} "Scan status"
// @Failure 404 {object} dto.ErrorResponse "Scan not found"
// @Router /photos/scans/{id} [get]
func (c *ScanController) GetScan(ctx *gin.Context) {
	job, err := c.scanService.GetScan(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job.Status()))
}

// ListScans lists known scans, newest first
// @Summary List scans
// @Tags photos
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ScanListResponse} "Scans"
// @Router /photos/scans [get]
func (c *ScanController) ListScans(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ScanListResponse{
		Scans: c.scanService.ListScans(),
	}))
}

// CancelScan stops a running scan at its next batch boundary
// @Summary Cancel a scan
// @Tags photos
// @Produce json
// @Param id path string true "Scan job ID"
// @Success 200 {object} dto.APIResponse{data=jobs.Status} "Cancellation requested"
// @Failure 404 {object} dto.ErrorResponse "Scan not found"
// @Router /photos/scans/{id} [delete]
func (c *ScanController) CancelScan(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := c.scanService.CancelScan(id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	job, err := c.scanService.GetScan(id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(job.Status(), "Cancellation requested"))
}
