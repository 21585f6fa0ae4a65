package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/app/models/dto"
	"github.com/yigit/photoalbum/internal/app/services"
	"github.com/yigit/photoalbum/internal/middleware"
)

// ImportController handles reference data uploads
type ImportController struct {
	importService services.ImportService
	uploadDir     string
}

// NewImportController creates a new ImportController
func NewImportController(importService services.ImportService, uploadDir string) *ImportController {
	return &ImportController{
		importService: importService,
		uploadDir:     uploadDir,
	}
}

type stageFunc func(ctx context.Context, path string) (*models.StageResult, error)

// importStage spools the "file" form field and runs one stage on it
func (c *ImportController) importStage(ctx *gin.Context, run stageFunc) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid or missing file").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	spool := newUploadSpool(c.uploadDir)
	defer spool.cleanup()

	path, err := spool.save(ctx, fh, "import")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := run(ctx.Request.Context(), path)
	if err != nil {
		if result != nil {
			middleware.HandleAPIErrorWithData(ctx, err, result)
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// ImportStates handles a state extract upload
// @Summary Import states
// @Description Upserts states from a DBF, CSV or XLSX extract
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "State extract"
// @Success 200 {object} dto.APIResponse{data=models.StageResult} "States imported"
// @Failure 400 {object} dto.ErrorResponse "Unreadable or unsupported file"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imports/states [post]
func (c *ImportController) ImportStates(ctx *gin.Context) {
	c.importStage(ctx, c.importService.ImportStates)
}

// ImportSchools handles a school extract upload
// @Summary Import schools
// @Description Upserts schools whose state is known; the rest are reported as skipped
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "School extract"
// @Success 200 {object} dto.APIResponse{data=models.StageResult} "Schools imported"
// @Failure 400 {object} dto.ErrorResponse "Unreadable or unsupported file"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imports/schools [post]
func (c *ImportController) ImportSchools(ctx *gin.Context) {
	c.importStage(ctx, c.importService.ImportSchools)
}

// ImportStudents handles a student extract upload
// @Summary Import students
// @Description Inserts new students; unknown school numbers are reported
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Student extract"
// @Success 200 {object} dto.APIResponse{data=models.StageResult} "Students imported"
// @Failure 400 {object} dto.ErrorResponse "Unreadable or unsupported file"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imports/students [post]
func (c *ImportController) ImportStudents(ctx *gin.Context) {
	c.importStage(ctx, c.importService.ImportStudents)
}

// ImportAll runs every supplied stage in order
// @Summary Import reference data
// @Description Runs the states, schools and students stages for whichever files are supplied
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param states formData file false "State extract"
// @Param schools formData file false "School extract"
// @Param students formData file false "Student extract"
// @Success 200 {object} dto.APIResponse{data=models.ImportOutcome} "Import finished"
// @Failure 400 {object} dto.ErrorResponse "No files or unreadable file"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imports [post]
func (c *ImportController) ImportAll(ctx *gin.Context) {
	spool := newUploadSpool(c.uploadDir)
	defer spool.cleanup()

	var files services.ImportFiles
	for _, f := range []struct {
		field string
		dst   *string
	}{
		{models.StageStates, &files.States},
		{models.StageSchools, &files.Schools},
		{models.StageStudents, &files.Students},
	} {
		path, err := spool.optional(ctx, f.field)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		*f.dst = path
	}

	outcome, err := c.importService.ImportAll(ctx.Request.Context(), files)
	if err != nil {
		if outcome != nil {
			middleware.HandleAPIErrorWithData(ctx, err, outcome)
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(outcome))
}
