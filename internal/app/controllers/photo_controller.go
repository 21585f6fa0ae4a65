package controllers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/photoalbum/internal/app/models/dto"
	"github.com/yigit/photoalbum/internal/app/services"
	"github.com/yigit/photoalbum/internal/middleware"
)

// PhotoController handles synchronous photo uploads
type PhotoController struct {
	photoService services.PhotoService
	uploadDir    string
}

// NewPhotoController creates a new PhotoController
func NewPhotoController(photoService services.PhotoService, uploadDir string) *PhotoController {
	return &PhotoController{
		photoService: photoService,
		uploadDir:    uploadDir,
	}
}

// UploadPhotos matches uploaded photos to students
// @Summary Upload photos
// @Description Accepts a ZIP or RAR archive and/or individual images named by registration number
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param archive formData file false "ZIP or RAR archive of photos"
// @Param photos formData file false "Individual photo files"
// @Success 200 {object} dto.APIResponse{data=models.PhotoOutcome} "Photos processed"
// @Failure 400 {object} dto.ErrorResponse "Nothing uploaded or unreadable archive"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /photos/upload [post]
func (c *PhotoController) UploadPhotos(ctx *gin.Context) {
	spool := newUploadSpool(c.uploadDir)
	defer spool.cleanup()

	archivePath, err := spool.optional(ctx, "archive")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	cmd := services.UploadPhotosCommand{ArchivePath: archivePath}
	if form, err := ctx.MultipartForm(); err == nil {
		for _, fh := range form.File["photos"] {
			cmd.Files = append(cmd.Files, uploadedFile(fh))
		}
	}

	outcome, err := c.photoService.UploadPhotos(ctx.Request.Context(), cmd)
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

func uploadedFile(fh *multipart.FileHeader) services.UploadedFile {
	return services.UploadedFile{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}
