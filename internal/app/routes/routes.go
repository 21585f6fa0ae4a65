package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/photoalbum/internal/app/controllers"
	"github.com/yigit/photoalbum/internal/app/models/dto"
	"github.com/yigit/photoalbum/internal/middleware"
	"github.com/yigit/photoalbum/internal/pkg/websocket"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Import    *controllers.ImportController
	Photo     *controllers.PhotoController
	Scan      *controllers.ScanController
	Reference *controllers.ReferenceController
	// ScanStream is optional
	ScanStream *websocket.Handler
}

// SetupRouter configures all application routes. metricsHandler, when
// non-nil, is served at /metrics.
func SetupRouter(router *gin.Engine, c Controllers, metricsHandler http.Handler) {
	// API version group
	v1 := router.Group("/api/v1")

	imports := v1.Group("/imports")
	{
		imports.POST("", c.Import.ImportAll)
		imports.POST("/states", c.Import.ImportStates)
		imports.POST("/schools", c.Import.ImportSchools)
		imports.POST("/students", c.Import.ImportStudents)
	}

	v1.GET("/states", c.Reference.ListStates)
	v1.GET("/schools", c.Reference.ListSchools)
	v1.GET("/students/counts", c.Reference.StudentCounts)

	photos := v1.Group("/photos")
	{
		photos.POST("/upload", c.Photo.UploadPhotos)

		scans := photos.Group("/scans")
		{
			scans.POST("", middleware.ValidateRequest(controllers.NewStartScanRequest), c.Scan.StartScan)
			scans.GET("", c.Scan.ListScans)
			scans.GET("/:id", c.Scan.GetScan)
			scans.DELETE("/:id", c.Scan.CancelScan)
			if c.ScanStream != nil {
				scans.GET("/:id/stream", c.ScanStream.HandleConnection)
			}
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
