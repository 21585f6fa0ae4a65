package websocket

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/photoalbum/internal/app/jobs"
	"github.com/yigit/photoalbum/internal/middleware"
)

// JobLookup resolves a scan job by id
type JobLookup interface {
	GetScan(id string) (*jobs.Job, error)
}

// Handler streams scan job progress over WebSocket connections
type Handler struct {
	scans    JobLookup
	interval time.Duration
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(scans JobLookup, interval time.Duration, logger zerolog.Logger) *Handler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Handler{
		scans:    scans,
		interval: interval,
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Stream scan progress
// @Description Upgrades to a WebSocket that receives the job status as JSON whenever it changes and closes when the job finishes
// @Tags photos
// @Param id path string true "Scan job ID"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 404 {object} dto.ErrorResponse "Scan not found"
// @Router /photos/scans/{id}/stream [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	job, err := h.scans.GetScan(c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to upgrade connection to WebSocket")
		return
	}
	defer conn.Close()

	w := &watcher{
		conn:     conn,
		job:      job,
		interval: h.interval,
		logger:   h.logger.With().Str("job_id", job.ID).Logger(),
	}

	h.logger.Debug().
		Str("job_id", job.ID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Scan progress stream opened")

	closed := make(chan struct{})
	go w.readPump(closed)
	w.writePump(closed)
}
