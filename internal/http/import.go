package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mpdirectory/internal/auth"
	"github.com/mrlokans/mpdirectory/internal/entities"
	"github.com/mrlokans/mpdirectory/internal/importer"
	"github.com/mrlokans/mpdirectory/internal/mpapi"
	"github.com/mrlokans/mpdirectory/internal/scheduler"
	"github.com/mrlokans/mpdirectory/internal/settingsstore"
)

// DefaultRecordsLimit bounds GET /api/import/records when no limit is given.
const DefaultRecordsLimit = 1000

// BatchImporter runs one import batch.
type BatchImporter interface {
	RunImport(ctx context.Context, offset int) (*importer.Result, error)
}

// PreviewProvider serves and clears the cached first page.
type PreviewProvider interface {
	GetPreview(ctx context.Context, force bool) (*importer.Preview, error)
	ClearCache() error
}

// Upstream is the remote API as seen by the admin endpoints.
type Upstream interface {
	TestConnection(ctx context.Context) mpapi.ConnectionResult
	FetchAll(ctx context.Context, limit int) ([]mpapi.Record, error)
}

// RunEnqueuer queues a full import in the background task queue.
type RunEnqueuer interface {
	EnqueueImportRun(ctx context.Context, requestedBy string) (string, error)
}

// RunStarter starts a full import in-process.
type RunStarter interface {
	RunNow() error
}

// ScheduleInfo describes the cron schedule.
type ScheduleInfo interface {
	IsRunning() bool
	IsImporting() bool
	NextRunTime() *time.Time
}

// ImportStatusReader returns the last run outcome.
type ImportStatusReader interface {
	GetImportStatus() settingsstore.ImportStatus
}

// ProgressReader returns the current or last run progress row.
type ProgressReader interface {
	GetSyncProgress() (*entities.SyncProgress, error)
}

// ImportController serves the admin import endpoints.
type ImportController struct {
	importer BatchImporter
	preview  PreviewProvider
	upstream Upstream

	enqueuer RunEnqueuer
	starter  RunStarter
	schedule ScheduleInfo
	status   ImportStatusReader
	progress ProgressReader
}

// NewImportController creates a new ImportController.
func NewImportController(batches BatchImporter, preview PreviewProvider, upstream Upstream) *ImportController {
	return &ImportController{
		importer: batches,
		preview:  preview,
		upstream: upstream,
	}
}

// SetRunEnqueuer routes full runs through the task queue (optional).
func (ic *ImportController) SetRunEnqueuer(enqueuer RunEnqueuer) {
	ic.enqueuer = enqueuer
}

// SetRunStarter runs full imports in-process when no queue is set (optional).
func (ic *ImportController) SetRunStarter(starter RunStarter) {
	ic.starter = starter
}

// SetScheduleInfo exposes the cron schedule in status responses (optional).
func (ic *ImportController) SetScheduleInfo(schedule ScheduleInfo) {
	ic.schedule = schedule
}

// SetStatusSources exposes the last run and its progress (optional).
func (ic *ImportController) SetStatusSources(status ImportStatusReader, progress ProgressReader) {
	ic.status = status
	ic.progress = progress
}

// RegisterRoutes mounts the import endpoints on an admin-only group.
func (ic *ImportController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/preview", ic.Preview)
	group.DELETE("/preview", ic.ClearPreview)
	group.POST("/batch", ic.Batch)
	group.POST("/test-connection", ic.TestConnection)
	group.POST("/run", ic.Run)
	group.GET("/status", ic.Status)
	group.GET("/records", ic.Records)
}

type previewRequest struct {
	ForceRefresh any `json:"force_refresh"`
}

// Preview handles POST /api/import/preview.
func (ic *ImportController) Preview(c *gin.Context) {
	var force bool
	if c.ContentType() == gin.MIMEJSON && c.Request.ContentLength != 0 {
		var req previewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request body.")
			return
		}
		force = parseFlag(req.ForceRefresh)
	} else {
		force = parseFlag(c.PostForm("force_refresh"))
	}

	preview, err := ic.preview.GetPreview(c.Request.Context(), force)
	if err != nil {
		respondImportError(c, err, "import preview")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// ClearPreview handles DELETE /api/import/preview.
func (ic *ImportController) ClearPreview(c *gin.Context) {
	if err := ic.preview.ClearCache(); err != nil {
		respondImportError(c, err, "clear preview")
		return
	}
	respondMessage(c, http.StatusOK, "Preview cache cleared.")
}

type batchRequest struct {
	Offset any `json:"offset"`
	// Batch is accepted for compatibility. The configured batch size wins.
	Batch any `json:"batch"`
}

// Batch handles POST /api/import/batch: one batch at the given offset.
func (ic *ImportController) Batch(c *gin.Context) {
	var raw any
	if c.ContentType() == gin.MIMEJSON && c.Request.ContentLength != 0 {
		var req batchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request body.")
			return
		}
		raw = req.Offset
	} else {
		raw = c.PostForm("offset")
	}

	offset, ok := parseOffset(raw)
	if !ok {
		respondMessage(c, http.StatusBadRequest, "offset must be a number.")
		return
	}

	result, err := ic.importer.RunImport(c.Request.Context(), offset)
	if err != nil {
		respondImportError(c, err, "import batch")
		return
	}
	c.JSON(http.StatusOK, result)
}

// TestConnection handles POST /api/import/test-connection.
func (ic *ImportController) TestConnection(c *gin.Context) {
	c.JSON(http.StatusOK, ic.upstream.TestConnection(c.Request.Context()))
}

// Run handles POST /api/import/run: a full import in the background.
func (ic *ImportController) Run(c *gin.Context) {
	if ic.enqueuer != nil {
		taskID, err := ic.enqueuer.EnqueueImportRun(c.Request.Context(), requestedBy(c))
		if err != nil {
			respondImportError(c, err, "enqueue import run")
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Import queued.",
			"task_id": taskID,
		})
		return
	}

	if ic.starter != nil {
		if err := ic.starter.RunNow(); err != nil {
			if errors.Is(err, scheduler.ErrImportInProgress) {
				respondMessage(c, http.StatusConflict, "An import is already in progress.")
				return
			}
			respondImportError(c, err, "start import run")
			return
		}
		respondMessage(c, http.StatusAccepted, "Import started.")
		return
	}

	respondMessage(c, http.StatusServiceUnavailable, "Background imports are not available.")
}

// ImportStatusResponse is the body of GET /api/import/status.
type ImportStatusResponse struct {
	Last      settingsstore.ImportStatus `json:"last"`
	Progress  *entities.SyncProgress     `json:"progress,omitempty"`
	Scheduled bool                       `json:"scheduled"`
	Importing bool                       `json:"importing"`
	NextRun   *time.Time                 `json:"next_run,omitempty"`
}

// Status handles GET /api/import/status.
func (ic *ImportController) Status(c *gin.Context) {
	var resp ImportStatusResponse

	if ic.status != nil {
		resp.Last = ic.status.GetImportStatus()
	}
	if ic.progress != nil {
		progress, err := ic.progress.GetSyncProgress()
		if err != nil {
			respondInternalError(c, err, "import progress")
			return
		}
		resp.Progress = progress
	}
	if ic.schedule != nil {
		resp.Scheduled = ic.schedule.IsRunning()
		resp.Importing = ic.schedule.IsImporting()
		resp.NextRun = ic.schedule.NextRunTime()
	}

	c.JSON(http.StatusOK, resp)
}

// Records handles GET /api/import/records: every upstream record, walked
// page by page.
func (ic *ImportController) Records(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", DefaultRecordsLimit)
	if !ok {
		return
	}

	records, err := ic.upstream.FetchAll(c.Request.Context(), limit)
	if err != nil {
		respondImportError(c, err, "fetch records")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

func requestedBy(c *gin.Context) string {
	if name := auth.GetUsername(c); name != "" {
		return name
	}
	return string(auth.GetAuthType(c))
}
