package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mpdirectory/internal/entities"
	"github.com/mrlokans/mpdirectory/internal/settingsstore"
)

// ImportSettingsStore reads and writes the runtime import settings.
type ImportSettingsStore interface {
	GetImportSettingsInfo() settingsstore.ImportSettingsInfo
	UpdateImportSettings(update settingsstore.ImportSettingsUpdate) error
	ClearImportSettings() error
}

// Rescheduler applies changed settings to the cron schedule.
type Rescheduler interface {
	Reschedule(ctx context.Context) error
	IsRunning() bool
	NextRunTime() *time.Time
}

// PreviewClearer drops the cached preview.
type PreviewClearer interface {
	ClearCache() error
}

// ImportSettingsController handles GET/PUT/DELETE /api/settings/import.
type ImportSettingsController struct {
	store     ImportSettingsStore
	scheduler Rescheduler
	preview   PreviewClearer

	// baseCtx outlives requests; the cron schedule is bound to it.
	baseCtx context.Context
}

// NewImportSettingsController creates a new controller. scheduler and
// preview may be nil.
func NewImportSettingsController(ctx context.Context, store ImportSettingsStore, sched Rescheduler, preview PreviewClearer) *ImportSettingsController {
	return &ImportSettingsController{
		store:     store,
		scheduler: sched,
		preview:   preview,
		baseCtx:   ctx,
	}
}

// RegisterRoutes mounts the settings endpoints on an admin-only group.
func (sc *ImportSettingsController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/import", sc.GetSettings)
	group.PUT("/import", sc.UpdateSettings)
	group.DELETE("/import", sc.ResetSettings)
}

// IntervalOption is one selectable cron interval.
type IntervalOption struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// ScheduleState is the live state of the cron job.
type ScheduleState struct {
	Active  bool       `json:"active"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// ImportSettingsResponse is the body of every settings endpoint.
type ImportSettingsResponse struct {
	Settings  settingsstore.ImportSettingsInfo `json:"settings"`
	Schedule  ScheduleState                    `json:"schedule"`
	Intervals []IntervalOption                 `json:"intervals"`
	Warning   string                           `json:"warning,omitempty"`
}

// GetSettings returns the effective settings with their sources.
func (sc *ImportSettingsController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, sc.response(""))
}

// UpdateSettings saves the given fields and reschedules the cron job.
func (sc *ImportSettingsController) UpdateSettings(c *gin.Context) {
	var update settingsstore.ImportSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := sc.store.UpdateImportSettings(update); err != nil {
		if isSettingsValidationError(err) {
			respondError(c, http.StatusBadRequest, err.Error(), "invalid_setting")
			return
		}
		respondInternalError(c, err, "update import settings")
		return
	}

	// A different endpoint or paging mode makes the cached preview stale.
	if update.APIBaseURL != nil || update.APIKey != nil || update.Pagination != nil {
		sc.clearPreview()
	}

	c.JSON(http.StatusOK, sc.response(sc.reschedule()))
}

// ResetSettings drops every stored override, reverting to env and defaults.
func (sc *ImportSettingsController) ResetSettings(c *gin.Context) {
	if err := sc.store.ClearImportSettings(); err != nil {
		respondInternalError(c, err, "reset import settings")
		return
	}
	sc.clearPreview()

	c.JSON(http.StatusOK, sc.response(sc.reschedule()))
}

func (sc *ImportSettingsController) response(warning string) ImportSettingsResponse {
	resp := ImportSettingsResponse{
		Settings: sc.store.GetImportSettingsInfo(),
		Warning:  warning,
	}
	if sc.scheduler != nil {
		resp.Schedule = ScheduleState{
			Active:  sc.scheduler.IsRunning(),
			NextRun: sc.scheduler.NextRunTime(),
		}
	}
	for _, interval := range []string{entities.CronIntervalHourly, entities.CronIntervalTwiceDaily, entities.CronIntervalDaily} {
		resp.Intervals = append(resp.Intervals, IntervalOption{
			Value:       interval,
			Description: settingsstore.CronDescription(interval),
		})
	}
	return resp
}

// reschedule returns a warning for the client instead of failing the save:
// the settings are stored either way.
func (sc *ImportSettingsController) reschedule() string {
	if sc.scheduler == nil {
		return ""
	}
	if err := sc.scheduler.Reschedule(sc.baseCtx); err != nil {
		log.Printf("MP import scheduler: reschedule failed: %v", err)
		return "Settings saved, but the schedule could not be updated: " + err.Error()
	}
	return ""
}

func (sc *ImportSettingsController) clearPreview() {
	if sc.preview == nil {
		return
	}
	if err := sc.preview.ClearCache(); err != nil {
		log.Printf("MP preview: failed to clear cache: %v", err)
	}
}

func isSettingsValidationError(err error) bool {
	return errors.Is(err, settingsstore.ErrInvalidBaseURL) ||
		errors.Is(err, settingsstore.ErrInvalidCronInterval) ||
		errors.Is(err, settingsstore.ErrInvalidPagination)
}
