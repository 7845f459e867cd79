package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/mpdirectory/internal/entities"
	"github.com/mrlokans/mpdirectory/internal/importer"
	"github.com/mrlokans/mpdirectory/internal/settingsstore"
)

// SafetyOffsetLimit stops a run whose offset keeps growing past any
// realistic number of MPs.
const SafetyOffsetLimit = 10000

// DefaultRunTimeout bounds a scheduled run.
const DefaultRunTimeout = 30 * time.Minute

// ErrImportInProgress is returned when a run is already active.
var ErrImportInProgress = errors.New("MP import is already in progress")

// BatchRunner imports one batch starting at offset.
type BatchRunner interface {
	RunImport(ctx context.Context, offset int) (*importer.Result, error)
}

// SettingsProvider supplies the runtime import settings.
type SettingsProvider interface {
	GetImportSettings() entities.ImportSettings
}

// PreviewClearer drops the cached preview.
type PreviewClearer interface {
	ClearCache() error
}

// ProgressReporter records run progress.
type ProgressReporter interface {
	StartRun(runID string, totalItems int) error
	UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error
	CompleteSync(succeeded bool, errorMsg string) error
	IsSyncRunning() (bool, error)
}

// StatusRecorder stores the outcome of the last run.
type StatusRecorder interface {
	SetImportStatus(status, message string) error
}

// Summary describes a finished run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Batches  int           `json:"batches"`
	Imported int           `json:"imported"`
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Offset   int           `json:"offset"`
	Complete bool          `json:"complete"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ImportScheduler runs the full MP import on a cron schedule or on demand.
type ImportScheduler struct {
	runner   BatchRunner
	settings SettingsProvider
	preview  PreviewClearer
	progress ProgressReporter
	status   StatusRecorder

	runTimeout time.Duration

	cron        *cron.Cron
	entryID     cron.EntryID
	mu          sync.RWMutex
	isRunning   bool
	isImporting bool
	stopCh      chan struct{}
}

// NewImportScheduler creates a scheduler driving runner.
func NewImportScheduler(runner BatchRunner, settings SettingsProvider, preview PreviewClearer) *ImportScheduler {
	return &ImportScheduler{
		runner:     runner,
		settings:   settings,
		preview:    preview,
		runTimeout: DefaultRunTimeout,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// SetProgressReporter sets the run progress tracker (optional).
func (s *ImportScheduler) SetProgressReporter(reporter ProgressReporter) {
	s.progress = reporter
}

// SetStatusRecorder sets where the last run status is stored (optional).
func (s *ImportScheduler) SetStatusRecorder(recorder StatusRecorder) {
	s.status = recorder
}

// SetRunTimeout overrides the timeout of scheduled runs.
func (s *ImportScheduler) SetRunTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.runTimeout = timeout
	}
}

// Start begins the scheduler if scheduled imports are enabled.
func (s *ImportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	settings := s.settings.GetImportSettings()
	if !settings.EnableCron {
		log.Printf("MP import scheduler: disabled")
		return nil
	}
	if settings.APIBaseURL == "" {
		log.Printf("MP import scheduler: API base URL not configured, skipping")
		return nil
	}

	schedule := settingsstore.CronExpression(settings.CronInterval)
	if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	entryID, err := s.cron.AddFunc(schedule, s.runScheduled)
	if err != nil {
		return fmt.Errorf("failed to schedule import job: %w", err)
	}
	s.entryID = entryID

	stopCh := make(chan struct{})
	s.stopCh = stopCh

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(settings.CronInterval, time.Now())
	log.Printf("MP import scheduler: started with schedule '%s' (%s). Next run: %v",
		schedule,
		settingsstore.CronDescription(settings.CronInterval),
		nextRun)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopCh:
		}
	}()

	return nil
}

// Stop removes the job and waits for a cron-triggered run to finish.
func (s *ImportScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.cron.Remove(s.entryID)
	stopCtx := s.cron.Stop()
	close(s.stopCh)
	s.isRunning = false
	s.mu.Unlock()

	// Running jobs take the lock, so wait outside it.
	<-stopCtx.Done()

	log.Printf("MP import scheduler: stopped")
}

// Reschedule applies changed settings.
func (s *ImportScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow starts a run in the background.
func (s *ImportScheduler) RunNow() error {
	if s.IsImporting() {
		return ErrImportInProgress
	}
	go s.runScheduled()
	return nil
}

// IsRunning returns whether the cron schedule is active.
func (s *ImportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsImporting returns whether a run is in progress in this process.
func (s *ImportScheduler) IsImporting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isImporting
}

// NextRunTime returns when the next scheduled run will start, or nil.
func (s *ImportScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *ImportScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		log.Printf("MP import: skipped (%v)", err)
	}
}

// RunOnce imports every batch until the orchestrator reports completion.
// Batch errors end the run and are reported in the summary, not returned;
// the error result is only ErrImportInProgress or a progress tracking failure.
func (s *ImportScheduler) RunOnce(ctx context.Context) (*Summary, error) {
	if err := s.beginRun(); err != nil {
		return nil, err
	}
	defer s.endRun()

	summary := &Summary{RunID: uuid.NewString()}
	if s.progress != nil {
		if err := s.progress.StartRun(summary.RunID, 0); err != nil {
			return nil, fmt.Errorf("start import progress: %w", err)
		}
	}
	s.recordStatus(settingsstore.ImportStatusRunning, "Import started")

	log.Printf("MP import: starting scheduled import")
	startTime := time.Now()

	var runErr error
	offset := 0
	for !summary.Complete {
		result, err := s.runner.RunImport(ctx, offset)
		if err != nil {
			log.Printf("MP import: import error - %v", err)
			runErr = err
			break
		}

		summary.Batches++
		summary.Imported += result.Imported
		summary.Updated += result.Updated
		summary.Failed += len(result.Failed)
		summary.Complete = result.Complete

		log.Printf("MP import: batch complete - imported: %d, updated: %d, offset: %d",
			result.Imported, result.Updated, result.Offset)

		if s.progress != nil {
			_ = s.progress.UpdateProgress(result.Offset, summary.Imported+summary.Updated, summary.Failed, 0, "")
		}

		if !result.Complete && result.Offset <= offset {
			runErr = fmt.Errorf("import stalled at offset %d", offset)
			log.Printf("MP import: %v", runErr)
			break
		}
		offset = result.Offset
		summary.Offset = offset

		if offset > SafetyOffsetLimit {
			log.Printf("MP import: safety limit reached (%d MPs). Stopping.", SafetyOffsetLimit)
			break
		}
	}
	summary.Offset = offset
	summary.Duration = time.Since(startTime).Round(time.Millisecond)

	if s.preview != nil {
		if err := s.preview.ClearCache(); err != nil {
			log.Printf("MP import: failed to clear preview cache: %v", err)
		}
	}

	if runErr != nil {
		summary.Error = runErr.Error()
		msg := fmt.Sprintf("Import failed after %d batches: %v", summary.Batches, runErr)
		s.recordStatus(settingsstore.ImportStatusFailed, msg)
		if s.progress != nil {
			_ = s.progress.CompleteSync(false, runErr.Error())
		}
		return summary, nil
	}

	msg := fmt.Sprintf("Imported %d new MPs, updated %d existing MPs in %v",
		summary.Imported, summary.Updated, summary.Duration)
	if summary.Failed > 0 {
		msg += fmt.Sprintf(" (%d failed)", summary.Failed)
	}
	s.recordStatus(settingsstore.ImportStatusSuccess, msg)
	if s.progress != nil {
		errMsg := ""
		if summary.Failed > 0 {
			errMsg = fmt.Sprintf("%d records failed", summary.Failed)
		}
		_ = s.progress.CompleteSync(true, errMsg)
	}
	log.Printf("MP import: scheduled import completed - %s", msg)

	return summary, nil
}

// beginRun claims the run slot, also checking runs of other processes.
func (s *ImportScheduler) beginRun() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isImporting {
		return ErrImportInProgress
	}
	if s.progress != nil {
		running, err := s.progress.IsSyncRunning()
		if err != nil {
			return fmt.Errorf("check import status: %w", err)
		}
		if running {
			return ErrImportInProgress
		}
	}
	s.isImporting = true
	return nil
}

func (s *ImportScheduler) endRun() {
	s.mu.Lock()
	s.isImporting = false
	s.mu.Unlock()
}

func (s *ImportScheduler) recordStatus(status, message string) {
	if s.status == nil {
		return
	}
	if err := s.status.SetImportStatus(status, message); err != nil {
		log.Printf("MP import: failed to record status: %v", err)
	}
}
