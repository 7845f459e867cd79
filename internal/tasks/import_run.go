package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/mpdirectory/internal/scheduler"
)

// ImportRunner runs a full MP import.
type ImportRunner interface {
	RunOnce(ctx context.Context) (*scheduler.Summary, error)
}

// ImportRunTask imports every MP batch in the background.
type ImportRunTask struct {
	// RequestedBy is the username that queued the run, for logs only.
	RequestedBy string `json:"requested_by,omitempty"`
}

// Config returns the queue configuration for full import runs.
func (t ImportRunTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "mp_import_run",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     scheduler.DefaultRunTimeout,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportRunProcessor creates a processor function for ImportRunTask.
func ImportRunProcessor(runner ImportRunner) backlite.QueueProcessor[ImportRunTask] {
	return func(ctx context.Context, task ImportRunTask) error {
		if runner == nil {
			return fmt.Errorf("import runner not configured")
		}

		summary, err := runner.RunOnce(ctx)
		if errors.Is(err, scheduler.ErrImportInProgress) {
			log.Printf("[TASK] MP import skipped: another run is in progress")
			return nil
		}
		if err != nil {
			return fmt.Errorf("run import: %w", err)
		}
		if summary.Error != "" {
			return fmt.Errorf("import stopped at offset %d: %s", summary.Offset, summary.Error)
		}

		log.Printf("[TASK] MP import complete: %d batches, %d imported, %d updated, %d failed (requested by %q)",
			summary.Batches, summary.Imported, summary.Updated, summary.Failed, task.RequestedBy)
		return nil
	}
}

// NewImportRunQueue creates a backlite queue for full import runs.
func NewImportRunQueue(runner ImportRunner) backlite.Queue {
	return backlite.NewQueue(ImportRunProcessor(runner))
}
