package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

// PhotoSideloader downloads a photo and attaches it to an MP.
type PhotoSideloader interface {
	Sideload(ctx context.Context, mpID uint, photoURL string) error
}

// SideloadPhotoTask attaches the featured photo of one MP.
type SideloadPhotoTask struct {
	MPID     uint   `json:"mp_id"`
	PhotoURL string `json:"photo_url"`
}

// Config returns the queue configuration for photo sideload tasks.
func (t SideloadPhotoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sideload_mp_photo",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SideloadPhotoProcessor creates a processor function for SideloadPhotoTask.
func SideloadPhotoProcessor(sideloader PhotoSideloader) backlite.QueueProcessor[SideloadPhotoTask] {
	return func(ctx context.Context, task SideloadPhotoTask) error {
		if sideloader == nil {
			return fmt.Errorf("photo sideloader not configured")
		}
		if err := sideloader.Sideload(ctx, task.MPID, task.PhotoURL); err != nil {
			return fmt.Errorf("sideload photo for MP %d: %w", task.MPID, err)
		}
		return nil
	}
}

// NewSideloadPhotoQueue creates a backlite queue for photo sideload tasks.
func NewSideloadPhotoQueue(sideloader PhotoSideloader) backlite.Queue {
	return backlite.NewQueue(SideloadPhotoProcessor(sideloader))
}

// PhotoEnqueuer defers photo downloads to the task queue so imports do not
// wait on them.
type PhotoEnqueuer struct {
	client *Client
}

// NewPhotoEnqueuer creates an enqueuer adding tasks to client.
func NewPhotoEnqueuer(client *Client) *PhotoEnqueuer {
	return &PhotoEnqueuer{client: client}
}

// Sideload queues a SideloadPhotoTask.
func (e *PhotoEnqueuer) Sideload(ctx context.Context, mpID uint, photoURL string) error {
	if _, err := e.client.Add(SideloadPhotoTask{MPID: mpID, PhotoURL: photoURL}).Ctx(ctx).Save(); err != nil {
		return fmt.Errorf("queue photo for MP %d: %w", mpID, err)
	}
	return nil
}
