package http

import (
	"context"
	"time"

	"github.com/mrlokans/mpdirectory/internal/auth"
	"github.com/mrlokans/mpdirectory/internal/config"
)

// ImportScheduler is the cron driver as seen by the router.
type ImportScheduler interface {
	RunStarter
	ScheduleInfo
	Reschedule(ctx context.Context) error
}

// SettingsStore serves runtime settings and the last run outcome.
type SettingsStore interface {
	ImportSettingsStore
	ImportStatusReader
}

// TaskQueue is the background queue as seen by the router.
type TaskQueue interface {
	RunEnqueuer
	TaskStateReader
}

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional fields may be left nil.
type RouterConfig struct {
	// Application info
	Version  string
	Database Pinger

	// BaseContext bounds work that outlives a request, like the cron schedule.
	BaseContext context.Context

	// Import pipeline
	Importer  BatchImporter
	Preview   PreviewProvider
	Upstream  Upstream
	Settings  SettingsStore
	Progress  ProgressReader
	Scheduler ImportScheduler // optional
	TaskQueue TaskQueue       // optional; full runs go through it when set

	// Public directory
	MPs    MPReader
	Photos PhotoCache // optional

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	HSTSMaxAge     time.Duration // 0 disables the header
}
