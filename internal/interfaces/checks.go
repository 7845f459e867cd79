package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/mpdirectory/internal/auth"
	"github.com/mrlokans/mpdirectory/internal/database"
	"github.com/mrlokans/mpdirectory/internal/database/mps"
	"github.com/mrlokans/mpdirectory/internal/database/sync"
	"github.com/mrlokans/mpdirectory/internal/database/users"
	"github.com/mrlokans/mpdirectory/internal/http"
	"github.com/mrlokans/mpdirectory/internal/importer"
	"github.com/mrlokans/mpdirectory/internal/mpapi"
	"github.com/mrlokans/mpdirectory/internal/photos"
	"github.com/mrlokans/mpdirectory/internal/scheduler"
	"github.com/mrlokans/mpdirectory/internal/settingsstore"
	"github.com/mrlokans/mpdirectory/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// MP storage
var _ importer.EntityStore = (*mps.Repository)(nil)
var _ importer.FieldWriter = (*mps.Repository)(nil)
var _ photos.Store = (*mps.Repository)(nil)
var _ http.MPReader = (*mps.Repository)(nil)

// Users
var _ auth.UserStore = (*users.Repository)(nil)

// Health
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Settings
// =============================================================================

var _ mpapi.SettingsProvider = (*settingsstore.SettingsStore)(nil)
var _ importer.SettingsProvider = (*settingsstore.SettingsStore)(nil)
var _ scheduler.SettingsProvider = (*settingsstore.SettingsStore)(nil)
var _ importer.PreviewStore = (*settingsstore.SettingsStore)(nil)
var _ scheduler.StatusRecorder = (*settingsstore.SettingsStore)(nil)
var _ http.SettingsStore = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Upstream API
// =============================================================================

var _ mpapi.PageFetcher = (*mpapi.Client)(nil)
var _ importer.Source = (*mpapi.Client)(nil)
var _ http.Upstream = (*mpapi.Client)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ scheduler.BatchRunner = (*importer.Orchestrator)(nil)
var _ http.BatchImporter = (*importer.Orchestrator)(nil)

var _ importer.PreviewClearer = (*importer.PreviewService)(nil)
var _ scheduler.PreviewClearer = (*importer.PreviewService)(nil)
var _ http.PreviewProvider = (*importer.PreviewService)(nil)

// PhotoSideloader implementations: inline or through the task queue
var _ importer.PhotoSideloader = (*photos.Sideloader)(nil)
var _ importer.PhotoSideloader = (*tasks.PhotoEnqueuer)(nil)
var _ tasks.PhotoSideloader = (*photos.Sideloader)(nil)
var _ http.PhotoCache = (*photos.Cache)(nil)

// =============================================================================
// Scheduling and Progress Tracking
// =============================================================================

var _ scheduler.ProgressReporter = (*sync.Repository)(nil)
var _ http.ProgressReader = (*sync.Repository)(nil)

var _ tasks.ImportRunner = (*scheduler.ImportScheduler)(nil)
var _ http.ImportScheduler = (*scheduler.ImportScheduler)(nil)

var _ http.TaskQueue = (*tasks.Client)(nil)
