package entrypoint

import (
	"log"

	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/database"
	"github.com/mrlokans/mpdirectory/internal/database/mps"
	"github.com/mrlokans/mpdirectory/internal/database/settings"
	syncprogress "github.com/mrlokans/mpdirectory/internal/database/sync"
	"github.com/mrlokans/mpdirectory/internal/importer"
	"github.com/mrlokans/mpdirectory/internal/mpapi"
	"github.com/mrlokans/mpdirectory/internal/photos"
	"github.com/mrlokans/mpdirectory/internal/scheduler"
	"github.com/mrlokans/mpdirectory/internal/settingsstore"
)

// Pipeline holds the import components shared by the server and the CLI.
type Pipeline struct {
	Settings     *settingsstore.SettingsStore
	Client       *mpapi.Client
	MPs          *mps.Repository
	Progress     *syncprogress.Repository
	Orchestrator *importer.Orchestrator
	Preview      *importer.PreviewService
	Scheduler    *scheduler.ImportScheduler

	// PhotoCache and Sideloader are nil when the photo directory is unusable.
	PhotoCache *photos.Cache
	Sideloader *photos.Sideloader
}

// NewPipeline wires the import components on top of an open database.
// Photos are sideloaded inline; the server swaps in the task queue.
func NewPipeline(cfg *config.Config, db *database.Database) *Pipeline {
	store := settingsstore.New(settings.NewRepository(db.DB), settingsstore.DefaultsFromConfig(cfg))

	client := mpapi.NewClient(store, mpapi.Options{
		Timeout:        cfg.API.Timeout,
		RateLimit:      cfg.API.RateLimit,
		RetryBaseDelay: cfg.API.RetryBaseDelay,
		PageParam:      cfg.API.PageParam,
		PerPageParam:   cfg.API.PerPageParam,
	})

	mpRepo := mps.NewRepository(db.DB)
	progress := syncprogress.NewRepository(db.DB)

	preview := importer.NewPreviewService(client, store, store)

	orchestrator := importer.NewOrchestrator(client, mpRepo, store)
	orchestrator.SetPreviewCache(preview)

	p := &Pipeline{
		Settings:     store,
		Client:       client,
		MPs:          mpRepo,
		Progress:     progress,
		Orchestrator: orchestrator,
		Preview:      preview,
	}

	photoCache, err := photos.NewCache(cfg.Photos.Dir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize photo cache: %v", err)
	} else {
		p.PhotoCache = photoCache
		p.Sideloader = photos.NewSideloader(photoCache, mpRepo)
		orchestrator.SetPhotoSideloader(p.Sideloader)
	}

	sched := scheduler.NewImportScheduler(orchestrator, store, preview)
	sched.SetProgressReporter(progress)
	sched.SetStatusRecorder(store)
	sched.SetRunTimeout(cfg.Import.RunTimeout)
	p.Scheduler = sched

	return p
}
