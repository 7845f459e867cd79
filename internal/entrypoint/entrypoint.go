package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/mpdirectory/internal/auth"
	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/database"
	"github.com/mrlokans/mpdirectory/internal/database/users"
	http_controllers "github.com/mrlokans/mpdirectory/internal/http"
	"github.com/mrlokans/mpdirectory/internal/tasks"
)

// hstsMaxAge is sent when cookies are marked secure.
const hstsMaxAge = 180 * 24 * time.Hour

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// SIGKILL can't be caught, so only INT and TERM trigger a graceful stop.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no run starts mid-shutdown.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting MP directory v%s", version)

	if cfg.API.BaseURL == "" {
		log.Printf("WARNING: MP_API_BASE_URL is not set. Imports fail until an API URL is saved in the import settings.")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	pipeline := NewPipeline(cfg, db)
	if pipeline.PhotoCache != nil {
		log.Printf("Photo cache initialized at %s", cfg.Photos.Dir)
	}

	// The base context outlives requests; cron entries and workers hang off it.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewImportRunQueue(pipeline.Scheduler))
		if pipeline.Sideloader != nil {
			taskClient.Register(tasks.NewSideloadPhotoQueue(pipeline.Sideloader))
			// Photo downloads leave the import batch and run on the workers.
			pipeline.Orchestrator.SetPhotoSideloader(tasks.NewPhotoEnqueuer(taskClient))
		}

		go taskClient.Start(appCtx)
	}

	if err := pipeline.Scheduler.Start(appCtx); err != nil {
		log.Printf("WARNING: Failed to start import scheduler: %v", err)
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(users.NewRepository(db.DB), cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. POST /api/auth/setup to create an administrator account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Version:        version,
		Database:       db,
		BaseContext:    appCtx,
		Importer:       pipeline.Orchestrator,
		Preview:        pipeline.Preview,
		Upstream:       pipeline.Client,
		Settings:       pipeline.Settings,
		Progress:       pipeline.Progress,
		Scheduler:      pipeline.Scheduler,
		MPs:            pipeline.MPs,
		AuthConfig:     cfg.Auth,
		AuthService:    authService,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
	}
	// Nil pointers must not leak into the interface fields.
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}
	if pipeline.PhotoCache != nil {
		routerCfg.Photos = pipeline.PhotoCache
	}
	if cfg.Auth.SecureCookies {
		routerCfg.HSTSMaxAge = hstsMaxAge
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		pipeline.Scheduler.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		appCancel()
	}

	Serve(router, cfg, onShutdown)
}
