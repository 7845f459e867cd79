package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mpdirectory/internal/auth"
	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(int(cfg.HSTSMaxAge.Seconds())))
	}

	localAuth := cfg.AuthConfig.Mode == config.AuthModeLocal && cfg.AuthService != nil

	// CSRF must run before the session middleware so the session context
	// survives CSRF's request replacement.
	if localAuth && len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies, cfg.AuthService))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authMiddleware := auth.NewMiddleware(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	// Public directory
	if cfg.MPs != nil {
		NewMPsController(cfg.MPs, cfg.Photos).RegisterRoutes(api.Group("/mps"))
	}

	if localAuth {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authGroup := api.Group("/auth")
		authController.RegisterRoutes(authGroup)
		authController.RegisterProtectedRoutes(authGroup.Group("", authMiddleware.Handler()))
	}

	admin := api.Group("", authMiddleware.Handler(), authMiddleware.RequireRole(entities.UserRoleAdmin))

	importController := NewImportController(cfg.Importer, cfg.Preview, cfg.Upstream)
	importController.SetStatusSources(cfg.Settings, cfg.Progress)
	if cfg.Scheduler != nil {
		importController.SetRunStarter(cfg.Scheduler)
		importController.SetScheduleInfo(cfg.Scheduler)
	}
	if cfg.TaskQueue != nil {
		importController.SetRunEnqueuer(cfg.TaskQueue)
		admin.GET("/tasks/:id", NewTasksController(cfg.TaskQueue).GetTaskStatus)
	}
	importController.RegisterRoutes(admin.Group("/import"))

	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	var rescheduler Rescheduler
	if cfg.Scheduler != nil {
		rescheduler = cfg.Scheduler
	}
	settingsController := NewImportSettingsController(baseCtx, cfg.Settings, rescheduler, cfg.Preview)
	settingsController.RegisterRoutes(admin.Group("/settings"))

	return router
}
