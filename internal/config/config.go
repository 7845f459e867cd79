package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		API
		Import
		Cron
		Photos
		Tasks
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	// API describes the upstream MP directory endpoint.
	API struct {
		BaseURL        string
		Key            string
		Timeout        time.Duration
		RateLimit      float64 // Requests per second, 0 disables limiting
		Pagination     string  // "none" or "page"
		PageParam      string
		PerPageParam   string
		RetryBaseDelay time.Duration
	}
	Import struct {
		BatchSize       int
		PreviewCacheTTL int // Minutes
		RunTimeout      time.Duration
	}
	Cron struct {
		Enabled  bool
		Interval string // hourly, twicedaily or daily
	}
	Photos struct {
		Dir string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Upstream API defaults
	v.SetDefault("mp_api_base_url", DefaultAPIBaseURL)
	v.SetDefault("mp_api_key", "")
	v.SetDefault("mp_api_timeout", "15s")
	v.SetDefault("mp_api_rate_limit", 5.0)
	v.SetDefault("mp_api_pagination", "none")
	v.SetDefault("mp_api_page_param", "page")
	v.SetDefault("mp_api_per_page_param", "per_page")
	v.SetDefault("mp_api_retry_base_delay", "1s")

	// Import defaults
	v.SetDefault("import_batch_size", 100)
	v.SetDefault("preview_cache_ttl", 20)
	v.SetDefault("import_run_timeout", "30m")
	v.SetDefault("import_cron_enabled", false)
	v.SetDefault("import_cron_interval", "daily")

	v.SetDefault("photos_dir", DefaultPhotosDir)

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_token_expiry", "720h")    // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_lockout_duration", "30m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "30m")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		API: API{
			BaseURL:        v.GetString("MP_API_BASE_URL"),
			Key:            v.GetString("MP_API_KEY"),
			Timeout:        v.GetDuration("MP_API_TIMEOUT"),
			RateLimit:      v.GetFloat64("MP_API_RATE_LIMIT"),
			Pagination:     v.GetString("MP_API_PAGINATION"),
			PageParam:      v.GetString("MP_API_PAGE_PARAM"),
			PerPageParam:   v.GetString("MP_API_PER_PAGE_PARAM"),
			RetryBaseDelay: v.GetDuration("MP_API_RETRY_BASE_DELAY"),
		},
		Import: Import{
			BatchSize:       v.GetInt("IMPORT_BATCH_SIZE"),
			PreviewCacheTTL: v.GetInt("PREVIEW_CACHE_TTL"),
			RunTimeout:      v.GetDuration("IMPORT_RUN_TIMEOUT"),
		},
		Cron: Cron{
			Enabled:  v.GetBool("IMPORT_CRON_ENABLED"),
			Interval: v.GetString("IMPORT_CRON_INTERVAL"),
		},
		Photos: Photos{
			Dir: v.GetString("PHOTOS_DIR"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
	}
}
