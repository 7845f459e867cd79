// Package settingsstore resolves runtime settings.
//
// Priority: database > environment > default. Values saved from the admin API
// live in the settings table; clearing them falls back to the environment
// (already merged with built-in defaults by internal/config).
//
// The API base URL and key are the exception: saving an empty value stores an
// explicit blank that overrides the environment, so a key from MP_API_KEY can
// be removed from the admin API. Resetting the settings restores the fallback.
package settingsstore

import (
	"log"
	"os"

	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/database/settings"
	"github.com/mrlokans/mpdirectory/internal/entities"
)

const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// Defaults are the environment/default values used when the database has no override.
type Defaults struct {
	APIBaseURL      string
	APIKey          string
	Pagination      string
	PreviewCacheTTL int
	ImportBatchSize int
	EnableCron      bool
	CronInterval    string
}

// DefaultsFromConfig extracts import defaults from the process configuration.
func DefaultsFromConfig(cfg *config.Config) Defaults {
	return Defaults{
		APIBaseURL:      cfg.API.BaseURL,
		APIKey:          cfg.API.Key,
		Pagination:      cfg.API.Pagination,
		PreviewCacheTTL: cfg.Import.PreviewCacheTTL,
		ImportBatchSize: cfg.Import.BatchSize,
		EnableCron:      cfg.Cron.Enabled,
		CronInterval:    cfg.Cron.Interval,
	}
}

// clearableKeys may be stored blank to override the environment.
var clearableKeys = map[string]bool{
	entities.SettingKeyAPIBaseURL: true,
	entities.SettingKeyAPIKey:     true,
}

type SettingsStore struct {
	repo     *settings.Repository
	defaults Defaults
}

func New(repo *settings.Repository, defaults Defaults) *SettingsStore {
	return &SettingsStore{repo: repo, defaults: defaults}
}

// lookup returns the database value when present and non-empty.
func (s *SettingsStore) lookup(key string) (string, bool) {
	value, ok, err := s.repo.GetValue(key)
	if err != nil {
		log.Printf("Settings: failed to read %s: %v", key, err)
		return "", false
	}
	return value, ok && value != ""
}

// lookupClearable returns the database value whenever the key is stored,
// including a blank saved to clear the environment value.
func (s *SettingsStore) lookupClearable(key string) (string, bool) {
	value, ok, err := s.repo.GetValue(key)
	if err != nil {
		log.Printf("Settings: failed to read %s: %v", key, err)
		return "", false
	}
	return value, ok
}

func (s *SettingsStore) source(key, envName string) string {
	if _, ok := s.lookup(key); ok {
		return SourceDatabase
	}
	if clearableKeys[key] {
		if _, ok := s.lookupClearable(key); ok {
			return SourceDatabase
		}
	}
	if envVal, ok := os.LookupEnv(envName); ok && envVal != "" {
		return SourceEnvironment
	}
	return SourceDefault
}

// maskToken returns a masked version of the token for display
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
