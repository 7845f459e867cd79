package settingsstore

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

// Environment variable names backing each setting.
const (
	EnvAPIBaseURL      = "MP_API_BASE_URL"
	EnvAPIKey          = "MP_API_KEY"
	EnvAPIPagination   = "MP_API_PAGINATION"
	EnvPreviewCacheTTL = "PREVIEW_CACHE_TTL"
	EnvImportBatchSize = "IMPORT_BATCH_SIZE"
	EnvEnableCron      = "IMPORT_CRON_ENABLED"
	EnvCronInterval    = "IMPORT_CRON_INTERVAL"
)

var (
	ErrInvalidBaseURL      = errors.New("api_base_url must be an absolute http(s) URL")
	ErrInvalidCronInterval = errors.New("cron_interval must be one of hourly, twicedaily, daily")
	ErrInvalidPagination   = errors.New("api_pagination must be none or page")
)

// ImportSettingsInfo is the effective configuration with the source of each value.
type ImportSettingsInfo struct {
	APIBaseURL       string `json:"api_base_url"`
	APIBaseURLSource string `json:"api_base_url_source"`

	APIKey       string `json:"api_key"` // Masked for display
	APIKeySource string `json:"api_key_source"`
	HasAPIKey    bool   `json:"has_api_key"`

	Pagination       string `json:"api_pagination"`
	PaginationSource string `json:"api_pagination_source"`

	PreviewCacheTTL       int    `json:"preview_cache_ttl"`
	PreviewCacheTTLSource string `json:"preview_cache_ttl_source"`

	ImportBatchSize       int    `json:"import_batch_size"`
	ImportBatchSizeSource string `json:"import_batch_size_source"`

	EnableCron       bool   `json:"enable_cron"`
	EnableCronSource string `json:"enable_cron_source"`

	CronInterval       string `json:"cron_interval"`
	CronIntervalSource string `json:"cron_interval_source"`
	CronDescription    string `json:"cron_description"`
}

// ImportSettingsUpdate carries the fields an admin wants to change.
// Nil fields are left alone. Numbers are clamped rather than rejected.
type ImportSettingsUpdate struct {
	APIBaseURL      *string `json:"api_base_url"`
	APIKey          *string `json:"api_key"`
	Pagination      *string `json:"api_pagination"`
	PreviewCacheTTL *int    `json:"preview_cache_ttl"`
	ImportBatchSize *int    `json:"import_batch_size"`
	EnableCron      *bool   `json:"enable_cron"`
	CronInterval    *string `json:"cron_interval"`
}

// GetImportSettings returns the effective, clamped import settings.
func (s *SettingsStore) GetImportSettings() entities.ImportSettings {
	settings := entities.ImportSettings{
		APIBaseURL:      s.defaults.APIBaseURL,
		APIKey:          s.defaults.APIKey,
		Pagination:      s.defaults.Pagination,
		PreviewCacheTTL: s.defaults.PreviewCacheTTL,
		ImportBatchSize: s.defaults.ImportBatchSize,
		EnableCron:      s.defaults.EnableCron,
		CronInterval:    s.defaults.CronInterval,
	}

	if v, ok := s.lookupClearable(entities.SettingKeyAPIBaseURL); ok {
		settings.APIBaseURL = v
	}
	if v, ok := s.lookupClearable(entities.SettingKeyAPIKey); ok {
		settings.APIKey = v
	}
	if v, ok := s.lookup(entities.SettingKeyAPIPagination); ok {
		settings.Pagination = v
	}
	if v, ok := s.lookup(entities.SettingKeyPreviewCacheTTL); ok {
		if n, err := strconv.Atoi(v); err == nil {
			settings.PreviewCacheTTL = n
		}
	}
	if v, ok := s.lookup(entities.SettingKeyImportBatchSize); ok {
		if n, err := strconv.Atoi(v); err == nil {
			settings.ImportBatchSize = n
		}
	}
	if v, ok := s.lookup(entities.SettingKeyEnableCron); ok {
		settings.EnableCron = v == "true" || v == "1"
	}
	if v, ok := s.lookup(entities.SettingKeyCronInterval); ok {
		settings.CronInterval = v
	}

	return settings.Normalized()
}

// GetImportSettingsInfo returns the effective settings with sources and a masked key.
func (s *SettingsStore) GetImportSettingsInfo() ImportSettingsInfo {
	settings := s.GetImportSettings()
	return ImportSettingsInfo{
		APIBaseURL:            settings.APIBaseURL,
		APIBaseURLSource:      s.source(entities.SettingKeyAPIBaseURL, EnvAPIBaseURL),
		APIKey:                maskToken(settings.APIKey),
		APIKeySource:          s.source(entities.SettingKeyAPIKey, EnvAPIKey),
		HasAPIKey:             settings.APIKey != "",
		Pagination:            settings.Pagination,
		PaginationSource:      s.source(entities.SettingKeyAPIPagination, EnvAPIPagination),
		PreviewCacheTTL:       settings.PreviewCacheTTL,
		PreviewCacheTTLSource: s.source(entities.SettingKeyPreviewCacheTTL, EnvPreviewCacheTTL),
		ImportBatchSize:       settings.ImportBatchSize,
		ImportBatchSizeSource: s.source(entities.SettingKeyImportBatchSize, EnvImportBatchSize),
		EnableCron:            settings.EnableCron,
		EnableCronSource:      s.source(entities.SettingKeyEnableCron, EnvEnableCron),
		CronInterval:          settings.CronInterval,
		CronIntervalSource:    s.source(entities.SettingKeyCronInterval, EnvCronInterval),
		CronDescription:       CronDescription(settings.CronInterval),
	}
}

// UpdateImportSettings validates and persists the given changes.
func (s *SettingsStore) UpdateImportSettings(update ImportSettingsUpdate) error {
	values := make(map[string]string)

	if update.APIBaseURL != nil {
		base := strings.TrimSpace(*update.APIBaseURL)
		if base != "" {
			u, err := url.Parse(base)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return ErrInvalidBaseURL
			}
		}
		values[entities.SettingKeyAPIBaseURL] = base
	}
	if update.APIKey != nil {
		values[entities.SettingKeyAPIKey] = strings.TrimSpace(*update.APIKey)
	}
	if update.Pagination != nil {
		mode := strings.TrimSpace(*update.Pagination)
		if mode != entities.PaginationNone && mode != entities.PaginationPage {
			return ErrInvalidPagination
		}
		values[entities.SettingKeyAPIPagination] = mode
	}
	if update.PreviewCacheTTL != nil {
		values[entities.SettingKeyPreviewCacheTTL] = strconv.Itoa(entities.ClampPreviewCacheTTL(*update.PreviewCacheTTL))
	}
	if update.ImportBatchSize != nil {
		values[entities.SettingKeyImportBatchSize] = strconv.Itoa(entities.ClampImportBatchSize(*update.ImportBatchSize))
	}
	if update.EnableCron != nil {
		values[entities.SettingKeyEnableCron] = strconv.FormatBool(*update.EnableCron)
	}
	if update.CronInterval != nil {
		interval := strings.TrimSpace(*update.CronInterval)
		if !entities.IsValidCronInterval(interval) {
			return ErrInvalidCronInterval
		}
		values[entities.SettingKeyCronInterval] = interval
	}

	if len(values) == 0 {
		return nil
	}
	if err := s.repo.SetSettings(values); err != nil {
		return fmt.Errorf("failed to save import settings: %w", err)
	}
	return nil
}

// ClearImportSettings removes all database overrides, reverting to env/default.
func (s *SettingsStore) ClearImportSettings() error {
	return s.repo.DeleteSettings(
		entities.SettingKeyAPIBaseURL,
		entities.SettingKeyAPIKey,
		entities.SettingKeyAPIPagination,
		entities.SettingKeyPreviewCacheTTL,
		entities.SettingKeyImportBatchSize,
		entities.SettingKeyEnableCron,
		entities.SettingKeyCronInterval,
	)
}
