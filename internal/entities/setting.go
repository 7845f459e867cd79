package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Upstream API settings
	SettingKeyAPIBaseURL    = "api_base_url"
	SettingKeyAPIKey        = "api_key"
	SettingKeyAPIPagination = "api_pagination"

	// Import settings
	SettingKeyPreviewCacheTTL = "preview_cache_ttl"
	SettingKeyImportBatchSize = "import_batch_size"
	SettingKeyEnableCron      = "enable_cron"
	SettingKeyCronInterval    = "cron_interval"

	// Import status
	SettingKeyImportLastAt      = "import_last_at"
	SettingKeyImportLastStatus  = "import_last_status"
	SettingKeyImportLastMessage = "import_last_message"

	// Preview cache
	SettingKeyPreviewCache          = "import_preview_cache"
	SettingKeyPreviewCacheExpiresAt = "import_preview_expires_at"
)
