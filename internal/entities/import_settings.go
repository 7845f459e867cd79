package entities

import "time"

// Pagination modes for the upstream API.
const (
	// PaginationNone means every request returns the full dataset.
	PaginationNone = "none"
	// PaginationPage sends page/per_page query parameters.
	PaginationPage = "page"
)

// Cron intervals accepted by the import scheduler.
const (
	CronIntervalHourly     = "hourly"
	CronIntervalTwiceDaily = "twicedaily"
	CronIntervalDaily      = "daily"
)

// Bounds and defaults for runtime import settings.
const (
	DefaultPreviewCacheTTL = 20
	MinPreviewCacheTTL     = 5
	MaxPreviewCacheTTL     = 120

	DefaultImportBatchSize = 100
	MinImportBatchSize     = 10
	MaxImportBatchSize     = 500

	DefaultCronInterval = CronIntervalDaily
)

// ImportSettings is the effective runtime configuration of the import pipeline.
type ImportSettings struct {
	APIBaseURL      string `json:"api_base_url"`
	APIKey          string `json:"-"`
	Pagination      string `json:"api_pagination"`
	PreviewCacheTTL int    `json:"preview_cache_ttl"`
	ImportBatchSize int    `json:"import_batch_size"`
	EnableCron      bool   `json:"enable_cron"`
	CronInterval    string `json:"cron_interval"`
}

// Normalized returns a copy with every value clamped into its allowed range.
func (s ImportSettings) Normalized() ImportSettings {
	s.PreviewCacheTTL = ClampPreviewCacheTTL(s.PreviewCacheTTL)
	s.ImportBatchSize = ClampImportBatchSize(s.ImportBatchSize)
	if !IsValidCronInterval(s.CronInterval) {
		s.CronInterval = DefaultCronInterval
	}
	if s.Pagination != PaginationPage {
		s.Pagination = PaginationNone
	}
	return s
}

// PreviewTTL returns the clamped preview cache lifetime.
func (s ImportSettings) PreviewTTL() time.Duration {
	return time.Duration(ClampPreviewCacheTTL(s.PreviewCacheTTL)) * time.Minute
}

// BatchSize returns the clamped import batch size.
func (s ImportSettings) BatchSize() int {
	return ClampImportBatchSize(s.ImportBatchSize)
}

// ClampPreviewCacheTTL keeps the TTL (minutes) within 5..120. Zero means default.
func ClampPreviewCacheTTL(minutes int) int {
	if minutes == 0 {
		return DefaultPreviewCacheTTL
	}
	return clamp(minutes, MinPreviewCacheTTL, MaxPreviewCacheTTL)
}

// ClampImportBatchSize keeps the batch size within 10..500. Zero means default.
func ClampImportBatchSize(size int) int {
	if size == 0 {
		return DefaultImportBatchSize
	}
	return clamp(size, MinImportBatchSize, MaxImportBatchSize)
}

func IsValidCronInterval(interval string) bool {
	switch interval {
	case CronIntervalHourly, CronIntervalTwiceDaily, CronIntervalDaily:
		return true
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
