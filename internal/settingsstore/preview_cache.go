package settingsstore

import (
	"time"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

// LoadPreview returns the cached preview payload and its expiry.
// ok is false when nothing is cached or the expiry is unreadable.
func (s *SettingsStore) LoadPreview() ([]byte, time.Time, bool, error) {
	expiresRaw, ok, err := s.repo.GetValue(entities.SettingKeyPreviewCacheExpiresAt)
	if err != nil || !ok {
		return nil, time.Time{}, false, err
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, expiresRaw)
	if err != nil {
		return nil, time.Time{}, false, nil
	}

	payload, ok, err := s.repo.GetValue(entities.SettingKeyPreviewCache)
	if err != nil || !ok || payload == "" {
		return nil, time.Time{}, false, err
	}
	return []byte(payload), expiresAt, true, nil
}

// SavePreview stores a preview payload until expiresAt.
func (s *SettingsStore) SavePreview(payload []byte, expiresAt time.Time) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyPreviewCache:          string(payload),
		entities.SettingKeyPreviewCacheExpiresAt: expiresAt.UTC().Format(time.RFC3339Nano),
	})
}

// ClearPreview drops the cached preview.
func (s *SettingsStore) ClearPreview() error {
	return s.repo.DeleteSettings(
		entities.SettingKeyPreviewCache,
		entities.SettingKeyPreviewCacheExpiresAt,
	)
}
