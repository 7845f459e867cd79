package settingsstore

import (
	"time"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

// Import run outcomes stored as the last status.
const (
	ImportStatusRunning = "running"
	ImportStatusSuccess = "success"
	ImportStatusFailed  = "failed"
)

// ImportStatus represents the outcome of the last scheduled or background run.
type ImportStatus struct {
	LastImportAt *time.Time `json:"last_import_at,omitempty"`
	Status       string     `json:"status,omitempty"`
	Message      string     `json:"message,omitempty"`
}

// GetImportStatus returns the last recorded run status.
func (s *SettingsStore) GetImportStatus() ImportStatus {
	status := ImportStatus{}

	if value, ok := s.lookup(entities.SettingKeyImportLastAt); ok {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			status.LastImportAt = &ts
		}
	}
	status.Status, _ = s.lookup(entities.SettingKeyImportLastStatus)
	status.Message, _ = s.lookup(entities.SettingKeyImportLastMessage)

	return status
}

// SetImportStatus records the outcome of a run.
func (s *SettingsStore) SetImportStatus(status, message string) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyImportLastAt:      time.Now().UTC().Format(time.RFC3339),
		entities.SettingKeyImportLastStatus:  status,
		entities.SettingKeyImportLastMessage: message,
	})
}
