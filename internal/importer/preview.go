package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/mpdirectory/internal/mpapi"
)

// PreviewSize is the number of records sampled for a preview.
const PreviewSize = 20

// PreviewStore holds one serialized preview with its expiry.
type PreviewStore interface {
	LoadPreview() ([]byte, time.Time, bool, error)
	SavePreview(payload []byte, expiresAt time.Time) error
	ClearPreview() error
}

// Preview is a sample of upstream records as returned by the API.
type Preview struct {
	Items     []mpapi.Record `json:"items"`
	Total     int            `json:"total"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// PreviewService serves the cached preview sample.
type PreviewService struct {
	source   Source
	store    PreviewStore
	settings SettingsProvider
	now      func() time.Time

	mu sync.Mutex
}

// NewPreviewService creates a preview service backed by store.
func NewPreviewService(source Source, store PreviewStore, settings SettingsProvider) *PreviewService {
	return &PreviewService{
		source:   source,
		store:    store,
		settings: settings,
		now:      time.Now,
	}
}

// GetPreview returns the cached preview while it is fresh, otherwise fetches
// the first PreviewSize records and caches them for the configured TTL.
// force skips the cache.
func (p *PreviewService) GetPreview(ctx context.Context, force bool) (*Preview, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !force {
		if preview, ok := p.cached(); ok {
			return preview, nil
		}
	}

	page, err := p.source.GetMPs(ctx, 1, PreviewSize)
	if err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, ErrNoPreviewData
	}

	items := page.Records
	if len(items) > PreviewSize {
		items = items[:PreviewSize]
	}
	now := p.now().UTC()
	preview := &Preview{
		Items:     items,
		Total:     len(items),
		FetchedAt: now,
	}

	payload, err := json.Marshal(preview)
	if err != nil {
		return nil, err
	}
	ttl := p.settings.GetImportSettings().PreviewTTL()
	if err := p.store.SavePreview(payload, now.Add(ttl)); err != nil {
		log.Printf("MP preview: failed to cache preview: %v", err)
	}

	return preview, nil
}

// ClearCache drops the cached preview.
func (p *PreviewService) ClearCache() error {
	return p.store.ClearPreview()
}

func (p *PreviewService) cached() (*Preview, bool) {
	payload, expiresAt, ok, err := p.store.LoadPreview()
	if err != nil {
		log.Printf("MP preview: failed to load cached preview: %v", err)
		return nil, false
	}
	if !ok || !p.now().Before(expiresAt) {
		return nil, false
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	var preview Preview
	if err := decoder.Decode(&preview); err != nil {
		log.Printf("MP preview: discarding unreadable cached preview: %v", err)
		return nil, false
	}
	return &preview, true
}
