package importer

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mrlokans/mpdirectory/internal/entities"
	"github.com/mrlokans/mpdirectory/internal/mapper"
	"github.com/mrlokans/mpdirectory/internal/mpapi"
)

const (
	MessageNoMore       = "No more MPs to import."
	MessageAllProcessed = "All MPs have been processed."
)

// Source fetches one normalized page of upstream records.
type Source interface {
	GetMPs(ctx context.Context, page, perPage int) (*mpapi.Page, error)
}

// SettingsProvider supplies the runtime import settings.
type SettingsProvider interface {
	GetImportSettings() entities.ImportSettings
}

// EntityStore persists the post columns of MPs.
type EntityStore interface {
	// FindByExternalID returns nil, nil when no MP is linked to the id.
	FindByExternalID(ctx context.Context, externalID string) (*entities.MP, error)
	Create(ctx context.Context, mp *entities.MP) error
	Update(ctx context.Context, mp *entities.MP) error
}

// FieldWriter is implemented by stores that can hold the typed profile fields.
// Stores without it get post columns only.
type FieldWriter interface {
	UpdateFields(ctx context.Context, id uint, fields entities.MPFields) error
}

// PhotoSideloader attaches a downloaded photo to an MP.
type PhotoSideloader interface {
	Sideload(ctx context.Context, mpID uint, photoURL string) error
}

// PreviewClearer drops the cached preview.
type PreviewClearer interface {
	ClearCache() error
}

// Outcome says what ImportSingle did with a record.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeUpdated
)

// FailedRecord describes a record that could not be imported.
type FailedRecord struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Result is the outcome of one RunImport call. Counts cover this call only.
type Result struct {
	Imported int            `json:"imported"`
	Updated  int            `json:"updated"`
	Offset   int            `json:"offset"`
	Complete bool           `json:"complete"`
	Message  string         `json:"message"`
	Failed   []FailedRecord `json:"failed"`
}

// Orchestrator imports MPs batch by batch.
type Orchestrator struct {
	source     Source
	store      EntityStore
	settings   SettingsProvider
	sideloader PhotoSideloader
	preview    PreviewClearer

	mu sync.Mutex
}

// NewOrchestrator creates an orchestrator reading records from source.
func NewOrchestrator(source Source, store EntityStore, settings SettingsProvider) *Orchestrator {
	return &Orchestrator{
		source:   source,
		store:    store,
		settings: settings,
	}
}

// SetPhotoSideloader sets the featured photo sideloader (optional).
func (o *Orchestrator) SetPhotoSideloader(sideloader PhotoSideloader) {
	o.sideloader = sideloader
}

// SetPreviewCache sets the preview cache cleared when a run completes (optional).
func (o *Orchestrator) SetPreviewCache(preview PreviewClearer) {
	o.preview = preview
}

// RunImport imports the batch starting at offset. Fetch errors abort the
// batch; per-record errors are collected in Result.Failed and still advance
// the offset. Batches are serialized.
func (o *Orchestrator) RunImport(ctx context.Context, offset int) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if offset < 0 {
		offset = 0
	}
	settings := o.settings.GetImportSettings()
	batchSize := settings.BatchSize()
	pageMode := settings.Pagination == entities.PaginationPage

	page, err := o.source.GetMPs(ctx, offset/batchSize+1, batchSize)
	if err != nil {
		return nil, err
	}
	records := page.Records
	if len(records) == 0 {
		return o.finish(&Result{Offset: offset, Complete: true, Message: MessageNoMore, Failed: []FailedRecord{}}), nil
	}

	// Without paging the API returns the full dataset, so offset indexes it
	// directly; with paging it only locates the position inside this page.
	start := offset
	if pageMode {
		start = offset % batchSize
	}
	if start >= len(records) {
		return o.finish(&Result{Offset: offset, Complete: true, Message: MessageAllProcessed, Failed: []FailedRecord{}}), nil
	}
	batch := records[start:min(len(records), start+batchSize)]

	m := mapper.New(settings.APIBaseURL)
	result := &Result{Failed: []FailedRecord{}}
	processed := 0
	for _, record := range batch {
		if ctx.Err() != nil {
			break
		}
		processed++

		outcome, err := o.importRecord(ctx, record, m)
		if err != nil {
			id, _ := mapper.ExternalID(record)
			log.Printf("MP import: skipping record %q: %v", id, err)
			result.Failed = append(result.Failed, FailedRecord{ID: id, Reason: err.Error()})
			continue
		}
		switch outcome {
		case OutcomeCreated:
			result.Imported++
		case OutcomeUpdated:
			result.Updated++
		}
	}

	result.Offset = offset + processed
	if pageMode {
		result.Complete = len(records) < batchSize && start+processed >= len(records)
	} else {
		result.Complete = result.Offset >= len(records)
	}
	result.Message = fmt.Sprintf("Imported %d new MPs, updated %d existing MPs.", result.Imported, result.Updated)
	if len(result.Failed) > 0 {
		result.Message += fmt.Sprintf(" %d failed.", len(result.Failed))
	}

	if err := ctx.Err(); err != nil {
		result.Complete = false
		return result, err
	}
	return o.finish(result), nil
}

// ImportSingle maps and upserts one record using the current settings.
func (o *Orchestrator) ImportSingle(ctx context.Context, record mpapi.Record) (Outcome, error) {
	m := mapper.New(o.settings.GetImportSettings().APIBaseURL)
	return o.importRecord(ctx, record, m)
}

func (o *Orchestrator) importRecord(ctx context.Context, record mpapi.Record, m *mapper.Mapper) (Outcome, error) {
	id, ok := mapper.ExternalID(record)
	if !ok {
		return 0, ErrMissingID
	}
	mapped := m.Map(record)

	existing, err := o.store.FindByExternalID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up MP %s: %w", id, err)
	}

	mp := &entities.MP{
		ExternalID: id,
		Title:      mapped.Title,
		Content:    mapped.Content,
		Excerpt:    mapped.Excerpt,
		Status:     entities.PostStatusPublish,
	}

	outcome := OutcomeUpdated
	if existing != nil {
		mp.ID = existing.ID
		if err := o.store.Update(ctx, mp); err != nil {
			return 0, fmt.Errorf("failed to update MP %s: %w", id, err)
		}
	} else {
		outcome = OutcomeCreated
		if err := o.store.Create(ctx, mp); err != nil {
			// Another importer may have created the row since the lookup.
			var findErr error
			existing, findErr = o.store.FindByExternalID(ctx, id)
			if findErr != nil || existing == nil {
				return 0, fmt.Errorf("failed to create MP %s: %w", id, err)
			}
			mp.ID = existing.ID
			if err := o.store.Update(ctx, mp); err != nil {
				return 0, fmt.Errorf("failed to update MP %s: %w", id, err)
			}
			outcome = OutcomeUpdated
		}
	}

	if writer, ok := o.store.(FieldWriter); ok {
		if err := writer.UpdateFields(ctx, mp.ID, mapped.Fields); err != nil {
			return 0, fmt.Errorf("failed to save fields of MP %s: %w", id, err)
		}
	}

	photoURL := mapped.Fields.PhotoURL
	if photoURL != "" && o.sideloader != nil && (existing == nil || !existing.HasFeaturedImage()) {
		if err := o.sideloader.Sideload(ctx, mp.ID, photoURL); err != nil {
			log.Printf("MP import: photo for MP %s not attached: %v", id, err)
		}
	}

	return outcome, nil
}

// finish clears the preview once a run reaches its end.
func (o *Orchestrator) finish(result *Result) *Result {
	if result.Complete && o.preview != nil {
		if err := o.preview.ClearCache(); err != nil {
			log.Printf("MP import: failed to clear preview cache: %v", err)
		}
	}
	return result
}
