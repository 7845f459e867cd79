package mpapi

import (
	"context"
	"fmt"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

// maxWalkPages guards against APIs that never signal the last page.
const maxWalkPages = 1000

// PageFetcher fetches one normalized page.
type PageFetcher interface {
	GetMPs(ctx context.Context, page, perPage int) (*Page, error)
}

// WalkOptions control a pagination walk.
type WalkOptions struct {
	PageSize int
	// Limit truncates the result when positive.
	Limit int
	// SinglePage stops after the first page, for APIs that return the
	// full dataset on every call.
	SinglePage bool
}

// Walk fetches pages starting at 1 and concatenates their records. It stops
// on an empty page, when Limit is reached, when pagination.has_next is false,
// or (without pagination metadata) on a page shorter than PageSize. Any page
// error aborts the walk.
func Walk(ctx context.Context, fetcher PageFetcher, opts WalkOptions) ([]Record, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = entities.DefaultImportBatchSize
	}

	all := []Record{}
	for page := 1; page <= maxWalkPages; page++ {
		result, err := fetcher.GetMPs(ctx, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		if len(result.Records) == 0 {
			break
		}

		all = append(all, result.Records...)
		if opts.Limit > 0 && len(all) >= opts.Limit {
			return all[:opts.Limit], nil
		}

		if opts.SinglePage {
			break
		}
		if result.HasNext != nil {
			if !*result.HasNext {
				break
			}
			continue
		}
		if len(result.Records) < pageSize {
			break
		}
	}
	return all, nil
}

// FetchAll walks every page of the configured API.
func (c *Client) FetchAll(ctx context.Context, limit int) ([]Record, error) {
	settings := c.settings.GetImportSettings()
	return Walk(ctx, c, WalkOptions{
		PageSize:   settings.BatchSize(),
		Limit:      limit,
		SinglePage: settings.Pagination != entities.PaginationPage,
	})
}
