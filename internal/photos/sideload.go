package photos

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

// Store is the MP persistence needed to attach a featured photo.
type Store interface {
	GetByID(ctx context.Context, id uint) (*entities.MP, error)
	SetFeaturedImage(ctx context.Context, id uint, path, sourceURL string) error
}

// Sideloader downloads a photo and attaches it as an MP's featured image.
type Sideloader struct {
	cache *Cache
	store Store
}

func NewSideloader(cache *Cache, store Store) *Sideloader {
	return &Sideloader{cache: cache, store: store}
}

// Sideload attaches photoURL to the MP unless it already has a featured image.
func (s *Sideloader) Sideload(ctx context.Context, mpID uint, photoURL string) error {
	mp, err := s.store.GetByID(ctx, mpID)
	if err != nil {
		return fmt.Errorf("failed to load MP %d: %w", mpID, err)
	}
	if mp.HasFeaturedImage() {
		return nil
	}

	path, err := s.cache.GetPhoto(ctx, mpID, photoURL)
	if err != nil {
		return fmt.Errorf("failed to download photo for MP %d: %w", mpID, err)
	}
	if err := s.store.SetFeaturedImage(ctx, mpID, path, photoURL); err != nil {
		return fmt.Errorf("failed to attach photo to MP %d: %w", mpID, err)
	}

	log.Printf("Photo cache: attached %s to MP %d", path, mpID)
	return nil
}
