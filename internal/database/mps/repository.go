// Package mps provides database operations for imported Members of Parliament.
//
// The external_id column links a local row to its upstream record and carries
// a unique index, so concurrent imports cannot create duplicates.
//
// # Usage
//
//	repo := mps.NewRepository(db)
//	mp, err := repo.FindByExternalID(ctx, "123")
//	list, total, err := repo.List(ctx, entities.MPFilter{Party: "KO"})
package mps

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

var (
	ErrNotFound            = errors.New("mp not found")
	ErrDuplicateExternalID = errors.New("mp with this external id already exists")
)

// DefaultListLimit caps listings when the caller does not ask for a size.
const DefaultListLimit = 50

// MaxListLimit is the largest page a listing will return.
const MaxListLimit = 500

var coreColumns = []string{"external_id", "title", "content", "excerpt", "status"}

var fieldColumns = []string{
	"first_name", "last_name", "full_name", "party", "constituency",
	"birth_date", "education", "photo_url", "sejm_photo_url",
	"sejm_photo_mini_url", "contacts",
}

// Repository handles all MP database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new MP repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByExternalID returns the MP linked to an upstream id, or nil when absent.
// If duplicates somehow exist the oldest row wins.
func (r *Repository) FindByExternalID(ctx context.Context, externalID string) (*entities.MP, error) {
	var mp entities.MP
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		Order("id ASC").
		First(&mp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mp, nil
}

// Create inserts the post columns of a new MP.
func (r *Repository) Create(ctx context.Context, mp *entities.MP) error {
	err := r.db.WithContext(ctx).Create(mp).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateExternalID
	}
	return err
}

// Update overwrites the post columns of an existing MP.
func (r *Repository) Update(ctx context.Context, mp *entities.MP) error {
	result := r.db.WithContext(ctx).
		Model(&entities.MP{ID: mp.ID}).
		Select(coreColumns).
		Updates(mp)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFields overwrites the profile fields of an MP. Term and the extra
// JSON blob are left untouched when the new value is empty, and social links
// and biography are never written here.
func (r *Repository) UpdateFields(ctx context.Context, id uint, fields entities.MPFields) error {
	columns := append([]string(nil), fieldColumns...)
	if fields.Term != "" {
		columns = append(columns, "term")
	}
	if fields.ExtraJSON != "" {
		columns = append(columns, "extra_json")
	}
	if fields.Contacts == nil {
		fields.Contacts = []entities.Contact{}
	}

	result := r.db.WithContext(ctx).
		Model(&entities.MP{ID: id}).
		Select(columns).
		Updates(&entities.MP{MPFields: fields})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFeaturedImage records the local photo file of an MP and its source URL.
func (r *Repository) SetFeaturedImage(ctx context.Context, id uint, path, sourceURL string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.MP{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"featured_image_path": path,
			"featured_image_url":  sourceURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves an MP by primary key.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.MP, error) {
	var mp entities.MP
	err := r.db.WithContext(ctx).First(&mp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mp, nil
}

// List returns published MPs matching the filter, ordered by title, and the
// total number of matches before paging.
func (r *Repository) List(ctx context.Context, filter entities.MPFilter) ([]entities.MP, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.MP{}).
		Where("status = ?", entities.PostStatusPublish)

	if filter.Party != "" {
		query = query.Where("party = ?", filter.Party)
	}
	if filter.Constituency != "" {
		query = query.Where("constituency = ?", filter.Constituency)
	}
	if filter.Term != "" {
		query = query.Where("term = ?", filter.Term)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where(
			"title LIKE ? ESCAPE '\\' OR full_name LIKE ? ESCAPE '\\' OR content LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var list []entities.MP
	err := query.Order("title ASC").Order("id ASC").Limit(limit).Offset(offset).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Count returns the number of stored MPs.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.MP{}).Count(&count).Error
	return count, err
}

// DistinctParties lists every non-empty party, sorted.
func (r *Repository) DistinctParties(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "party")
}

// DistinctConstituencies lists every non-empty constituency, sorted.
func (r *Repository) DistinctConstituencies(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "constituency")
}

// DistinctTerms lists every non-empty term, sorted.
func (r *Repository) DistinctTerms(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "term")
}

func (r *Repository) distinct(ctx context.Context, column string) ([]string, error) {
	values := []string{}
	err := r.db.WithContext(ctx).
		Model(&entities.MP{}).
		Where(column+" <> ''").
		Distinct(column).
		Order(column+" ASC").
		Pluck(column, &values).Error
	return values, err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
