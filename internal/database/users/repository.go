// Package users provides database operations for admin user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByLogin("admin")
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

// ErrNotFound is returned when no user matches a lookup.
var ErrNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user.
func (r *Repository) Create(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	return first(r.db.Where("id = ?", id), &user)
}

// GetUserByLogin retrieves a user by username or email.
func (r *Repository) GetUserByLogin(login string) (*entities.User, error) {
	var user entities.User
	return first(r.db.Where("username = ? OR email = ?", login, login), &user)
}

// GetUserByTokenHash retrieves a user by the SHA-256 hash of their API token.
func (r *Repository) GetUserByTokenHash(hash string) (*entities.User, error) {
	if hash == "" {
		return nil, ErrNotFound
	}
	var user entities.User
	return first(r.db.Where("token_hash = ?", hash), &user)
}

// Exists reports whether a user with the username or email is present.
func (r *Repository) Exists(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// Count returns the number of users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// Update applies column updates to a user and reports whether a row matched.
func (r *Repository) Update(id uint, updates map[string]any) (bool, error) {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func first(query *gorm.DB, user *entities.User) (*entities.User, error) {
	err := query.First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
