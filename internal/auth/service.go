package auth

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/database/users"
	"github.com/mrlokans/mpdirectory/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var validate = validator.New()

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidRole      = errors.New("invalid role")
	ErrSetupComplete    = errors.New("an admin user already exists")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// UserStore is the user persistence used by Service.
type UserStore interface {
	Create(user *entities.User) error
	GetUserByID(id uint) (*entities.User, error)
	GetUserByLogin(login string) (*entities.User, error)
	GetUserByTokenHash(hash string) (*entities.User, error)
	Exists(username, email string) (bool, error)
	Count() (int64, error)
	Update(id uint, updates map[string]any) (bool, error)
}

// Service manages admin users, passwords and API tokens.
type Service struct {
	users  UserStore
	config config.Auth
	now    func() time.Time

	setupMu sync.Mutex
}

// NewService creates a new authentication service.
func NewService(store UserStore, cfg config.Auth) *Service {
	return &Service{
		users:  store,
		config: cfg,
		now:    time.Now,
	}
}

// CreateUser validates and stores a new user.
func (s *Service) CreateUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	if err := validateCredentials(username, email, password); err != nil {
		return nil, err
	}
	switch role {
	case entities.UserRoleAdmin, entities.UserRoleEditor, entities.UserRoleViewer:
	default:
		return nil, ErrInvalidRole
	}

	exists, err := s.users.Exists(username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Setup creates the first admin. It fails with ErrSetupComplete once any
// user exists.
func (s *Service) Setup(username, email, password string) (*entities.User, error) {
	s.setupMu.Lock()
	defer s.setupMu.Unlock()

	hasUsers, err := s.HasUsers()
	if err != nil {
		return nil, err
	}
	if hasUsers {
		return nil, ErrSetupComplete
	}
	return s.CreateUser(username, email, password, entities.UserRoleAdmin)
}

func validateCredentials(username, email, password string) error {
	switch {
	case username == "":
		return ErrUsernameRequired
	case email == "":
		return ErrEmailRequired
	case password == "":
		return ErrPasswordRequired
	case !usernamePattern.MatchString(username):
		return ErrUsernameInvalid
	case validate.Var(email, "email,max=254") != nil:
		return ErrEmailInvalid
	}
	return nil
}

// Authenticate checks credentials. Repeated failures lock the account for
// the configured lockout duration.
func (s *Service) Authenticate(login, password string) (*entities.User, error) {
	user, err := s.users.GetUserByLogin(login)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(user)
		return nil, err
	}

	_, _ = s.users.Update(user.ID, map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	})
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil

	return user, nil
}

func (s *Service) recordFailedLogin(user *entities.User) {
	user.FailedLoginCount++
	updates := map[string]any{"failed_login_count": user.FailedLoginCount}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if user.FailedLoginCount >= maxAttempts {
		lockout := s.config.LockoutDuration
		if lockout <= 0 {
			lockout = 30 * time.Minute
		}
		updates["locked_until"] = s.now().Add(lockout)
		updates["failed_login_count"] = 0
	}

	_, _ = s.users.Update(user.ID, updates)
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ValidateToken returns the owner of a plaintext API token.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByTokenHash(HashToken(token))
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if s.config.TokenExpiry > 0 && user.TokenCreatedAt != nil &&
		s.now().Sub(*user.TokenCreatedAt) > s.config.TokenExpiry {
		return nil, ErrTokenExpired
	}
	return user, nil
}

// GenerateToken replaces the user's API token and returns the plaintext.
func (s *Service) GenerateToken(userID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	found, err := s.users.Update(userID, map[string]any{
		"token_hash":       hash,
		"token_created_at": s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}
	if !found {
		return "", ErrUserNotFound
	}
	return plaintext, nil
}

// RevokeToken removes the user's API token.
func (s *Service) RevokeToken(userID uint) error {
	_, err := s.users.Update(userID, map[string]any{
		"token_hash":       "",
		"token_created_at": nil,
	})
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// HasUsers reports whether any user exists.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.Count()
	return count > 0, err
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}
