package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/entities"
)

const (
	sessionKeyUserID   = "user_id"
	sessionKeyUsername = "username"
	sessionKeyRole     = "role"
	sessionKeyLoginAt  = "login_at"
)

const sessionsSchema = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

func init() {
	gob.Register(entities.UserRole(""))
	gob.Register(time.Time{})
}

// SessionManager stores admin sessions in the application database.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates the sessions table if needed and returns a
// manager backed by it.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	if _, err := sqlDB.Exec(sessionsSchema); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "mpdir_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// SessionData is what a session knows about its user.
type SessionData struct {
	UserID   uint              `json:"user_id"`
	Username string            `json:"username"`
	Role     entities.UserRole `json:"role"`
	LoginAt  time.Time         `json:"login_at"`
}

// CreateSession signs the user in. The token is renewed first so a
// pre-login session id cannot be reused.
func (sm *SessionManager) CreateSession(ctx context.Context, user *entities.User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, sessionKeyUserID, int(user.ID))
	sm.Put(ctx, sessionKeyUsername, user.Username)
	sm.Put(ctx, sessionKeyRole, user.Role)
	sm.Put(ctx, sessionKeyLoginAt, time.Now())
	return nil
}

// DestroySession signs the user out.
func (sm *SessionManager) DestroySession(ctx context.Context) error {
	return sm.Destroy(ctx)
}

// GetUserID returns the signed-in user, or 0.
func (sm *SessionManager) GetUserID(ctx context.Context) uint {
	return uint(sm.GetInt(ctx, sessionKeyUserID))
}

// GetSessionData returns nil when nobody is signed in.
func (sm *SessionManager) GetSessionData(ctx context.Context) *SessionData {
	userID := sm.GetUserID(ctx)
	if userID == 0 {
		return nil
	}
	role, _ := sm.Get(ctx, sessionKeyRole).(entities.UserRole)
	loginAt, _ := sm.Get(ctx, sessionKeyLoginAt).(time.Time)

	return &SessionData{
		UserID:   userID,
		Username: sm.GetString(ctx, sessionKeyUsername),
		Role:     role,
		LoginAt:  loginAt,
	}
}
