package http

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mpdirectory/internal/auth"
	"github.com/mrlokans/mpdirectory/internal/config"
	"github.com/mrlokans/mpdirectory/internal/database"
	"github.com/mrlokans/mpdirectory/internal/database/mps"
	"github.com/mrlokans/mpdirectory/internal/database/users"
	"github.com/mrlokans/mpdirectory/internal/entities"
	"github.com/mrlokans/mpdirectory/internal/settingsstore"
)

type routerSettings struct {
	stubSettingsStore
	stubStatus
}

func newTestRouter(t *testing.T, authCfg config.Auth, withService bool) (*gin.Engine, *auth.Service) {
	t.Helper()

	db, err := database.NewQuietDatabase(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := RouterConfig{
		Version:    "test",
		Database:   db,
		Importer:   &stubImporter{},
		Preview:    &stubPreview{},
		Upstream:   &stubUpstream{},
		Settings:   &routerSettings{stubStatus: stubStatus{status: settingsstore.ImportStatus{Status: "success"}}},
		Progress:   stubProgress{},
		MPs:        mps.NewRepository(db.DB),
		AuthConfig: authCfg,
	}

	var service *auth.Service
	if withService {
		service = auth.NewService(users.NewRepository(db.DB), authCfg)
		cfg.AuthService = service
	}

	return NewRouter(cfg), service
}

func serve(router *gin.Engine, method, path, bearer string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_AuthDisabled(t *testing.T) {
	router, _ := newTestRouter(t, config.Auth{Mode: config.AuthModeNone}, false)

	assert.Equal(t, http.StatusOK, serve(router, "GET", "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, "GET", "/ping", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, "GET", "/api/mps", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, "GET", "/api/import/status", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, "GET", "/api/settings/import", "").Code)

	// No task queue configured.
	assert.Equal(t, http.StatusNotFound, serve(router, "GET", "/api/tasks/abc", "").Code)
	// Auth endpoints are only mounted in local mode.
	assert.Equal(t, http.StatusNotFound, serve(router, "POST", "/api/auth/login", "").Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(t, config.Auth{Mode: config.AuthModeNone}, false)

	w := serve(router, "GET", "/ping", "")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRouter_LocalAuth(t *testing.T) {
	authCfg := config.Auth{
		Mode:             config.AuthModeLocal,
		BcryptCost:       4,
		TokenExpiry:      time.Hour,
		MaxLoginAttempts: 5,
		LockoutDuration:  time.Minute,
	}
	router, service := newTestRouter(t, authCfg, true)

	admin, err := service.CreateUser("admin", "admin@example.com", "correct-horse-battery", entities.UserRoleAdmin)
	require.NoError(t, err)
	adminToken, err := service.GenerateToken(admin.ID)
	require.NoError(t, err)

	viewer, err := service.CreateUser("viewer", "viewer@example.com", "correct-horse-battery", entities.UserRoleViewer)
	require.NoError(t, err)
	viewerToken, err := service.GenerateToken(viewer.ID)
	require.NoError(t, err)

	// The directory stays public.
	assert.Equal(t, http.StatusOK, serve(router, "GET", "/api/mps", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, "GET", "/api/mps/filters", "").Code)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "GET", "/api/import/status", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "GET", "/api/import/status", "not-a-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, "GET", "/api/import/status", viewerToken).Code)
	assert.Equal(t, http.StatusOK, serve(router, "GET", "/api/import/status", adminToken).Code)
	assert.Equal(t, http.StatusOK, serve(router, "GET", "/api/settings/import", adminToken).Code)

	assert.Equal(t, http.StatusOK, serve(router, "GET", "/api/auth/me", adminToken).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "GET", "/api/auth/me", "").Code)
}
