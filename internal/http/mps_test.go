package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mpdirectory/internal/database"
	"github.com/mrlokans/mpdirectory/internal/database/mps"
	"github.com/mrlokans/mpdirectory/internal/entities"
)

type stubPhotoCache struct {
	path  string
	err   error
	calls int
}

func (s *stubPhotoCache) GetPhoto(ctx context.Context, mpID uint, photoURL string) (string, error) {
	s.calls++
	return s.path, s.err
}

func setupMPsTest(t *testing.T) *mps.Repository {
	t.Helper()

	db, err := database.NewQuietDatabase(filepath.Join(t.TempDir(), "mps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return mps.NewRepository(db.DB)
}

func seedMP(t *testing.T, repo *mps.Repository, externalID, title string, fields entities.MPFields) *entities.MP {
	t.Helper()
	mp := &entities.MP{ExternalID: externalID, Title: title, Status: entities.PostStatusPublish}
	require.NoError(t, repo.Create(context.Background(), mp))
	require.NoError(t, repo.UpdateFields(context.Background(), mp.ID, fields))
	return mp
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func newMPsRouter(repo MPReader, photos PhotoCache) *gin.Engine {
	router := gin.New()
	NewMPsController(repo, photos).RegisterRoutes(router.Group("/api/mps"))
	return router
}

func TestMPsController_List(t *testing.T) {
	repo := setupMPsTest(t)
	seedMP(t, repo, "1", "Anna Nowak", entities.MPFields{Party: "KO", Constituency: "Warszawa", Term: "10"})
	seedMP(t, repo, "2", "Jan Kowalski", entities.MPFields{Party: "PiS", Constituency: "Kraków", Term: "10"})
	seedMP(t, repo, "3", "Ewa Zielińska", entities.MPFields{Party: "KO", Constituency: "Gdańsk", Term: "10"})
	router := newMPsRouter(repo, nil)

	t.Run("all, ordered by title", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/mps", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data    []entities.MP `json:"data"`
			Total   int64         `json:"total"`
			HasMore bool          `json:"has_more"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.Total)
		require.Len(t, resp.Data, 3)
		assert.Equal(t, "Anna Nowak", resp.Data[0].Title)
		assert.Equal(t, "Jan Kowalski", resp.Data[2].Title)
		assert.False(t, resp.HasMore)
	})

	t.Run("filtered and paged", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/mps?party=KO&limit=1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(2), resp.Total)
		assert.Equal(t, 1, resp.Limit)
		assert.True(t, resp.HasMore)
	})

	t.Run("search", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/mps?q=Kowal", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Jan Kowalski")
		assert.NotContains(t, w.Body.String(), "Anna Nowak")
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/mps?party=None", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("invalid offset", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/mps?offset=x", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMPsController_Get(t *testing.T) {
	repo := setupMPsTest(t)
	mp := seedMP(t, repo, "42", "Anna Nowak", entities.MPFields{Party: "KO"})
	router := newMPsRouter(repo, nil)

	w := doJSON(router, "GET", "/api/mps/"+itoa(mp.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Anna Nowak", got["title"])
	assert.Equal(t, "KO", got["party"])
	assert.NotContains(t, got, "ExternalID")

	w = doJSON(router, "GET", "/api/mps/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "GET", "/api/mps/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMPsController_Filters(t *testing.T) {
	repo := setupMPsTest(t)
	seedMP(t, repo, "1", "A", entities.MPFields{Party: "PiS", Constituency: "Kraków", Term: "10"})
	seedMP(t, repo, "2", "B", entities.MPFields{Party: "KO", Constituency: "", Term: "10"})
	router := newMPsRouter(repo, nil)

	w := doJSON(router, "GET", "/api/mps/filters", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp FiltersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"KO", "PiS"}, resp.Parties)
	assert.Equal(t, []string{"Kraków"}, resp.Constituencies)
	assert.Equal(t, []string{"10"}, resp.Terms)
}

func TestMPsController_Photo(t *testing.T) {
	t.Run("serves the sideloaded file", func(t *testing.T) {
		repo := setupMPsTest(t)
		mp := seedMP(t, repo, "1", "A", entities.MPFields{PhotoURL: "https://example.com/1.jpg"})

		path := filepath.Join(t.TempDir(), "1.jpg")
		require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o644))
		require.NoError(t, repo.SetFeaturedImage(context.Background(), mp.ID, path, "https://example.com/1.jpg"))

		photos := &stubPhotoCache{}
		w := doJSON(newMPsRouter(repo, photos), "GET", "/api/mps/"+itoa(mp.ID)+"/photo", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "jpeg-bytes", w.Body.String())
		assert.Equal(t, 0, photos.calls)
	})

	t.Run("downloads on a miss", func(t *testing.T) {
		repo := setupMPsTest(t)
		mp := seedMP(t, repo, "1", "A", entities.MPFields{PhotoURL: "https://example.com/1.jpg"})

		path := filepath.Join(t.TempDir(), "cached.jpg")
		require.NoError(t, os.WriteFile(path, []byte("cached"), 0o644))

		photos := &stubPhotoCache{path: path}
		w := doJSON(newMPsRouter(repo, photos), "GET", "/api/mps/"+itoa(mp.ID)+"/photo", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cached", w.Body.String())
		assert.Equal(t, 1, photos.calls)
	})

	t.Run("redirects when the download fails", func(t *testing.T) {
		repo := setupMPsTest(t)
		mp := seedMP(t, repo, "1", "A", entities.MPFields{SejmPhotoURL: "https://api.sejm.gov.pl/sejm/term10/MP/1/photo"})

		photos := &stubPhotoCache{err: errors.New("timeout")}
		w := doJSON(newMPsRouter(repo, photos), "GET", "/api/mps/"+itoa(mp.ID)+"/photo", "")

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "https://api.sejm.gov.pl/sejm/term10/MP/1/photo", w.Header().Get("Location"))
	})

	t.Run("404 without any photo", func(t *testing.T) {
		repo := setupMPsTest(t)
		mp := seedMP(t, repo, "1", "A", entities.MPFields{})

		w := doJSON(newMPsRouter(repo, &stubPhotoCache{}), "GET", "/api/mps/"+itoa(mp.ID)+"/photo", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
