package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mpdirectory/internal/database/mps"
	"github.com/mrlokans/mpdirectory/internal/entities"
)

// MPReader is the read side of the MP repository.
type MPReader interface {
	GetByID(ctx context.Context, id uint) (*entities.MP, error)
	List(ctx context.Context, filter entities.MPFilter) ([]entities.MP, int64, error)
	DistinctParties(ctx context.Context) ([]string, error)
	DistinctConstituencies(ctx context.Context) ([]string, error)
	DistinctTerms(ctx context.Context) ([]string, error)
}

// PhotoCache downloads and stores MP photos on demand.
type PhotoCache interface {
	GetPhoto(ctx context.Context, mpID uint, photoURL string) (string, error)
}

// MPsController serves the public directory.
type MPsController struct {
	store  MPReader
	photos PhotoCache
}

// NewMPsController creates a new MPsController. photos may be nil.
func NewMPsController(store MPReader, photos PhotoCache) *MPsController {
	return &MPsController{
		store:  store,
		photos: photos,
	}
}

// RegisterRoutes mounts the public directory endpoints.
func (mc *MPsController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", mc.List)
	group.GET("/filters", mc.Filters)
	group.GET("/:id", mc.Get)
	group.GET("/:id/photo", mc.Photo)
}

// List handles GET /api/mps.
func (mc *MPsController) List(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", mps.DefaultListLimit)
	if !ok {
		return
	}
	offset, ok := parseIntQuery(c, "offset", 0)
	if !ok {
		return
	}
	if limit == 0 {
		limit = mps.DefaultListLimit
	}
	if limit > mps.MaxListLimit {
		limit = mps.MaxListLimit
	}

	filter := entities.MPFilter{
		Party:        strings.TrimSpace(c.Query("party")),
		Constituency: strings.TrimSpace(c.Query("constituency")),
		Term:         strings.TrimSpace(c.Query("term")),
		Search:       strings.TrimSpace(c.Query("q")),
		Limit:        limit,
		Offset:       offset,
	}

	list, total, err := mc.store.List(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err, "list mps")
		return
	}
	if list == nil {
		list = []entities.MP{}
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    list,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(list)) < total,
	})
}

// Get handles GET /api/mps/:id.
func (mc *MPsController) Get(c *gin.Context) {
	mp, ok := mc.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mp)
}

// Photo handles GET /api/mps/:id/photo. It serves the sideloaded file,
// downloads it on a miss, and redirects to the source when that fails.
func (mc *MPsController) Photo(c *gin.Context) {
	mp, ok := mc.lookup(c)
	if !ok {
		return
	}

	if mp.FeaturedImagePath != "" {
		if _, err := os.Stat(mp.FeaturedImagePath); err == nil {
			c.File(mp.FeaturedImagePath)
			return
		}
	}

	source := photoSource(mp)
	if source == "" {
		respondNotFound(c, "photo")
		return
	}

	if mc.photos != nil {
		path, err := mc.photos.GetPhoto(c.Request.Context(), mp.ID, source)
		if err == nil && path != "" {
			c.File(path)
			return
		}
		log.Printf("Photo cache: serving redirect for MP %d: %v", mp.ID, err)
	}

	c.Redirect(http.StatusTemporaryRedirect, source)
}

// FiltersResponse lists the values the directory can be filtered by.
type FiltersResponse struct {
	Parties        []string `json:"parties"`
	Constituencies []string `json:"constituencies"`
	Terms          []string `json:"terms"`
}

// Filters handles GET /api/mps/filters.
func (mc *MPsController) Filters(c *gin.Context) {
	ctx := c.Request.Context()

	parties, err := mc.store.DistinctParties(ctx)
	if err != nil {
		respondInternalError(c, err, "list parties")
		return
	}
	constituencies, err := mc.store.DistinctConstituencies(ctx)
	if err != nil {
		respondInternalError(c, err, "list constituencies")
		return
	}
	terms, err := mc.store.DistinctTerms(ctx)
	if err != nil {
		respondInternalError(c, err, "list terms")
		return
	}

	c.JSON(http.StatusOK, FiltersResponse{
		Parties:        parties,
		Constituencies: constituencies,
		Terms:          terms,
	})
}

func (mc *MPsController) lookup(c *gin.Context) (*entities.MP, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	mp, err := mc.store.GetByID(c.Request.Context(), id)
	if errors.Is(err, mps.ErrNotFound) {
		respondNotFound(c, "MP")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "get mp")
		return nil, false
	}
	if mp.Status != entities.PostStatusPublish {
		respondNotFound(c, "MP")
		return nil, false
	}
	return mp, true
}

// photoSource prefers the URL the featured image came from, then the
// mapped photo fields.
func photoSource(mp *entities.MP) string {
	for _, candidate := range []string{mp.FeaturedImageURL, mp.PhotoURL, mp.SejmPhotoURL} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}
