// Package photos downloads MP portraits and keeps them on local disk.
package photos

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const maxPhotoBytes = 10 << 20

var (
	ErrInvalidURL    = errors.New("photo URL must be an absolute http(s) URL")
	ErrNotAnImage    = errors.New("photo response is not an image")
	ErrPhotoTooLarge = errors.New("photo exceeds 10 MiB")
)

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Cache handles local caching of MP photos.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates a new photo cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetPhoto returns the cached photo for an MP, downloading it if needed.
// Returns the file path of the cached photo.
func (c *Cache) GetPhoto(ctx context.Context, mpID uint, photoURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(photoURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	cachePath := filepath.Join(c.cacheDir, photoFilename(mpID, u))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, u.String(), cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// InvalidatePhoto removes every cached photo of an MP.
func (c *Cache) InvalidatePhoto(mpID uint) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("mp_%d_*", mpID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}

// photoFilename derives a stable name from the MP id and the URL. The
// extension comes from the URL path and defaults to .jpg.
func photoFilename(mpID uint, u *url.URL) string {
	hash := sha256.Sum256([]byte(u.String()))
	ext := strings.ToLower(path.Ext(u.Path))
	if !allowedExtensions[ext] {
		ext = ".jpg"
	}
	return fmt.Sprintf("mp_%d_%x%s", mpID, hash[:8], ext)
}

func (c *Cache) fetchAndCache(ctx context.Context, photoURL, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "mp-directory-importer/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch photo: status %d", resp.StatusCode)
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	tmpFile, err := os.CreateTemp(c.cacheDir, "photo_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	written, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return err
	}
	if written > maxPhotoBytes {
		return ErrPhotoTooLarge
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, cachePath)
}
