package mpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultPageParam    = "page"
	defaultPerPageParam = "per_page"
	userAgent           = "mp-directory-importer/1.0"
	errorBodyLimit      = 512
)

// Record is one raw MP object as returned by the upstream API.
type Record = map[string]any

// SettingsProvider supplies the runtime import settings.
type SettingsProvider interface {
	GetImportSettings() entities.ImportSettings
}

// Options tune the HTTP behaviour of a Client. Zero values pick defaults.
type Options struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	RateLimit      float64 // Requests per second, 0 disables limiting
	RetryBaseDelay time.Duration
	PageParam      string
	PerPageParam   string
}

// Client fetches MP listings from the upstream REST API.
type Client struct {
	httpClient   *http.Client
	settings     SettingsProvider
	limiter      *rate.Limiter
	baseDelay    time.Duration
	pageParam    string
	perPageParam string
}

// Page is one normalized API response.
type Page struct {
	Records []Record
	// HasNext mirrors pagination.has_next when the API sends it.
	HasNext *bool
}

// ConnectionResult is the outcome of TestConnection.
type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewClient creates a client reading base URL, key and paging mode from settings.
func NewClient(settings SettingsProvider, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	c := &Client{
		httpClient:   httpClient,
		settings:     settings,
		limiter:      limiter,
		baseDelay:    opts.RetryBaseDelay,
		pageParam:    opts.PageParam,
		perPageParam: opts.PerPageParam,
	}
	if c.baseDelay <= 0 {
		c.baseDelay = defaultRetryDelay
	}
	if c.pageParam == "" {
		c.pageParam = defaultPageParam
	}
	if c.perPageParam == "" {
		c.perPageParam = defaultPerPageParam
	}
	return c
}

// Fetch performs one GET for the given page and returns the decoded JSON.
// Transport failures and 429/5xx gateway statuses are retried with Backoff.
func (c *Client) Fetch(ctx context.Context, page, perPage int) (any, error) {
	settings := c.settings.GetImportSettings()
	endpoint, err := c.buildURL(settings, page, perPage)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, retryAfter, err := c.doRequest(ctx, endpoint, settings.APIKey, attempt)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryableError(err) || attempt == MaxRetries {
			break
		}

		delay := retryDelay(c.baseDelay, attempt, retryAfter)
		log.Printf("MP API: attempt %d/%d failed: %v (retrying in %s)", attempt, MaxRetries, err, delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

// GetMPs fetches and normalizes one page of MPs.
func (c *Client) GetMPs(ctx context.Context, page, perPage int) (*Page, error) {
	body, err := c.Fetch(ctx, page, perPage)
	if err != nil {
		return nil, err
	}
	return &Page{
		Records: Normalize(body),
		HasNext: hasNext(body),
	}, nil
}

// TestConnection fetches a single record and reports the outcome. It never fails.
func (c *Client) TestConnection(ctx context.Context) ConnectionResult {
	if _, err := c.GetMPs(ctx, 1, 1); err != nil {
		return ConnectionResult{Success: false, Message: err.Error()}
	}
	return ConnectionResult{Success: true, Message: "API connection successful!"}
}

func (c *Client) buildURL(settings entities.ImportSettings, page, perPage int) (string, error) {
	base := strings.TrimSpace(settings.APIBaseURL)
	if base == "" {
		return "", ErrNotConfigured
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidBaseURL, base)
	}

	if settings.Pagination == entities.PaginationPage {
		q := u.Query()
		q.Set(c.pageParam, strconv.Itoa(max(page, 1)))
		q.Set(c.perPageParam, strconv.Itoa(max(perPage, 1)))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) doRequest(ctx context.Context, endpoint, apiKey string, attempt int) (any, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Attempts: attempt, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return nil, retryAfter, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	var body any
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		return nil, 0, &DecodeError{Err: err}
	}
	return body, 0, nil
}
