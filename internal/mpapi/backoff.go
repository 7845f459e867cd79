package mpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxRetries is the total number of attempts made for one request.
	MaxRetries = 3

	defaultRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Backoff returns the wait after the given failed attempt (1-based):
// base, 2*base, 4*base and so on, capped at 30 seconds. Transport failures
// and retryable statuses share it.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 || attempt < 1 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= retryBackoffFactor
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// retryDelay picks the wait before the next attempt, letting a server-provided
// Retry-After extend (never shorten) the computed backoff.
func retryDelay(base time.Duration, attempt int, retryAfter time.Duration) time.Duration {
	delay := Backoff(base, attempt)
	if retryAfter > delay {
		delay = retryAfter
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
