package openrouter

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned before any request is made without a key.
var ErrMissingAPIKey = errors.New("openrouter: API key not configured (set OPENROUTER_API_KEY or run `gauntlet key set`)")

// APIError is an error object in an OpenRouter response body.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openrouter: API error %d: %s", e.Code, e.Message)
}

// HTTPError represents a non-200 response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openrouter: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRateLimited returns true for 429.
func (e *HTTPError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsRetryable returns true for rate limits, timeouts and server errors.
func (e *HTTPError) IsRetryable() bool {
	return e.IsRateLimited() || e.StatusCode == http.StatusRequestTimeout || e.StatusCode >= 500
}

// AuthError indicates a rejected or unauthorized API key.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("openrouter: authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
}
