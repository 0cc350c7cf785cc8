package providers

import (
	"fmt"
	"time"
)

// ProviderError represents a non-2xx response from the upstream provider.
// It retains the upstream status code and body so callers can pass the
// original failure through to the client when fallback is exhausted.
type ProviderError struct {
	// Provider is the name of the provider that returned the error.
	Provider string

	// Model is the model identifier used for the failed attempt.
	Model string

	// StatusCode is the upstream HTTP status code.
	StatusCode int

	// Body is the raw upstream response body.
	Body string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q model %q error (status %d): %s", e.Provider, e.Model, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("provider %q model %q error: %v", e.Provider, e.Model, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsClientError reports whether the upstream status is in [400, 500).
// Client errors are retried on a shorter delay than transport failures.
func (e *ProviderError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// RateLimitError represents a rate limit exceeded error (HTTP 429).
type RateLimitError struct {
	// Provider is the name of the provider that rate limited the request.
	Provider string

	// Model is the model identifier used for the failed attempt.
	Model string

	// RetryAfter is the duration to wait before retrying (if provided).
	RetryAfter time.Duration

	// Body is the raw upstream response body.
	Body string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q model %q rate limit exceeded (retry after %s)", e.Provider, e.Model, e.RetryAfter)
	}
	return fmt.Sprintf("provider %q model %q rate limit exceeded", e.Provider, e.Model)
}

// TimeoutError represents a request that exceeded the configured timeout.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred.
	Provider string

	// Model is the model identifier used for the failed attempt.
	Model string

	// Timeout is the configured timeout duration.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q model %q request timeout after %s", e.Provider, e.Model, e.Timeout)
}

// ParseError represents a malformed upstream response body.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed response.
	Provider string

	// RawResponse is the raw response body that failed to parse.
	RawResponse string

	// Cause is the underlying parse error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// StreamError represents an error that occurred while reading an SSE body.
type StreamError struct {
	// Provider is the name of the provider where the error occurred.
	Provider string

	// Message is the error message.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q stream error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q stream error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid adapter configuration.
type ConfigError struct {
	// Provider is the name of the provider with invalid configuration.
	Provider string

	// Field is the configuration field that is invalid.
	Field string

	// Message describes the configuration error.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s", e.Provider, e.Field, e.Message)
}
