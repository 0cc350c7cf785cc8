// Package providers defines the provider-agnostic request types and the
// error taxonomy shared by the upstream adapter and the fallback router.
//
// The concrete DeepSeek adapter lives in the deepseek subpackage. Errors
// returned by an adapter are typed so routing can classify an attempt
// outcome without inspecting HTTP plumbing:
//
//   - *RateLimitError: upstream returned 429
//   - *ProviderError:  upstream returned another non-2xx status
//   - *TimeoutError:   the request exceeded the configured timeout
//   - *StreamError:    the SSE body failed mid-stream
//   - *ConfigError:    the adapter was constructed with invalid settings
//
// Statuses below 500 never surface as bare transport failures; they carry
// the upstream status and body so the caller can decide whether to fall
// back to another model or pass the response through.
package providers
