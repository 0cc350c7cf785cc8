package proxy

import (
	"encoding/json"
	"errors"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy/types"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/routing"
)

// User-safe terminal error messages. Upstream failure detail is logged but
// never surfaced verbatim in these cases.
const (
	msgRateLimited = "Upstream rate limit reached. Please wait a moment and retry."
	msgUnavailable = "The service is temporarily unavailable. Please try again later."
	msgInternal    = "An internal error occurred. Please try again later."
	msgNoAPIKey    = "The proxy has no upstream API key configured."
)

// MapError converts a pipeline error into an HTTP status code and a JSON
// body ready to write.
//
// Mapping:
//   - parse/validation errors → 400, OpenAI error format
//   - missing upstream credential → 500, OpenAI error format
//   - exhausted chain ending in 429 → 429, user-safe rate-limit message
//   - exhausted chain ending in another 4xx with a body → upstream status
//     and body passed through unchanged
//   - exhausted chain ending in a 5xx with a body → upstream status and
//     body passed through unchanged
//   - exhausted chain with no upstream body (network failure, timeout) →
//     503, user-safe generic message
//   - anything else → 500, user-safe generic message
func MapError(err error) (int, []byte) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return marshalErrorResponse(reqErr.ToErrorResponse())
	}

	var valErr *types.ValidationError
	if errors.As(err, &valErr) {
		return marshalErrorResponse(types.NewInvalidRequestError(valErr.Message, valErr.Field, types.CodeInvalidValue))
	}

	var cfgErr *providers.ConfigError
	if errors.As(err, &cfgErr) {
		return marshalErrorResponse(types.NewServerError(msgNoAPIKey))
	}

	var exhausted *routing.ExhaustedError
	if errors.As(err, &exhausted) {
		return mapExhausted(exhausted)
	}

	var parseErr *providers.ParseError
	if errors.As(err, &parseErr) {
		return marshalErrorResponse(types.NewBadGatewayError(msgUnavailable))
	}

	return marshalErrorResponse(types.NewServerError(msgInternal))
}

// mapExhausted maps a terminal fallback-chain error by the last attempt's
// failure class.
func mapExhausted(exhausted *routing.ExhaustedError) (int, []byte) {
	var rateErr *providers.RateLimitError
	if errors.As(exhausted.LastErr, &rateErr) {
		return marshalErrorResponse(types.NewRateLimitError(msgRateLimited))
	}

	var provErr *providers.ProviderError
	if errors.As(exhausted.LastErr, &provErr) && provErr.StatusCode > 0 && provErr.Body != "" {
		// The upstream produced a real HTTP error body; hand it through as-is.
		return provErr.StatusCode, []byte(provErr.Body)
	}

	return marshalErrorResponse(types.NewServiceUnavailableError(msgUnavailable))
}

func marshalErrorResponse(errResp *types.ErrorResponse) (int, []byte) {
	body, err := json.Marshal(errResp)
	if err != nil {
		// Static fallback; the error types above always marshal.
		return 500, []byte(`{"error":{"message":"internal error","type":"server_error"}}`)
	}
	return errResp.Error.HTTPStatusCode(), body
}
