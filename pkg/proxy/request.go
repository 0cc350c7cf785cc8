package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy/types"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (10MB).
	MaxRequestBodySize = 10 * 1024 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// Shaping defaults applied to every upstream request.
const (
	// DefaultTemperature is used when the caller omits temperature.
	DefaultTemperature = 0.7

	// DefaultMaxTokens is the assumed max_tokens when the caller omits it.
	// It deliberately sits above MaxTokensCeiling so an unspecified value
	// still gets clamped down to the ceiling rather than passed through.
	DefaultMaxTokens = 12000

	// MaxTokensFloor and MaxTokensCeiling bound the max_tokens sent upstream.
	MaxTokensFloor   = 200
	MaxTokensCeiling = 8000
)

// DefaultSystemPrompt is prepended when the conversation carries no
// system-role message. Applied at most once per request.
const DefaultSystemPrompt = "Respond naturally, do not overanalyze, stay concise."

// ParseChatCompletionRequest parses an HTTP request body into a
// ChatCompletionRequest. It enforces the body size limit, decodes the JSON,
// and validates required fields.
func ParseChatCompletionRequest(r *http.Request) (*types.ChatCompletionRequest, error) {
	limitedReader := io.LimitReader(r.Body, MaxRequestBodySize)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) >= MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}

	var req types.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	if err := req.Validate(); err != nil {
		if valErr, ok := err.(*types.ValidationError); ok {
			return nil, &RequestError{
				Message: valErr.Message,
				Code:    types.CodeInvalidValue,
				Param:   valErr.Field,
			}
		}
		return nil, err
	}

	return &req, nil
}

// ShapeRequest converts a validated inbound request into the upstream
// completion request, applying the proxy's shaping policy:
//
//   - temperature defaults to DefaultTemperature when absent
//   - max_tokens defaults to DefaultMaxTokens, then is clamped to
//     [MaxTokensFloor, MaxTokensCeiling]
//   - when no system-role message exists, DefaultSystemPrompt is prepended
//     exactly once
//
// The model field is left empty: the dispatcher fills in the model for each
// attempt from its own configured chain.
func ShapeRequest(req *types.ChatCompletionRequest) *providers.CompletionRequest {
	temperature := DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	maxTokens := DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	if maxTokens < MaxTokensFloor {
		maxTokens = MaxTokensFloor
	}
	if maxTokens > MaxTokensCeiling {
		maxTokens = MaxTokensCeiling
	}

	messages := make([]providers.Message, 0, len(req.Messages)+1)
	if !hasSystemMessage(req.Messages) {
		messages = append(messages, providers.Message{
			Role:    providers.RoleSystem,
			Content: DefaultSystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, providers.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return &providers.CompletionRequest{
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      req.Stream,
	}
}

func hasSystemMessage(messages []types.Message) bool {
	for _, msg := range messages {
		if msg.Role == providers.RoleSystem {
			return true
		}
	}
	return false
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
// If the header is not present, it returns an empty string; the middleware
// generates one in that case.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to an OpenAI-compatible error response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}
