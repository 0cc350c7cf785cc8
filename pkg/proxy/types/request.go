package types

import "fmt"

// ChatCompletionRequest represents an OpenAI-compatible chat completion request.
// Only the fields the proxy acts on are declared; unknown fields in the
// request body are ignored on decode.
type ChatCompletionRequest struct {
	// Model is the model label requested by the caller. The proxy routes by
	// its own configured model chain, so this is advisory: when present it is
	// echoed back in the response, when absent the model actually used is
	// reported instead.
	Model string `json:"model,omitempty"`

	// Messages is the conversation history as a list of messages.
	Messages []Message `json:"messages"`

	// Temperature controls randomness in the response (0.0 to 2.0).
	// Optional; the proxy applies its own default when absent.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate.
	// Optional; the proxy applies a default and clamps to its allowed range.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Stream enables server-sent events (SSE) streaming.
	// Optional, defaults to false.
	Stream bool `json:"stream,omitempty"`

	// SessionID is an opaque caller-supplied conversation identifier.
	// Optional; carried into the request ledger, never sent upstream.
	SessionID string `json:"session_id,omitempty"`
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the author of the message ("system", "user", or "assistant").
	Role string `json:"role"`

	// Content is the text content of the message.
	Content string `json:"content"`
}

// Validate checks that required fields are present and values are within
// acceptable ranges.
func (r *ChatCompletionRequest) Validate() error {
	if len(r.Messages) == 0 {
		return &ValidationError{
			Field:   "messages",
			Message: "messages must contain at least one message",
		}
	}

	if r.Temperature != nil && (*r.Temperature < 0.0 || *r.Temperature > 2.0) {
		return &ValidationError{
			Field:   "temperature",
			Message: "temperature must be between 0.0 and 2.0",
		}
	}

	if r.MaxTokens != nil && *r.MaxTokens < 1 {
		return &ValidationError{
			Field:   "max_tokens",
			Message: "max_tokens must be greater than 0",
		}
	}

	for i, msg := range r.Messages {
		if msg.Role == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: "message role is required",
			}
		}
		if msg.Content == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].content", i),
				Message: "message content is required",
			}
		}
	}

	return nil
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
