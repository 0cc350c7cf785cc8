package providers

// Message represents a single message in a conversation.
// The sequence is chronological; new messages are only ever appended.
type Message struct {
	// Role identifies the message sender (system, user, assistant).
	Role string `json:"role"`

	// Content is the message text content.
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens used (prompt + completion).
	TotalTokens int `json:"total_tokens"`
}

// CompletionRequest is the provider-agnostic completion request assembled
// by the request handler after shaping (defaults, clamping, truncation).
// The adapter fills in the model chosen by the router per attempt.
type CompletionRequest struct {
	// Model is the upstream model identifier for this attempt.
	Model string `json:"model"`

	// Messages is the (already truncated) conversation history.
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 2.0).
	Temperature float64 `json:"temperature"`

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int `json:"max_tokens"`

	// Stream indicates whether to request an SSE response.
	Stream bool `json:"stream,omitempty"`
}

// Message role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants.
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)
