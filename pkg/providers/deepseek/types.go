package deepseek

import "github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"

// ChatResponse represents a non-streaming upstream chat completion response.
type ChatResponse struct {
	ID      string               `json:"id"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Model   string               `json:"model"`
	Choices []Choice             `json:"choices"`
	Usage   providers.TokenUsage `json:"usage"`
}

// Choice represents a completion choice in the upstream response.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// ResponseMessage is the assistant message inside a choice. ReasoningContent
// carries the model's chain-of-thought channel when the upstream model
// exposes one.
type ResponseMessage struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// StreamChunk represents a single parsed SSE data payload from the
// streaming endpoint.
type StreamChunk struct {
	ID      string         `json:"id,omitempty"`
	Object  string         `json:"object,omitempty"`
	Created int64          `json:"created,omitempty"`
	Model   string         `json:"model,omitempty"`
	Choices []StreamChoice `json:"choices"`

	// Usage is only present in the final chunk when the upstream
	// includes it.
	Usage *providers.TokenUsage `json:"usage,omitempty"`
}

// StreamChoice represents a choice in a stream chunk.
type StreamChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Delta is the incremental content in a stream chunk. Content and
// ReasoningContent may each be present, absent, or both absent.
type Delta struct {
	Role             string `json:"role,omitempty"`
	Content          string `json:"content,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}
