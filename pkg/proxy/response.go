package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers/deepseek"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy/types"
)

// Placeholder usage reported when the upstream response carries no usage at
// all. Fixed non-zero values, chosen over zero-usage so downstream cost
// trackers never see a zero-token completion.
const (
	PlaceholderPromptTokens     = 10
	PlaceholderCompletionTokens = 50
	PlaceholderTotalTokens      = 60
)

// EmptyContentPlaceholder replaces an empty or missing completion body.
// A single space keeps clients that treat empty strings as falsy working.
const EmptyContentPlaceholder = " "

// NormalizeResponse converts an upstream chat response into an
// OpenAI-compatible chat.completion. The reported model is modelLabel
// (requested label when the caller sent one, otherwise the model actually
// used). With showReasoning set and a non-empty reasoning_content on the
// first choice, the reasoning is fused into the visible content between
// <think> and </think> markers.
func NormalizeResponse(resp *deepseek.ChatResponse, modelLabel string, showReasoning bool) *types.ChatCompletionResponse {
	content := ""
	finishReason := providers.FinishReasonStop
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		content = choice.Message.Content
		if choice.FinishReason != "" {
			finishReason = choice.FinishReason
		}
		if showReasoning && choice.Message.ReasoningContent != "" {
			content = fmt.Sprintf("<think>%s</think>\n%s", choice.Message.ReasoningContent, content)
		}
	}
	if content == "" {
		content = EmptyContentPlaceholder
	}

	usage := types.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 && usage.TotalTokens == 0 {
		usage = types.Usage{
			PromptTokens:     PlaceholderPromptTokens,
			CompletionTokens: PlaceholderCompletionTokens,
			TotalTokens:      PlaceholderTotalTokens,
		}
	}

	return &types.ChatCompletionResponse{
		ID:      fmt.Sprintf("chatcmpl-%s", uuid.NewString()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   modelLabel,
		Choices: []types.Choice{
			{
				Index: 0,
				Message: types.Message{
					Role:    providers.RoleAssistant,
					Content: content,
				},
				FinishReason: finishReason,
			},
		},
		Usage: usage,
	}
}

// WriteJSONResponse writes a JSON response with the given status code.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	// Keep <think> markers in fused content as literal bytes.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes an OpenAI-compatible error response, deriving
// the HTTP status code from the error type.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.Error.HTTPStatusCode(), errResp)
}

// SetSSEHeaders sets the headers for Server-Sent Events streaming.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}
