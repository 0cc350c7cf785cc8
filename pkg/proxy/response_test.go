package proxy

import (
	"strings"
	"testing"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers/deepseek"
)

func upstreamResponse(content, reasoning, finishReason string, usage providers.TokenUsage) *deepseek.ChatResponse {
	return &deepseek.ChatResponse{
		ID:     "abc123",
		Object: "chat.completion",
		Model:  "deepseek-chat",
		Choices: []deepseek.Choice{
			{
				Message: deepseek.ResponseMessage{
					Role:             "assistant",
					Content:          content,
					ReasoningContent: reasoning,
				},
				FinishReason: finishReason,
			},
		},
		Usage: usage,
	}
}

func TestNormalizeResponseBasics(t *testing.T) {
	resp := NormalizeResponse(
		upstreamResponse("hello there", "", "stop", providers.TokenUsage{PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12}),
		"deepseek-chat", false)

	if !strings.HasPrefix(resp.ID, "chatcmpl-") {
		t.Errorf("ID = %q, want chatcmpl- prefix", resp.ID)
	}
	if resp.Object != "chat.completion" {
		t.Errorf("Object = %q, want chat.completion", resp.Object)
	}
	if resp.Model != "deepseek-chat" {
		t.Errorf("Model = %q, want deepseek-chat", resp.Model)
	}
	if got := resp.Choices[0].Message.Content; got != "hello there" {
		t.Errorf("Content = %q, want %q", got, "hello there")
	}
	if resp.Usage.TotalTokens != 12 {
		t.Errorf("TotalTokens = %d, want upstream value 12", resp.Usage.TotalTokens)
	}
}

func TestNormalizeResponseEmptyContentPlaceholder(t *testing.T) {
	resp := NormalizeResponse(
		upstreamResponse("", "", "stop", providers.TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2}),
		"m", false)

	if got := resp.Choices[0].Message.Content; got != EmptyContentPlaceholder {
		t.Errorf("Content = %q, want single-space placeholder", got)
	}
}

func TestNormalizeResponseNoChoices(t *testing.T) {
	resp := NormalizeResponse(&deepseek.ChatResponse{}, "m", false)

	if got := resp.Choices[0].Message.Content; got != EmptyContentPlaceholder {
		t.Errorf("Content = %q, want single-space placeholder", got)
	}
	if got := resp.Choices[0].FinishReason; got != providers.FinishReasonStop {
		t.Errorf("FinishReason = %q, want stop default", got)
	}
}

func TestNormalizeResponseFinishReasonDefault(t *testing.T) {
	resp := NormalizeResponse(
		upstreamResponse("x", "", "", providers.TokenUsage{TotalTokens: 1}),
		"m", false)

	if got := resp.Choices[0].FinishReason; got != "stop" {
		t.Errorf("FinishReason = %q, want %q", got, "stop")
	}
}

func TestNormalizeResponseUsagePlaceholder(t *testing.T) {
	resp := NormalizeResponse(upstreamResponse("x", "", "stop", providers.TokenUsage{}), "m", false)

	if resp.Usage.PromptTokens != PlaceholderPromptTokens ||
		resp.Usage.CompletionTokens != PlaceholderCompletionTokens ||
		resp.Usage.TotalTokens != PlaceholderTotalTokens {
		t.Errorf("Usage = %+v, want fixed placeholder {%d,%d,%d}",
			resp.Usage, PlaceholderPromptTokens, PlaceholderCompletionTokens, PlaceholderTotalTokens)
	}
}

func TestNormalizeResponseReasoningFusion(t *testing.T) {
	tests := []struct {
		name          string
		showReasoning bool
		want          string
	}{
		{"enabled", true, "<think>let me think</think>\nthe answer"},
		{"disabled", false, "the answer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NormalizeResponse(
				upstreamResponse("the answer", "let me think", "stop", providers.TokenUsage{TotalTokens: 3}),
				"m", tt.showReasoning)

			if got := resp.Choices[0].Message.Content; got != tt.want {
				t.Errorf("Content = %q, want %q", got, tt.want)
			}
		})
	}
}
