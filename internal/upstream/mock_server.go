// Package upstream provides a mock inference endpoint for tests. It speaks
// just enough of the chat completions API to exercise the client, the
// dispatcher, and the streaming pipeline: scripted per-attempt responses,
// rate limit headers, and SSE emission with a reasoning channel.
package upstream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines one scripted response.
type MockResponse struct {
	StatusCode   int
	Body         any
	Delay        time.Duration
	Headers      map[string]string
	StreamChunks []string // SSE data payloads; takes precedence over Body
}

// MockServer simulates the upstream chat completions endpoint. Responses are
// consumed as a script: attempt N receives the Nth response, and the script's
// last entry repeats once exhausted.
type MockServer struct {
	server *httptest.Server

	mu           sync.Mutex
	script       []MockResponse
	requestCount int
	lastRequest  []byte
}

// NewMockServer starts a mock upstream. Callers must Close it.
func NewMockServer() *MockServer {
	ms := &MockServer{}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the server down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// Script replaces the response script and resets the request counter.
func (ms *MockServer) Script(responses ...MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.script = responses
	ms.requestCount = 0
}

// RequestCount returns the number of requests received since the last Script
// call.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.requestCount
}

// LastRequestBody returns the raw body of the most recent request.
func (ms *MockServer) LastRequestBody() []byte {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.lastRequest
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/chat/completions" {
		http.NotFound(w, r)
		return
	}

	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	idx := ms.requestCount
	ms.requestCount++
	ms.lastRequest = body
	if idx >= len(ms.script) {
		idx = len(ms.script) - 1
	}
	var response MockResponse
	if idx >= 0 {
		response = ms.script[idx]
	}
	ms.mu.Unlock()

	if idx < 0 {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.StreamChunks) > 0 {
		ms.streamResponse(w, response)
		return
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (ms *MockServer) streamResponse(w http.ResponseWriter, response MockResponse) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for _, chunk := range response.StreamChunks {
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		flusher.Flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// ChatResponseBody builds a minimal successful completion body.
func ChatResponseBody(model, content, reasoning string) map[string]any {
	message := map[string]any{
		"role":    "assistant",
		"content": content,
	}
	if reasoning != "" {
		message["reasoning_content"] = reasoning
	}
	return map[string]any{
		"id":      "chatcmpl-upstream-1",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       message,
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 34,
			"total_tokens":      46,
		},
	}
}

// StreamChunkBody builds one SSE data payload with optional content and
// reasoning deltas.
func StreamChunkBody(model, content, reasoning string, finishReason string) string {
	delta := map[string]any{}
	if content != "" {
		delta["content"] = content
	}
	if reasoning != "" {
		delta["reasoning_content"] = reasoning
	}

	choice := map[string]any{
		"index": 0,
		"delta": delta,
	}
	if finishReason != "" {
		choice["finish_reason"] = finishReason
	}

	chunk := map[string]any{
		"id":      "chatcmpl-upstream-1",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{choice},
	}

	raw, _ := json.Marshal(chunk)
	return string(raw)
}

// ErrorBody builds an upstream error payload in the provider's format.
func ErrorBody(message, errType string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    errType,
		},
	}
}
