// Package types defines OpenAI-compatible request and response types for the proxy.
//
// The types match the OpenAI Chat Completions API format so that standard
// OpenAI SDKs work against the proxy without modification:
//
//	from openai import OpenAI
//	client = OpenAI(base_url="http://localhost:8080/v1")
//	response = client.chat.completions.create(
//	    model="deepseek-chat",
//	    messages=[{"role": "user", "content": "Hello!"}]
//	)
//
// Request types:
//   - ChatCompletionRequest: request body for /v1/chat/completions
//   - Message: individual message in conversation history
//
// Response types:
//   - ChatCompletionResponse: non-streaming response
//   - ChatCompletionStreamChunk: streaming response chunk (SSE)
//
// Error types:
//   - ErrorResponse / ErrorDetail: OpenAI-compatible error envelope
//
// Field names follow OpenAI's snake_case convention. Request validation
// returns *ValidationError values that the handler layer maps to 400
// responses in OpenAI error format.
package types
