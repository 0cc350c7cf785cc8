// Package deepseek implements the upstream requester for a DeepSeek-style
// chat completion API.
//
// The API is OpenAI-shaped with one extension: responses may carry a
// reasoning_content field next to content, both in batch responses
// (choices[0].message.reasoning_content) and in streaming deltas
// (choices[0].delta.reasoning_content).
//
// The client issues exactly one provider call per invocation and never
// retries internally; retry and fallback policy belong to pkg/routing.
// Upstream statuses below 500 are reported as typed errors carrying the
// status and body rather than as transport failures, so the router can
// inspect every outcome uniformly.
package deepseek
