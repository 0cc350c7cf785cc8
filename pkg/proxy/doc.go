// Package proxy implements the request/response pipeline between the
// OpenAI-compatible HTTP surface and the upstream inference provider.
//
// # Pipeline
//
// Inbound requests flow through four stages:
//
//  1. Parse: ParseChatCompletionRequest decodes and validates the JSON body
//     (size-limited, OpenAI error format on failure).
//  2. Shape: ShapeRequest applies defaults (temperature, max_tokens clamp)
//     and prepends the synthesized system message when the conversation has
//     none.
//  3. Dispatch: the routing.Dispatcher runs the model fallback chain (owned
//     by pkg/routing, composed in pkg/proxy/handlers).
//  4. Normalize: NormalizeResponse converts the upstream body into an
//     OpenAI chat.completion, filling in the documented placeholder
//     defaults; streaming bodies instead pass through a StreamTransformer
//     that re-frames reasoning deltas as <think>...</think> content.
//
// # Error handling
//
// MapError converts the typed errors from pkg/providers and pkg/routing to
// OpenAI error responses:
//
//	{
//	  "error": {
//	    "message": "messages must contain at least one message",
//	    "type": "invalid_request_error",
//	    "param": "messages",
//	    "code": "invalid_value"
//	  }
//	}
//
// A rate-limited chain maps to 429, a transport-exhausted chain to 503, and
// a client-error exhaustion passes the upstream status and body through.
// Internal details never leak into error bodies.
package proxy
