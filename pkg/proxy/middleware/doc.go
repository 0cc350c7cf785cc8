// Package middleware provides the HTTP middleware chain for the proxy.
//
// The server composes the chain outermost-first:
//
//	handler = Recovery(Logging(RequestID(CORS(BodyLimit(handler)))))
//
//   - RecoveryMiddleware: converts handler panics to 500 responses in the
//     OpenAI error format, logging the stack trace
//   - LoggingMiddleware: structured request/response logs via log/slog
//   - RequestIDMiddleware: UUID request IDs, honored from X-Request-ID when
//     the client supplies one
//   - CORSMiddleware: CORS headers and preflight handling
//   - BodyLimitMiddleware: caps the inbound request body size
//
// The logging wrapper preserves http.Flusher so SSE responses keep flushing
// through the chain.
package middleware
