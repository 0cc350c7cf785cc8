// Package handlers contains the HTTP handlers for the proxy's API surface.
//
// ChatHandler is the composition root of the request pipeline: it checks
// credentials, parses and shapes the request, truncates the conversation,
// dispatches through the model fallback chain, and normalizes the response
// (buffered JSON or SSE streaming). HealthHandler, ModelsHandler and
// NotFoundHandler cover the remaining routes.
//
// Handlers depend on small interfaces declared in this package so tests can
// substitute fakes for the dispatcher, metrics and the audit ledger.
package handlers
