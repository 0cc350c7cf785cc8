// Package audit keeps a request ledger in SQLite: one record per completed
// chat completion with routing outcome, token usage and latency.
//
// The ledger is operational, not conversational: it stores no message
// content. Storage uses the pure-Go modernc.org/sqlite driver with WAL mode
// enabled. A cron-driven Scheduler prunes records past the configured
// retention window.
//
// Writing is fire-and-forget from the request path: Recorder.Record logs
// and swallows storage failures so a broken ledger never fails a request.
package audit
