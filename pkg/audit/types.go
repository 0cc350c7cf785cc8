package audit

import "time"

// Record is one ledger entry for a completed request.
type Record struct {
	// ID is a UUID assigned by the caller.
	ID string

	// CreatedAt is when the request finished, in UTC.
	CreatedAt time.Time

	// SessionID is the caller-supplied conversation identifier, if any.
	SessionID string

	// ModelRequested is the model label from the request body, if any.
	ModelRequested string

	// ModelUsed is the model that actually served the request. Empty when
	// the whole chain failed.
	ModelUsed string

	// Attempts is the number of models tried, including the successful one.
	Attempts int

	// Status is the HTTP status returned to the caller.
	Status int

	// Token usage as reported to the caller.
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int

	// LatencyMS is the end-to-end request latency in milliseconds.
	LatencyMS int64
}

// Summary aggregates the ledger for operational queries.
type Summary struct {
	// TotalRequests is the number of records in the ledger.
	TotalRequests int64

	// FailedRequests counts records with a status of 400 or above.
	FailedRequests int64

	// TotalTokens sums total_tokens across all records.
	TotalTokens int64

	// AvgLatencyMS is the mean request latency, zero when empty.
	AvgLatencyMS float64
}
