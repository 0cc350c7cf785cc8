package routing

import "fmt"

// ExhaustedError is returned when every model in the chain has been
// attempted without success. It is terminal for the request: the caller
// maps it to an HTTP response, it is never retried further.
type ExhaustedError struct {
	// Attempts is the number of models tried (1 + fallback count).
	Attempts int

	// LastErr is the failure from the final attempt, retained so the
	// handler can pass upstream status and body through when appropriate.
	LastErr error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d models exhausted: %v", e.Attempts, e.LastErr)
}

// Unwrap returns the final attempt's error for error chain support.
func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}
