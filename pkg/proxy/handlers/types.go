package handlers

import (
	"context"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/audit"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/routing"
)

// Dispatcher runs a request through the model fallback chain.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *providers.CompletionRequest) (*routing.Result, error)
	DispatchStream(ctx context.Context, req *providers.CompletionRequest) (*routing.StreamResult, error)
}

// Truncator bounds a conversation history before dispatch.
type Truncator interface {
	Truncate(history []providers.Message) []providers.Message
	Dropped(length int) int
}

// CredentialChecker reports whether an upstream credential is configured.
type CredentialChecker interface {
	HasAPIKey() bool
}

// MetricsRecorder receives per-request observations. Implementations must
// tolerate being called from concurrent requests. A nil recorder disables
// metrics.
type MetricsRecorder interface {
	ObserveRequest(model, status string, seconds float64)
	ObserveTokens(model string, promptTokens, completionTokens int)
}

// Auditor persists one ledger record per completed request. A nil auditor
// disables the ledger.
type Auditor interface {
	Record(ctx context.Context, rec *audit.Record)
}
