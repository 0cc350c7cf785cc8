package audit

import (
	"context"
	"log/slog"
)

// Recorder writes ledger records from the request path. Storage failures
// are logged and swallowed: the ledger must never fail a request.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{
		store:  store,
		logger: slog.Default().With("component", "audit.recorder"),
	}
}

// Record persists one request record.
func (r *Recorder) Record(ctx context.Context, rec *Record) {
	if err := r.store.Insert(ctx, rec); err != nil {
		r.logger.Error("failed to record request",
			"record_id", rec.ID,
			"error", err,
		)
		return
	}
	r.logger.Debug("request recorded",
		"record_id", rec.ID,
		"model_used", rec.ModelUsed,
		"status", rec.Status,
	)
}
