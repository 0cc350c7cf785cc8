package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// schema creates the ledger table and its query indexes.
const schema = `
CREATE TABLE IF NOT EXISTS requests (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    session_id TEXT,
    model_requested TEXT,
    model_used TEXT,
    attempts INTEGER NOT NULL,
    status INTEGER NOT NULL,
    prompt_tokens INTEGER,
    completion_tokens INTEGER,
    total_tokens INTEGER,
    latency_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at);
CREATE INDEX IF NOT EXISTS idx_requests_session_id ON requests(session_id);
CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);
`

// StoreConfig configures the SQLite ledger backend.
type StoreConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns bounds the connection pool. Default: 10.
	MaxOpenConns int

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// DefaultStoreConfig returns the default ledger configuration.
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		BusyTimeout:  5 * time.Second,
	}
}

// Store is the SQLite-backed request ledger.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (or creates) the ledger database, enables WAL mode and
// applies the schema.
func NewStore(config *StoreConfig) (*Store, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "audit.store"),
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal mode: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", config.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}

	s.logger.Info("audit ledger opened", "path", config.Path)
	return s, nil
}

// Insert persists one ledger record.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (
			id, created_at, session_id, model_requested, model_used,
			attempts, status, prompt_tokens, completion_tokens, total_tokens,
			latency_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt, rec.SessionID, rec.ModelRequested, rec.ModelUsed,
		rec.Attempts, rec.Status, rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens,
		rec.LatencyMS,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// RecentFailures returns the most recent records with status >= 400, newest
// first, up to limit.
func (s *Store) RecentFailures(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, session_id, model_requested, model_used,
		       attempts, status, prompt_tokens, completion_tokens, total_tokens,
		       latency_ms
		FROM requests
		WHERE status >= 400
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent failures: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.CreatedAt, &rec.SessionID, &rec.ModelRequested, &rec.ModelUsed,
			&rec.Attempts, &rec.Status, &rec.PromptTokens, &rec.CompletionTokens, &rec.TotalTokens,
			&rec.LatencyMS,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summary aggregates the whole ledger.
func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status >= 400 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(total_tokens), 0),
		       COALESCE(AVG(latency_ms), 0)
		FROM requests`,
	).Scan(&sum.TotalRequests, &sum.FailedRequests, &sum.TotalTokens, &sum.AvgLatencyMS)
	if err != nil {
		return nil, fmt.Errorf("query audit summary: %w", err)
	}
	return &sum, nil
}

// PruneBefore deletes all records created before the cutoff and returns the
// number deleted.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit records: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune audit records: %w", err)
	}
	return deleted, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
