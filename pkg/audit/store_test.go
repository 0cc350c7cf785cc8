package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(&StoreConfig{
		Path:         filepath.Join(t.TempDir(), "audit.db"),
		MaxOpenConns: 2,
		BusyTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(id string, status int, createdAt time.Time) *Record {
	return &Record{
		ID:               id,
		CreatedAt:        createdAt,
		SessionID:        "sess-1",
		ModelRequested:   "deepseek-chat",
		ModelUsed:        "deepseek-chat",
		Attempts:         1,
		Status:           status,
		PromptTokens:     10,
		CompletionTokens: 50,
		TotalTokens:      60,
		LatencyMS:        120,
	}
}

func TestStoreInsertAndSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, status := range []int{200, 200, 503} {
		rec := sampleRecord(string(rune('a'+i))+"-rec", status, now)
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	sum, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", sum.TotalRequests)
	}
	if sum.FailedRequests != 1 {
		t.Errorf("FailedRequests = %d, want 1", sum.FailedRequests)
	}
	if sum.TotalTokens != 180 {
		t.Errorf("TotalTokens = %d, want 180", sum.TotalTokens)
	}
	if sum.AvgLatencyMS != 120 {
		t.Errorf("AvgLatencyMS = %v, want 120", sum.AvgLatencyMS)
	}
}

func TestStoreRecentFailures(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	records := []*Record{
		sampleRecord("ok", 200, now),
		sampleRecord("old-failure", 503, now.Add(-2*time.Hour)),
		sampleRecord("new-failure", 429, now.Add(-time.Minute)),
	}
	for _, rec := range records {
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	failures, err := store.RecentFailures(ctx, 10)
	if err != nil {
		t.Fatalf("RecentFailures() error = %v", err)
	}
	if len(failures) != 2 {
		t.Fatalf("len(failures) = %d, want 2", len(failures))
	}
	if failures[0].ID != "new-failure" {
		t.Errorf("failures[0].ID = %q, want newest first", failures[0].ID)
	}
	if failures[1].ID != "old-failure" {
		t.Errorf("failures[1].ID = %q, want old-failure", failures[1].ID)
	}
}

func TestStorePruneBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.Insert(ctx, sampleRecord("ancient", 200, now.AddDate(0, 0, -40))); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Insert(ctx, sampleRecord("fresh", 200, now)); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	deleted, err := store.PruneBefore(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("PruneBefore() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	sum, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.TotalRequests != 1 {
		t.Errorf("TotalRequests after prune = %d, want 1", sum.TotalRequests)
	}
}

func TestRecorderSurvivesClosedStore(t *testing.T) {
	store := newTestStore(t)
	recorder := NewRecorder(store)
	store.Close()

	// Must not panic; the failure is logged and swallowed.
	recorder.Record(context.Background(), sampleRecord("r", 200, time.Now().UTC()))
}

func TestSchedulerDisabledWithoutSchedule(t *testing.T) {
	store := newTestStore(t)
	s := NewScheduler(store, "", 30)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler running with empty schedule")
	}
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	store := newTestStore(t)
	s := NewScheduler(store, "not a cron line", 30)

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() accepted an invalid cron expression")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	store := newTestStore(t)
	s := NewScheduler(store, DefaultPruneSchedule, 30)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Error("scheduler not running after Start")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler still running after Stop")
	}
}
