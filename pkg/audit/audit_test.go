package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newRecord(outcome Outcome, createdAt time.Time) *Record {
	return &Record{
		ID:         uuid.NewString(),
		RequestID:  uuid.NewString(),
		Outcome:    outcome,
		ErrorCount: 0,
		Duration:   250 * time.Microsecond,
		CreatedAt:  createdAt,
	}
}

func TestMemoryStorage_StoreAndRecent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		rec := newRecord(OutcomeValid, base.Add(time.Duration(i)*time.Minute))
		if err := store.Store(ctx, rec); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	recent, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent() returned %d records, want 3", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].CreatedAt.After(recent[i-1].CreatedAt) {
			t.Errorf("Recent() not ordered newest first at index %d", i)
		}
	}
}

func TestMemoryStorage_DeleteBefore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	now := time.Now()
	old := newRecord(OutcomeRuleError, now.Add(-48*time.Hour))
	fresh := newRecord(OutcomeValid, now)
	if err := store.Store(ctx, old); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := store.Store(ctx, fresh); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	deleted, err := store.DeleteBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteBefore() deleted = %d, want 1", deleted)
	}

	count, err := store.Count(ctx, time.Time{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()

	store, err := NewSQLiteStorage(&SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "audit.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	defer store.Close()

	rec := newRecord(OutcomeTypeError, time.Now())
	rec.Ruleset = "users"
	rec.ErrorCount = 2
	if err := store.Store(ctx, rec); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Recent() returned %d records, want 1", len(recent))
	}

	got := recent[0]
	if got.ID != rec.ID {
		t.Errorf("ID = %q, want %q", got.ID, rec.ID)
	}
	if got.Ruleset != "users" {
		t.Errorf("Ruleset = %q, want %q", got.Ruleset, "users")
	}
	if got.Outcome != OutcomeTypeError {
		t.Errorf("Outcome = %q, want %q", got.Outcome, OutcomeTypeError)
	}
	if got.ErrorCount != 2 {
		t.Errorf("ErrorCount = %d, want 2", got.ErrorCount)
	}
	if got.Duration != rec.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, rec.Duration)
	}
}

func TestSQLiteStorage_DeleteBefore(t *testing.T) {
	ctx := context.Background()

	store, err := NewSQLiteStorage(&SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		WALMode:     false,
		BusyTimeout: time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	defer store.Close()

	now := time.Now()
	if err := store.Store(ctx, newRecord(OutcomeValid, now.AddDate(0, 0, -100))); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := store.Store(ctx, newRecord(OutcomeValid, now)); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	deleted, err := store.DeleteBefore(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteBefore() deleted = %d, want 1", deleted)
	}
}

func TestPruner_Prune(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	now := time.Now()
	if err := store.Store(ctx, newRecord(OutcomeValid, now.AddDate(0, 0, -100))); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := store.Store(ctx, newRecord(OutcomeValid, now)); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	pruner := NewPruner(store, &RetentionConfig{RetentionDays: 90}, nil)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted = %d, want 1", deleted)
	}
}

func TestPruner_ZeroRetentionKeepsEverything(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	if err := store.Store(ctx, newRecord(OutcomeValid, time.Now().AddDate(-1, 0, 0))); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	pruner := NewPruner(store, &RetentionConfig{RetentionDays: 0}, nil)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() deleted = %d, want 0", deleted)
	}
}

func TestPruner_InvalidSchedule(t *testing.T) {
	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{
		RetentionDays: 30,
		PruneSchedule: "not a cron expression",
	}, nil)

	if err := pruner.Start(context.Background()); err == nil {
		t.Fatal("Start() with invalid schedule should return an error")
	}
}
