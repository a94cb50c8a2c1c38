package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mural/internal/journal"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.OpenPath(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndFinishRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	runID, err := store.RecordStart(ctx)
	if err != nil {
		t.Fatalf("record start: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	err = store.Finish(ctx, runID, journal.Summary{
		Status:    "applied",
		AppliedID: 3103430809,
		Fetched:   120,
		Filtered:  14,
		Attempted: 1,
		Trace:     []string{"tag=Nature p1 items=100", "early-stop: reached min_candidates=10"},
	})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	last, err := store.LastRun(ctx)
	if err != nil {
		t.Fatalf("last run: %v", err)
	}
	if last == nil || last.RunID != runID {
		t.Fatalf("last run = %+v", last)
	}
	if last.Status != "applied" || last.AppliedID != 3103430809 {
		t.Fatalf("run facts = %+v", last)
	}
	if last.Fetched != 120 || last.Filtered != 14 || last.Attempted != 1 {
		t.Fatalf("run counters = %+v", last)
	}
	if last.FinishedAt.IsZero() || last.FinishedAt.Before(last.StartedAt) {
		t.Fatalf("timestamps = %v .. %v", last.StartedAt, last.FinishedAt)
	}
}

func TestFinishRecordsError(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	runID, err := store.RecordStart(ctx)
	if err != nil {
		t.Fatalf("record start: %v", err)
	}
	if err := store.Finish(ctx, runID, journal.Summary{
		Status: journal.StatusFailed,
		Error:  errors.New("steamcmd exited: exit status 8"),
	}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	last, err := store.LastRun(ctx)
	if err != nil {
		t.Fatalf("last run: %v", err)
	}
	if last.Error != "steamcmd exited: exit status 8" {
		t.Fatalf("error text = %q", last.Error)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openStore(t)
	if err := store.Finish(context.Background(), "nope", journal.Summary{Status: "applied"}); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestRecentOrdering(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.RecordStart(ctx)
		if err != nil {
			t.Fatalf("record start: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("recent count = %d, want 2", len(runs))
	}
	if runs[0].RunID != ids[2] {
		t.Fatalf("newest first expected, got %s", runs[0].RunID)
	}
	if runs[0].Status != journal.StatusRunning {
		t.Fatalf("status = %q", runs[0].Status)
	}
}

func TestLastRunEmptyJournal(t *testing.T) {
	store := openStore(t)
	last, err := store.LastRun(context.Background())
	if err != nil {
		t.Fatalf("last run: %v", err)
	}
	if last != nil {
		t.Fatalf("last run = %+v, want nil", last)
	}
}
