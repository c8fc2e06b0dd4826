package jobs

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestNewJobAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, NewJobRequest{
		SourcePath:    "/videos/talk.mp4",
		OutputPath:    "/videos/out/talk.mp4",
		Title:         "Talk",
		RemoveJSON:    `[{"start":10,"end":20}]`,
		WantSubtitles: true,
		SubtitleLang:  "en",
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if job.ID == 0 || job.Status != StatusPending {
		t.Fatalf("unexpected new job: %+v", job)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched == nil || fetched.SourcePath != "/videos/talk.mp4" || !fetched.WantSubtitles {
		t.Fatalf("unexpected fetched job: %+v", fetched)
	}
	if fetched.CreatedAt.IsZero() || fetched.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not persisted: %+v", fetched)
	}
}

func TestGetMissingJobReturnsNil(t *testing.T) {
	store := newTestStore(t)
	job, err := store.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for missing job, got %+v", job)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/a.mp4", OutputPath: "/b.mp4"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	job.Status = StatusExecuting
	job.ProfileJSON = `{"capability":"cpu"}`
	job.SetProgress("Encoding", "time=00:00:10", 12.5)
	job.ExitCode = 0
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status != StatusExecuting || fetched.ProgressPercent != 12.5 || fetched.ProfileJSON == "" {
		t.Fatalf("update not persisted: %+v", fetched)
	}
}

func TestNextForStatusesOrdersByCreation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/1.mp4", OutputPath: "/o1.mp4"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if _, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/2.mp4", OutputPath: "/o2.mp4"}); err != nil {
		t.Fatalf("new job: %v", err)
	}

	next, err := store.NextForStatuses(ctx, StatusPending)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending job %d, got %+v", first.ID, next)
	}
}

func TestRequestCancelPendingJob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/a.mp4", OutputPath: "/b.mp4"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	cancelled, err := store.RequestCancel(ctx, job.ID)
	if err != nil {
		t.Fatalf("request cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled || !cancelled.CancelRequested {
		t.Fatalf("pending job should cancel immediately: %+v", cancelled)
	}
}

func TestRequestCancelRunningJobSetsFlagOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/a.mp4", OutputPath: "/b.mp4"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.Status = StatusExecuting
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	flagged, err := store.RequestCancel(ctx, job.ID)
	if err != nil {
		t.Fatalf("request cancel: %v", err)
	}
	if flagged.Status != StatusExecuting || !flagged.CancelRequested {
		t.Fatalf("running job should keep status with flag set: %+v", flagged)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/a.mp4", OutputPath: "/b.mp4"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.Status = StatusExecuting
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	affected, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected one job reset, got %d", affected)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status != StatusPending {
		t.Fatalf("expected pending after reset, got %s", fetched.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/a.mp4", OutputPath: "/b.mp4"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.SetFailed("encoder exploded")
	job.ExitCode = 1
	job.StderrTail = "codec not found"
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	retried, err := store.RetryFailed(ctx, job.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retried.Status != StatusPending || retried.ErrorMessage != "" || retried.ExitCode != 0 || retried.StderrTail != "" {
		t.Fatalf("retry did not reset diagnostics: %+v", retried)
	}

	if _, err := store.RetryFailed(ctx, job.ID); err == nil {
		t.Fatalf("retrying a pending job must fail")
	}
}

func TestClearAndStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/a.mp4", OutputPath: "/oa.mp4"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if _, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/b.mp4", OutputPath: "/ob.mp4"}); err != nil {
		t.Fatalf("new job: %v", err)
	}
	a.Status = StatusCompleted
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[StatusCompleted] != 1 || stats[StatusPending] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	removed, err := store.Clear(ctx, StatusCompleted)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one removed, got %d", removed)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Status != StatusPending {
		t.Fatalf("unexpected remaining jobs: %+v", remaining)
	}
}

func TestSchemaVersionGuard(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.db")

	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.db.Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("tamper version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := OpenPath(path); err == nil {
		t.Fatalf("expected schema mismatch error")
	}
}

func TestUpdateProgressPreservesControlColumns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, NewJobRequest{SourcePath: "/videos/a.mp4", OutputPath: "/videos/out/a.mp4"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.Status = StatusExecuting
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.RequestCancel(ctx, job.ID); err != nil {
		t.Fatalf("request cancel: %v", err)
	}

	// Stale worker snapshot without the cancel flag.
	job.CancelRequested = false
	job.SetProgress("Encoding", "42.0%", 42)
	if err := store.UpdateProgress(ctx, job); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	current, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !current.CancelRequested {
		t.Fatal("progress write must not clear cancel_requested")
	}
	if current.ProgressPercent != 42 || current.ProgressStage != "Encoding" {
		t.Fatalf("progress fields not persisted: %+v", current)
	}
}
