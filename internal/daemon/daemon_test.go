package daemon_test

import (
	"context"
	"testing"
	"time"

	"cliptrim/internal/config"
	"cliptrim/internal/daemon"
	"cliptrim/internal/hwaccel"
	"cliptrim/internal/jobs"
	"cliptrim/internal/orchestrator"
	"cliptrim/internal/testsupport"
)

func newDaemon(t *testing.T) (*daemon.Daemon, *config.Config, *jobs.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	prober := hwaccel.NewProber("ffmpeg", false, nil)
	orch := orchestrator.New(cfg, store, prober, nil, nil)
	d, err := daemon.New(cfg, store, orch, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Stop()
	})
	return d, cfg, store
}

func TestDaemonStartStop(t *testing.T) {
	d, _, _ := newDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	time.Sleep(50 * time.Millisecond)
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonRecoversInterruptedJobs(t *testing.T) {
	d, _, store := newDaemon(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, jobs.NewJobRequest{SourcePath: "/tmp/a.mp4", OutputPath: "/tmp/a_trimmed.mp4"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.Status = jobs.StatusExecuting
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	reset, err := d.ResetStuck(ctx)
	if err != nil {
		t.Fatalf("ResetStuck: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 recovered job, got %d", reset)
	}

	recovered, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if recovered.Status != jobs.StatusPending {
		t.Fatalf("expected pending after recovery, got %s", recovered.Status)
	}
}
