package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"cliptrim/internal/config"
	"cliptrim/internal/jobs"
	"cliptrim/internal/logging"
	"cliptrim/internal/orchestrator"
)

// Daemon coordinates background job processing and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *jobs.Store
	orch   *orchestrator.Orchestrator

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running      bool
	JobDBPath    string
	LockFilePath string
	Jobs         map[jobs.Status]int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, orch *orchestrator.Orchestrator, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || orch == nil {
		return nil, errors.New("daemon requires config, store, and orchestrator")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "cliptrimd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		orch:     orch,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, recovers jobs abandoned by a previous
// run, and launches the orchestrator.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another cliptrim daemon instance is already running")
	}

	reset, err := d.store.ResetStuckProcessing(ctx)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("reset stuck jobs: %w", err)
	}
	if reset > 0 {
		d.logger.Info("recovered interrupted jobs", logging.Int64("count", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.orch.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start orchestrator: %w", err)
	}
	d.cancel = cancel

	d.running.Store(true)
	d.logger.Info("cliptrim daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts background processing and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.orch.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("cliptrim daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Events exposes the orchestrator event stream.
func (d *Daemon) Events() <-chan orchestrator.Event {
	return d.orch.Events()
}

// Submit enqueues a new trim job.
func (d *Daemon) Submit(ctx context.Context, req orchestrator.SubmitRequest) (*jobs.Job, error) {
	return d.orch.Submit(ctx, req)
}

// Cancel requests cancellation of a job.
func (d *Daemon) Cancel(ctx context.Context, id int64) (*jobs.Job, error) {
	return d.orch.Cancel(ctx, id)
}

// ListJobs returns jobs filtered by optional statuses.
func (d *Daemon) ListJobs(ctx context.Context, statuses ...jobs.Status) ([]*jobs.Job, error) {
	return d.store.List(ctx, statuses...)
}

// ClearJobs removes jobs in the given statuses, or every job when none is
// given.
func (d *Daemon) ClearJobs(ctx context.Context, statuses ...jobs.Status) (int64, error) {
	return d.store.Clear(ctx, statuses...)
}

// ResetStuck transitions in-flight jobs back to pending for another attempt.
func (d *Daemon) ResetStuck(ctx context.Context) (int64, error) {
	return d.store.ResetStuckProcessing(ctx)
}

// RetryJob returns a failed or cancelled job to pending.
func (d *Daemon) RetryJob(ctx context.Context, id int64) (*jobs.Job, error) {
	return d.store.RetryFailed(ctx, id)
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	stats, err := d.store.Stats(ctx)
	if err != nil {
		d.logger.Warn("failed to read job stats", logging.Error(err))
	}
	return Status{
		Running:      d.running.Load(),
		JobDBPath:    d.store.Path(),
		LockFilePath: d.lockPath,
		Jobs:         stats,
	}
}
