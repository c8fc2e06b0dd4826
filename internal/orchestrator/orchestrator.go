// Package orchestrator owns the job state machine and supervises the
// external encoder.
//
// One worker runs per active job, independent of the submitting caller; the
// caller only enqueues jobs and drains the event channel. Cancellation is
// cooperative at process granularity: a cancel request is observed at the
// next poll, the encoder's process group is terminated, and partial output is
// removed. Nothing retries automatically; failed jobs are resubmitted by the
// caller.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cliptrim/internal/config"
	"cliptrim/internal/encoding"
	"cliptrim/internal/fileutil"
	"cliptrim/internal/hwaccel"
	"cliptrim/internal/jobs"
	"cliptrim/internal/logging"
	"cliptrim/internal/media/ffprobe"
	"cliptrim/internal/services"
	"cliptrim/internal/subtitles"
	"cliptrim/internal/textutil"
	"cliptrim/internal/timeline"
)

const eventBufferSize = 256

type inspectFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Orchestrator drives jobs from pending to a terminal state.
type Orchestrator struct {
	cfg       *config.Config
	store     *jobs.Store
	prober    *hwaccel.Prober
	subtitler *subtitles.Service
	logger    *slog.Logger
	events    chan Event

	pollInterval time.Duration
	killTimeout  time.Duration
	inspect      inspectFunc
	ffmpegBinary string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	slots   chan struct{}
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithInspector overrides media inspection (used in tests).
func WithInspector(inspect inspectFunc) Option {
	return func(o *Orchestrator) {
		if inspect != nil {
			o.inspect = inspect
		}
	}
}

// WithFFmpegBinary overrides the encoder binary (used in tests).
func WithFFmpegBinary(binary string) Option {
	return func(o *Orchestrator) {
		if strings.TrimSpace(binary) != "" {
			o.ffmpegBinary = binary
		}
	}
}

// New constructs an orchestrator. The subtitle service may be nil; jobs that
// request a track then complete with a warning instead of subtitles.
func New(cfg *config.Config, store *jobs.Store, prober *hwaccel.Prober, subtitler *subtitles.Service, logger *slog.Logger, opts ...Option) *Orchestrator {
	concurrency := cfg.Workflow.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	o := &Orchestrator{
		cfg:          cfg,
		store:        store,
		prober:       prober,
		subtitler:    subtitler,
		logger:       logging.NewComponentLogger(logger, "orchestrator"),
		events:       make(chan Event, eventBufferSize),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		killTimeout:  time.Duration(cfg.Workflow.CancelKillTimeout) * time.Second,
		inspect:      ffprobe.Inspect,
		ffmpegBinary: cfg.FFmpegBinary(),
		slots:        make(chan struct{}, concurrency),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SubmitRequest describes a new trim job.
type SubmitRequest struct {
	SourcePath    string
	OutputPath    string
	Remove        []timeline.Segment
	WantSubtitles bool
	SubtitleLang  string
}

// Submit persists a pending job. Validation of the removal ranges happens
// when the job starts; only cheap sanity checks run here.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*jobs.Job, error) {
	source := strings.TrimSpace(req.SourcePath)
	if source == "" {
		return nil, services.Wrap(services.ErrSegmentValidation, "submit", "validate request", "source path is required", nil)
	}
	absSource, err := filepath.Abs(source)
	if err != nil {
		return nil, services.Wrap(services.ErrSegmentValidation, "submit", "resolve source", source, err)
	}
	if !fileutil.PathExists(absSource) {
		return nil, services.Wrap(services.ErrSegmentValidation, "submit", "locate source", fmt.Sprintf("%s does not exist", absSource), nil)
	}

	output := strings.TrimSpace(req.OutputPath)
	if output == "" {
		output = filepath.Join(o.cfg.Paths.OutputDir, defaultOutputName(absSource))
	}

	removeJSON := ""
	if len(req.Remove) > 0 {
		payload, err := json.Marshal(req.Remove)
		if err != nil {
			return nil, services.Wrap(services.ErrSegmentValidation, "submit", "encode segments", "could not serialize removal ranges", err)
		}
		removeJSON = string(payload)
	}

	job, err := o.store.NewJob(ctx, jobs.NewJobRequest{
		SourcePath:    absSource,
		OutputPath:    output,
		Title:         textutil.DisplayTitle(absSource),
		RemoveJSON:    removeJSON,
		WantSubtitles: req.WantSubtitles,
		SubtitleLang:  strings.TrimSpace(req.SubtitleLang),
	})
	if err != nil {
		return nil, err
	}
	o.logger.Info("job submitted",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String("source", job.SourcePath),
		logging.String("output", job.OutputPath))
	return job, nil
}

// Cancel requests cancellation for a job. Pending jobs cancel immediately;
// running jobs are stopped at the next poll of the supervising worker.
func (o *Orchestrator) Cancel(ctx context.Context, id int64) (*jobs.Job, error) {
	job, err := o.store.RequestCancel(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == jobs.StatusCancelled {
		o.emit(Event{JobID: id, Type: EventCancelled, Stage: "Cancelled", Message: jobs.CancelRequestReason})
	}
	return job, nil
}

// Start begins background processing of pending jobs.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return errors.New("orchestrator already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.running = true
	o.wg.Add(1)
	go o.runLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for in-flight jobs.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	cancel := o.cancel
	o.running = false
	o.cancel = nil
	o.mu.Unlock()

	cancel()
	o.wg.Wait()
}

func (o *Orchestrator) runLoop(ctx context.Context) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := o.store.NextForStatuses(ctx, jobs.StatusPending)
		if err != nil {
			o.logger.Error("failed to fetch next job", logging.Error(err))
			o.sleep(ctx)
			continue
		}
		if job == nil {
			o.sleep(ctx)
			continue
		}

		select {
		case o.slots <- struct{}{}:
		case <-ctx.Done():
			return
		}

		// Claim the job before the worker starts so the next loop
		// iteration does not pick it up again.
		if err := o.transition(ctx, job, jobs.StatusValidating); err != nil {
			<-o.slots
			o.logger.Error("failed to claim job", logging.Int64(logging.FieldJobID, job.ID), logging.Error(err))
			o.sleep(ctx)
			continue
		}

		o.wg.Add(1)
		go func(claimed *jobs.Job) {
			defer o.wg.Done()
			defer func() { <-o.slots }()
			o.ProcessJob(ctx, claimed)
		}(job)
	}
}

func (o *Orchestrator) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(o.pollInterval):
	}
}

// RunJob claims a pending job and drives it to a terminal state in the
// calling goroutine. Used for foreground runs where no poll loop exists.
func (o *Orchestrator) RunJob(ctx context.Context, job *jobs.Job) error {
	if err := o.transition(ctx, job, jobs.StatusValidating); err != nil {
		return err
	}
	o.ProcessJob(ctx, job)
	return nil
}

// ProcessJob runs one claimed job through the state machine to a terminal
// state. The job must already be in Validating.
func (o *Orchestrator) ProcessJob(ctx context.Context, job *jobs.Job) {
	requestID := uuid.NewString()
	logger := o.logger.With(
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldRequestID, requestID))

	if err := o.process(ctx, logger, job); err != nil {
		o.finishFailed(ctx, logger, job, err)
		return
	}
	logger.Info("job completed", logging.String("output", job.OutputPath))
	o.emit(Event{JobID: job.ID, Type: EventCompleted, Stage: "Completed", Percent: 1, Message: job.OutputPath})
}

func (o *Orchestrator) process(ctx context.Context, logger *slog.Logger, job *jobs.Job) error {
	// Validating: resolve the keep cut-list against the probed duration.
	cut, duration, err := o.validate(ctx, job)
	if err != nil {
		return err
	}
	logger.Info("cut list resolved",
		logging.Int("keep_segments", len(cut.Segments)),
		logging.Float64("keep_seconds", cut.TotalDuration()),
		logging.Float64("source_seconds", duration))

	// Building: snapshot capability now, not at exec time, so an explicit
	// re-probe cannot race an in-flight job.
	if err := o.transition(ctx, job, jobs.StatusBuilding); err != nil {
		return err
	}
	capability := o.prober.Probe(ctx)
	profile := encoding.SelectProfile(capability, o.cfg.Encoding)
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return services.Wrap(services.ErrProfileIncompatible, "building", "encode profile", "could not serialize profile", err)
	}
	job.ProfileJSON = string(profileJSON)

	args, err := encoding.BuildCommand(job.SourcePath, cut, profile, job.OutputPath)
	if err != nil {
		return err
	}
	logger.Info("command built",
		logging.String("capability", string(capability)),
		logging.String("encoder", profile.VideoCodec))

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return services.Wrap(services.ErrProcessExecution, "building", "prepare output dir", filepath.Dir(job.OutputPath), err)
	}

	// Executing: supervise ffmpeg; transcription overlaps the encode but
	// writes its own file, never the encoder's output.
	if err := o.transition(ctx, job, jobs.StatusExecuting); err != nil {
		return err
	}
	subCtx, cancelSubtitles := context.WithCancel(ctx)
	defer cancelSubtitles()
	subtitleDone := o.startSubtitles(subCtx, logger, job)
	execErr := o.execute(ctx, job, args, cut.TotalDuration())
	if execErr != nil {
		// The terminal transition must stay bounded by the cancel
		// timeouts; kill the transcription instead of waiting for it.
		cancelSubtitles()
		return execErr
	}
	o.awaitSubtitles(ctx, logger, job, subtitleDone)

	// Finalizing: the artifact must exist and be non-empty.
	if err := o.transition(ctx, job, jobs.StatusFinalizing); err != nil {
		return err
	}
	info, err := os.Stat(job.OutputPath)
	if err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrProcessExecution, "finalizing", "verify artifact",
			fmt.Sprintf("output %s is missing or empty", job.OutputPath), err)
	}

	return o.transition(ctx, job, jobs.StatusCompleted)
}

func (o *Orchestrator) validate(ctx context.Context, job *jobs.Job) (timeline.CutList, float64, error) {
	result, err := o.inspect(ctx, o.cfg.FFprobeBinary(), job.SourcePath)
	if err != nil {
		return timeline.CutList{}, 0, services.Wrap(services.ErrProcessExecution, "validating", "probe source", job.SourcePath, err)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return timeline.CutList{}, 0, services.Wrap(services.ErrSegmentValidation, "validating", "probe source",
			fmt.Sprintf("%s reports no duration", job.SourcePath), nil)
	}

	var remove []timeline.Segment
	if strings.TrimSpace(job.RemoveJSON) != "" {
		if err := json.Unmarshal([]byte(job.RemoveJSON), &remove); err != nil {
			return timeline.CutList{}, 0, services.Wrap(services.ErrSegmentValidation, "validating", "decode segments", "stored removal ranges are malformed", err)
		}
	}

	cut, err := timeline.Resolve(duration, remove, o.cfg.Encoding.MinKeepSeconds)
	if err != nil {
		return timeline.CutList{}, 0, err
	}
	return cut, duration, nil
}

func (o *Orchestrator) execute(ctx context.Context, job *jobs.Job, args []string, totalKeep float64) error {
	tracker := encoding.NewTracker(totalKeep)
	started := time.Now()
	onLine := progressLineHandler(tracker, started, func(sample encoding.Sample) {
		job.SetProgress(jobs.StatusExecuting.StageLabel(),
			fmt.Sprintf("%.1f%%", sample.Percent*100), sample.Percent*100)
		_ = o.store.UpdateProgress(ctx, job)
		o.emit(Event{
			JobID:      job.ID,
			Type:       EventProgress,
			Stage:      jobs.StatusExecuting.StageLabel(),
			Percent:    sample.Percent,
			ETASeconds: sample.ETASeconds,
		})
	})

	checkCancel := func() bool {
		current, err := o.store.GetByID(ctx, job.ID)
		if err != nil || current == nil {
			return false
		}
		return current.CancelRequested
	}

	outcome, runErr := o.runEncode(ctx, o.ffmpegBinary, args, onLine, checkCancel)
	job.ExitCode = outcome.exitCode
	job.StderrTail = outcome.stderrTail
	if runErr != nil {
		_ = fileutil.RemoveIfExists(job.OutputPath)
		return runErr
	}
	return nil
}

// startSubtitles launches transcription concurrently with the encode when
// requested. The returned channel yields the generation error (nil on
// success) and closes when the task finishes.
func (o *Orchestrator) startSubtitles(ctx context.Context, logger *slog.Logger, job *jobs.Job) <-chan error {
	if !job.WantSubtitles {
		return nil
	}
	done := make(chan error, 1)
	if o.subtitler == nil {
		done <- services.Wrap(services.ErrSubtitleGeneration, "executing", "transcribe",
			"subtitle generation requested but no transcription service is configured", nil)
		close(done)
		return done
	}
	outputPath := subtitlePathFor(job.OutputPath)
	workDir := filepath.Join(o.cfg.Paths.StagingDir, fmt.Sprintf("job-%d", job.ID))
	go func() {
		defer close(done)
		result, err := o.subtitler.Generate(ctx, subtitles.GenerateRequest{
			SourcePath: job.SourcePath,
			WorkDir:    workDir,
			OutputPath: outputPath,
			Language:   job.SubtitleLang,
		})
		if err != nil {
			done <- err
			return
		}
		logger.Info("subtitle track generated",
			logging.String("subtitle", result.SubtitlePath),
			logging.Int("cues", result.CueCount))
		done <- nil
	}()
	return done
}

// awaitSubtitles records the transcription result. Failures degrade to a
// warning on the job; they never fail the encode.
func (o *Orchestrator) awaitSubtitles(ctx context.Context, logger *slog.Logger, job *jobs.Job, done <-chan error) {
	if done == nil {
		return
	}
	err := <-done
	if err == nil {
		job.SubtitlePath = subtitlePathFor(job.OutputPath)
		return
	}
	job.SubtitleWarning = err.Error()
	logger.Warn("subtitle generation failed; continuing without subtitles", logging.Error(err))
	o.emit(Event{JobID: job.ID, Type: EventWarning, Stage: "Subtitles", Message: err.Error()})
}

// transition moves the job to the next state, persists it, and announces the
// stage change. Illegal transitions surface as programming defects.
func (o *Orchestrator) transition(ctx context.Context, job *jobs.Job, next jobs.Status) error {
	if !job.Status.CanTransition(next) {
		return services.Wrap(services.ErrTransient, string(job.Status), "transition",
			fmt.Sprintf("illegal transition %s -> %s", job.Status, next), nil)
	}
	// A cancel request may have landed since the last read; the full-row
	// write below must not clear it.
	if current, err := o.store.GetByID(ctx, job.ID); err == nil && current != nil {
		job.CancelRequested = current.CancelRequested
	}
	job.Status = next
	job.SetProgress(next.StageLabel(), "", job.ProgressPercent)
	if next == jobs.StatusCompleted {
		job.ProgressPercent = 100
	}
	if err := o.store.Update(ctx, job); err != nil {
		return err
	}
	o.emit(Event{JobID: job.ID, Type: EventStage, Stage: next.StageLabel()})
	return nil
}

// finishFailed persists the terminal failure or cancellation state and cleans
// up partial output.
func (o *Orchestrator) finishFailed(ctx context.Context, logger *slog.Logger, job *jobs.Job, cause error) {
	_ = fileutil.RemoveIfExists(job.OutputPath)
	_ = fileutil.RemoveIfExists(subtitlePathFor(job.OutputPath))
	job.SubtitlePath = ""

	status := services.FailureStatus(cause)
	if job.Status.IsTerminal() {
		return
	}
	if status == jobs.StatusCancelled {
		job.SetCancelled(jobs.CancelRequestReason)
		logger.Info("job cancelled")
	} else {
		job.SetFailed(cause.Error())
		logger.Error("job failed", logging.Error(cause), logging.Int("exit_code", job.ExitCode))
	}
	if err := o.store.Update(ctx, job); err != nil {
		logger.Error("failed to persist terminal state", logging.Error(err))
	}

	eventType := EventFailed
	stage := "Failed"
	if status == jobs.StatusCancelled {
		eventType = EventCancelled
		stage = "Cancelled"
	}
	o.emit(Event{JobID: job.ID, Type: eventType, Stage: stage, Message: job.ErrorMessage})
}

func defaultOutputName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_trimmed" + ext
}

func subtitlePathFor(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".srt"
}
