package orchestrator

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"cliptrim/internal/encoding"
	"cliptrim/internal/logging"
	"cliptrim/internal/services"
)

// stderrTailLines bounds the diagnostic tail attached to failed jobs.
const stderrTailLines = 20

type runOutcome struct {
	exitCode   int
	stderrTail string
	cancelled  bool
}

// runEncode spawns ffmpeg in its own process group, parses its stderr status
// stream into progress samples, and supervises cancellation. checkCancel is
// polled between reads; when it reports true the whole process group gets
// SIGTERM, a bounded wait, then SIGKILL.
func (o *Orchestrator) runEncode(
	ctx context.Context,
	binary string,
	args []string,
	onLine func(line string),
	checkCancel func() bool,
) (runOutcome, error) {
	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return runOutcome{}, services.Wrap(services.ErrProcessExecution, "executing", "open stderr", "could not capture encoder diagnostics", err)
	}

	if err := cmd.Start(); err != nil {
		return runOutcome{}, services.Wrap(services.ErrProcessExecution, "executing", "spawn encoder", fmt.Sprintf("could not start %q", binary), err)
	}
	pgid := cmd.Process.Pid

	tail := newTailBuffer(stderrTailLines)
	cancelled := make(chan struct{})
	go o.superviseCancellation(ctx, pgid, checkCancel, cancelled)

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanCarriageLines)
	for scanner.Scan() {
		line := scanner.Text()
		tail.add(line)
		if onLine != nil {
			onLine(line)
		}
	}

	waitErr := cmd.Wait()
	close(cancelled)

	outcome := runOutcome{stderrTail: tail.String()}
	select {
	case <-ctx.Done():
		outcome.cancelled = true
	default:
		if checkCancel != nil && checkCancel() {
			outcome.cancelled = true
		}
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			outcome.exitCode = exitErr.ExitCode()
		} else {
			outcome.exitCode = -1
		}
		if outcome.cancelled {
			return outcome, services.Wrap(services.ErrCancelled, "executing", "encode", "encoder terminated on cancellation", nil)
		}
		return outcome, services.Wrap(services.ErrProcessExecution, "executing", "encode",
			fmt.Sprintf("encoder exited with code %d", outcome.exitCode), waitErr)
	}
	return outcome, nil
}

// superviseCancellation polls for a cancel request while the encoder runs.
// Observation latency is one poll interval.
func (o *Orchestrator) superviseCancellation(ctx context.Context, pgid int, checkCancel func() bool, done <-chan struct{}) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			o.terminateGroup(pgid, done)
			return
		case <-ticker.C:
			if checkCancel != nil && checkCancel() {
				o.terminateGroup(pgid, done)
				return
			}
		}
	}
}

// terminateGroup sends SIGTERM to the process group, waits up to the
// configured timeout for exit, then escalates to SIGKILL.
func (o *Orchestrator) terminateGroup(pgid int, done <-chan struct{}) {
	if err := unix.Kill(-pgid, unix.SIGTERM); err != nil {
		o.logger.Debug("sigterm failed", logging.Int("pgid", pgid), logging.Error(err))
	}
	select {
	case <-done:
		return
	case <-time.After(o.killTimeout):
	}
	if err := unix.Kill(-pgid, unix.SIGKILL); err != nil {
		o.logger.Debug("sigkill failed", logging.Int("pgid", pgid), logging.Error(err))
	}
}

// scanCarriageLines splits on \n or \r so ffmpeg's in-place status updates
// surface as individual lines.
func scanCarriageLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// tailBuffer keeps the last n non-empty lines.
type tailBuffer struct {
	lines []string
	limit int
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *tailBuffer) String() string {
	return strings.Join(t.lines, "\n")
}

// progressLineHandler adapts raw stderr lines into tracker samples.
func progressLineHandler(tracker *encoding.Tracker, started time.Time, onSample func(encoding.Sample)) func(string) {
	return func(line string) {
		processed, ok := encoding.ParseProgressTime(line)
		if !ok {
			return
		}
		sample := tracker.Observe(processed, time.Since(started))
		if onSample != nil {
			onSample(sample)
		}
	}
}
