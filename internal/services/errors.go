package services

import (
	"errors"
	"fmt"
	"strings"

	"cliptrim/internal/jobs"
)

var (
	// ErrSegmentValidation marks bad or overlapping user-supplied remove ranges.
	// Rejected synchronously; a job carrying one never starts.
	ErrSegmentValidation = errors.New("segment validation error")
	// ErrEncoderUnavailable marks the absence of any usable encoder, CPU included.
	ErrEncoderUnavailable = errors.New("encoder unavailable")
	// ErrProfileIncompatible marks a profile the command builder cannot render.
	ErrProfileIncompatible = errors.New("profile incompatible")
	// ErrProcessExecution marks an external tool that is missing or exited non-zero.
	ErrProcessExecution = errors.New("process execution error")
	// ErrSubtitleGeneration marks a transcription failure; non-fatal for the job.
	ErrSubtitleGeneration = errors.New("subtitle generation error")
	// ErrCancelled marks a caller-initiated stop; terminal but not a failure.
	ErrCancelled = errors.New("cancelled")
	// ErrTransient is the fallback marker for unclassified failures.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a pipeline error to the terminal job status the
// orchestrator should persist after the job fails.
func FailureStatus(err error) jobs.Status {
	if errors.Is(err, ErrCancelled) {
		return jobs.StatusCancelled
	}
	return jobs.StatusFailed
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
