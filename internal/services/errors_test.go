package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"cliptrim/internal/jobs"
	"cliptrim/internal/services"
)

func TestWrapTagsMarkerAndDetail(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := services.Wrap(services.ErrProcessExecution, "executing", "encode", "encoder exited with code 1", cause)

	if !errors.Is(err, services.ErrProcessExecution) {
		t.Fatal("expected process execution marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected underlying cause to survive wrapping")
	}
	msg := err.Error()
	for _, fragment := range []string{"executing", "encode", "encoder exited with code 1"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("expected transient fallback marker")
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected generic detail, got %q", err.Error())
	}
}

func TestFailureStatus(t *testing.T) {
	cancelled := services.Wrap(services.ErrCancelled, "executing", "encode", "stopped", nil)
	if got := services.FailureStatus(cancelled); got != jobs.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", got)
	}

	failed := services.Wrap(services.ErrSegmentValidation, "validating", "resolve", "overlap", nil)
	if got := services.FailureStatus(failed); got != jobs.StatusFailed {
		t.Fatalf("expected failed status, got %s", got)
	}
}
