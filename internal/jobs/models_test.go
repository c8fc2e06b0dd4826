package jobs

import "testing"

func TestCanTransitionForwardOnly(t *testing.T) {
	forward := []Status{StatusPending, StatusValidating, StatusBuilding, StatusExecuting, StatusFinalizing, StatusCompleted}
	for i := 0; i < len(forward)-1; i++ {
		if !forward[i].CanTransition(forward[i+1]) {
			t.Fatalf("expected %s -> %s to be legal", forward[i], forward[i+1])
		}
	}
	if StatusExecuting.CanTransition(StatusBuilding) {
		t.Fatalf("backward transition must be rejected")
	}
	if StatusPending.CanTransition(StatusExecuting) {
		t.Fatalf("skipping stages must be rejected")
	}
}

func TestCanTransitionTerminalStatesAreFinal(t *testing.T) {
	for _, terminal := range []Status{StatusCompleted, StatusFailed, StatusCancelled} {
		for _, next := range AllStatuses() {
			if terminal.CanTransition(next) {
				t.Fatalf("terminal %s must not transition to %s", terminal, next)
			}
		}
	}
}

func TestCanTransitionFailureFromAnyNonTerminal(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusValidating, StatusBuilding, StatusExecuting, StatusFinalizing} {
		if !status.CanTransition(StatusFailed) {
			t.Fatalf("expected %s -> failed to be legal", status)
		}
		if !status.CanTransition(StatusCancelled) {
			t.Fatalf("expected %s -> cancelled to be legal", status)
		}
	}
}

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus(" Executing ")
	if !ok || status != StatusExecuting {
		t.Fatalf("expected executing, got %s ok=%v", status, ok)
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatalf("unknown status must not parse")
	}
}

func TestSetCancelledDefaultsReason(t *testing.T) {
	job := &Job{Status: StatusExecuting}
	job.SetCancelled("  ")
	if job.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", job.Status)
	}
	if job.ErrorMessage != CancelRequestReason {
		t.Fatalf("expected default reason, got %q", job.ErrorMessage)
	}
}
