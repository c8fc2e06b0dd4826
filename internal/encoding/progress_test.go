package encoding

import (
	"math"
	"testing"
	"time"
)

func TestParseProgressTime(t *testing.T) {
	line := "frame=  840 fps=120 q=23.0 size=    2048KiB time=00:01:28.03 bitrate= 190.6kbits/s speed=4.1x"
	got, ok := ParseProgressTime(line)
	if !ok {
		t.Fatalf("expected a parsable timestamp")
	}
	if math.Abs(got-88.03) > 0.001 {
		t.Fatalf("expected 88.03s, got %v", got)
	}
}

func TestParseProgressTimeRejectsMalformedLines(t *testing.T) {
	for _, line := range []string{
		"",
		"Press [q] to stop, [?] for help",
		"time=N/A bitrate=N/A",
		"frame=1 fps=0.0",
	} {
		if _, ok := ParseProgressTime(line); ok {
			t.Fatalf("expected no timestamp in %q", line)
		}
	}
}

func TestParseProgressTimeHours(t *testing.T) {
	got, ok := ParseProgressTime("time=01:02:03.50 ")
	if !ok || math.Abs(got-3723.5) > 0.001 {
		t.Fatalf("expected 3723.5s, got %v ok=%v", got, ok)
	}
}

func TestTrackerPercentAndETA(t *testing.T) {
	tracker := NewTracker(100)

	sample := tracker.Observe(25, 10*time.Second)
	if math.Abs(sample.Percent-0.25) > 0.001 {
		t.Fatalf("expected 25%%, got %v", sample.Percent)
	}
	// First observation seeds the estimate directly: 10s * 0.75 / 0.25 = 30s.
	if math.Abs(sample.ETASeconds-30) > 0.001 {
		t.Fatalf("expected 30s eta, got %v", sample.ETASeconds)
	}

	sample = tracker.Observe(50, 20*time.Second)
	if math.Abs(sample.Percent-0.5) > 0.001 {
		t.Fatalf("expected 50%%, got %v", sample.Percent)
	}
	// Smoothed: 30*0.7 + 20*0.3 = 27.
	if math.Abs(sample.ETASeconds-27) > 0.001 {
		t.Fatalf("expected smoothed 27s eta, got %v", sample.ETASeconds)
	}
}

func TestTrackerMonotonicPercent(t *testing.T) {
	tracker := NewTracker(100)
	tracker.Observe(60, 10*time.Second)
	sample := tracker.Observe(40, 11*time.Second)
	if sample.Percent < 0.6 {
		t.Fatalf("percent regressed to %v", sample.Percent)
	}
}

func TestTrackerCompletionZeroesETA(t *testing.T) {
	tracker := NewTracker(100)
	tracker.Observe(50, 10*time.Second)
	sample := tracker.Observe(150, 20*time.Second)
	if sample.Percent != 1 {
		t.Fatalf("expected clamp to 100%%, got %v", sample.Percent)
	}
	if sample.ETASeconds != 0 {
		t.Fatalf("expected zero eta at completion, got %v", sample.ETASeconds)
	}
}

func TestTrackerZeroTotalIsSafe(t *testing.T) {
	tracker := NewTracker(0)
	sample := tracker.Observe(10, time.Second)
	if sample.Percent != 0 || sample.ETASeconds != 0 {
		t.Fatalf("expected inert sample for zero total, got %+v", sample)
	}
}
