package textutil_test

import (
	"testing"

	"cliptrim/internal/textutil"
)

func TestDisplayTitle(t *testing.T) {
	cases := map[string]string{
		"/videos/my_talk.final.mp4":   "My Talk Final",
		"weekly-standup 2024.mkv":     "Weekly Standup 2024",
		"/videos/.mp4":                "Untitled",
		"":                            "Untitled",
		"/videos/ALREADY NAMED.mp4":   "Already Named",
		"/videos/mixed_case-file.mov": "Mixed Case File",
	}
	for input, want := range cases {
		if got := textutil.DisplayTitle(input); got != want {
			t.Fatalf("DisplayTitle(%q): expected %q, got %q", input, want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := textutil.Truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	got := textutil.Truncate("a very long string that keeps going", 12)
	if len([]rune(got)) > 12 {
		t.Fatalf("expected at most 12 runes, got %q", got)
	}
}
