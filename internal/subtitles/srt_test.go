package subtitles

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndReadSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	cues := []Cue{
		{Start: 0.5, End: 2.25, Text: "Hello there."},
		{Start: 3, End: 3725.5, Text: "Second line\nwith a wrap."},
	}
	if err := WriteSRT(path, cues); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "1\n00:00:00,500 --> 00:00:02,250\nHello there.") {
		t.Fatalf("unexpected first cue rendering:\n%s", content)
	}
	if !strings.Contains(content, "01:02:05,500") {
		t.Fatalf("expected hour-scale end timestamp:\n%s", content)
	}

	parsed, err := ReadSRT(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(parsed))
	}
	if math.Abs(parsed[0].Start-0.5) > 0.001 || parsed[0].Text != "Hello there." {
		t.Fatalf("unexpected first cue: %+v", parsed[0])
	}
	if parsed[1].Text != "Second line\nwith a wrap." {
		t.Fatalf("multiline text not preserved: %+v", parsed[1])
	}
}

func TestParseSRTTimestamp(t *testing.T) {
	cases := map[string]float64{
		"00:00:01,000": 1,
		"00:01:02,500": 62.5,
		"01:00:00.250": 3600.25,
	}
	for raw, want := range cases {
		got, err := ParseSRTTimestamp(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if math.Abs(got-want) > 0.001 {
			t.Fatalf("parse %q: expected %v, got %v", raw, want, got)
		}
	}
	for _, raw := range []string{"", "1:2", "aa:bb:cc,dd", "00:00:01"} {
		if _, err := ParseSRTTimestamp(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestCuesFromSegments(t *testing.T) {
	segments := []Segment{
		{Text: "second", Start: 5, End: 8},
		{Text: "first", Start: 1, End: 4},
		{Text: "   ", Start: 8, End: 9},
		{Text: "overlapping", Start: 7, End: 10},
		{Text: "degenerate", Start: 10, End: 10},
	}
	cues := CuesFromSegments(segments)
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %#v", cues)
	}
	if cues[0].Text != "first" || cues[1].Text != "second" {
		t.Fatalf("cues not time ordered: %#v", cues)
	}
	if cues[2].Start != 8 {
		t.Fatalf("overlap not clipped: %+v", cues[2])
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].Start < cues[i-1].End {
			t.Fatalf("cues overlap: %#v", cues)
		}
	}
}
