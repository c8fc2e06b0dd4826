package main

import (
	"strings"
	"testing"

	"cliptrim/internal/jobs"
	"cliptrim/internal/timeline"
)

func TestParseRemoveSpecs(t *testing.T) {
	segments, err := parseRemoveSpecs([]string{"12.5-31.2", " 45-60 "})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []timeline.Segment{{Start: 12.5, End: 31.2}, {Start: 45, End: 60}}
	if len(segments) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(segments))
	}
	for i, seg := range segments {
		if seg != want[i] {
			t.Fatalf("segment %d: expected %+v, got %+v", i, want[i], seg)
		}
	}
}

func TestParseRemoveSpecsTimecodes(t *testing.T) {
	segments, err := parseRemoveSpecs([]string{"1:05-2:30.5"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if segments[0].Start != 65 || segments[0].End != 150.5 {
		t.Fatalf("unexpected segment: %+v", segments[0])
	}

	segments, err = parseRemoveSpecs([]string{"0:01:05-0:02:00"})
	if err != nil {
		t.Fatalf("parse hh:mm:ss: %v", err)
	}
	if segments[0].Start != 65 || segments[0].End != 120 {
		t.Fatalf("unexpected hh:mm:ss segment: %+v", segments[0])
	}
}

func TestParseRemoveSpecsRejectsMalformed(t *testing.T) {
	for _, spec := range []string{"12.5", "a-b", "10-20-30", "1:2:3:4-5"} {
		if _, err := parseRemoveSpecs([]string{spec}); err == nil {
			t.Fatalf("expected error for %q", spec)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[float64]string{
		0:      "0:00.0",
		65.5:   "1:05.5",
		3725.0: "1:02:05.0",
		-3:     "0:00.0",
	}
	for input, want := range cases {
		if got := formatClock(input); got != want {
			t.Fatalf("formatClock(%v): expected %q, got %q", input, want, got)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "Status"}, [][]string{{"1", "pending"}, {"2"}})
	if !strings.Contains(out, "pending") || !strings.Contains(out, "ID") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
}

func TestStatusCellPlainWhenNotColored(t *testing.T) {
	if got := statusCell(jobs.StatusFailed, false); got != string(jobs.StatusFailed) {
		t.Fatalf("expected plain status, got %q", got)
	}
}
