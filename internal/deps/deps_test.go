package deps_test

import (
	"testing"

	"cliptrim/internal/config"
	"cliptrim/internal/deps"
	"cliptrim/internal/testsupport"
)

func TestRequirementsMarksWhisperOptional(t *testing.T) {
	cfg := config.Default()
	cfg.Subtitles.Enabled = false

	var uvx deps.Requirement
	var found bool
	for _, req := range deps.Requirements(&cfg) {
		if req.Command == "uvx" {
			uvx = req
			found = true
		}
	}
	if !found {
		t.Fatal("expected a uvx requirement")
	}
	if !uvx.Optional {
		t.Fatal("expected uvx optional when subtitles are disabled")
	}

	cfg.Subtitles.Enabled = true
	for _, req := range deps.Requirements(&cfg) {
		if req.Command == "uvx" && req.Optional {
			t.Fatal("expected uvx required when subtitles are enabled")
		}
	}
}

func TestCheckBinariesWithStubs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	if missing := deps.MissingRequired(statuses); len(missing) != 0 {
		t.Fatalf("expected no missing tools with stubs on PATH, got %v", missing)
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("expected %s available, detail: %s", status.Name, status.Detail)
		}
	}
}

func TestCheckBinariesReportsMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpegPath = "definitely-not-a-real-binary"

	statuses := deps.CheckBinaries(deps.Requirements(&cfg))
	missing := deps.MissingRequired(statuses)
	found := false
	for _, name := range missing {
		if name == "FFmpeg" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FFmpeg in missing list, got %v", missing)
	}
}
