package subtitles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cliptrim/internal/config"
	"cliptrim/internal/services"
)

const transcriptJSON = `{
	"segments": [
		{"text": " Hello world.", "start": 0.5, "end": 2.0, "words": [
			{"word": "Hello", "start": 0.5, "end": 1.0},
			{"word": "world.", "start": 1.2, "end": 2.0}
		]},
		{"text": "Second segment.", "start": 3.0, "end": 5.5, "words": [
			{"word": "Second", "start": 3.0, "end": 3.6},
			{"word": "segment.", "start": 3.8, "end": 5.5}
		]}
	]
}`

func stubRunner(t *testing.T) commandRunner {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) error {
		if name == whisperXCommand {
			outputDir := ""
			audioPath := ""
			for i, arg := range args {
				if arg == "--output_dir" && i+1 < len(args) {
					outputDir = args[i+1]
				}
				if strings.HasSuffix(arg, ".wav") {
					audioPath = arg
				}
			}
			if outputDir == "" || audioPath == "" {
				t.Fatalf("whisperx args missing output dir or audio: %v", args)
			}
			base := strings.TrimSuffix(filepath.Base(audioPath), ".wav")
			return os.WriteFile(filepath.Join(outputDir, base+".json"), []byte(transcriptJSON), 0o644)
		}
		// ffmpeg audio extraction: create the destination file.
		return os.WriteFile(args[len(args)-1], []byte("wav"), 0o644)
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Subtitles.Enabled = true
	return NewService(&cfg, nil, WithCommandRunner(stubRunner(t)))
}

func TestGenerateWritesSRT(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "talk.srt")

	result, err := svc.Generate(context.Background(), GenerateRequest{
		SourcePath: "/videos/talk.mp4",
		WorkDir:    dir,
		OutputPath: outputPath,
		Language:   "en",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.CueCount != 2 || result.SubtitlePath != outputPath {
		t.Fatalf("unexpected result: %+v", result)
	}

	cues, err := ReadSRT(outputPath)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if len(cues) != 2 || cues[0].Text != "Hello world." {
		t.Fatalf("unexpected cues: %#v", cues)
	}
}

func TestGenerateWrapsEngineFailure(t *testing.T) {
	cfg := config.Default()
	svc := NewService(&cfg, nil, WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		if name == whisperXCommand {
			return errors.New("model download failed")
		}
		return os.WriteFile(args[len(args)-1], []byte("wav"), 0o644)
	}))

	dir := t.TempDir()
	_, err := svc.Generate(context.Background(), GenerateRequest{
		SourcePath: "/videos/talk.mp4",
		WorkDir:    dir,
		OutputPath: filepath.Join(dir, "talk.srt"),
	})
	if !errors.Is(err, services.ErrSubtitleGeneration) {
		t.Fatalf("expected subtitle generation error, got %v", err)
	}
}

func TestTranscribeWords(t *testing.T) {
	svc := newTestService(t)
	words, err := svc.TranscribeWords(context.Background(), "/videos/talk.mp4", t.TempDir(), "en")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if len(words) != 4 {
		t.Fatalf("expected 4 words, got %#v", words)
	}
	if words[0].Word != "Hello" || words[3].End != 5.5 {
		t.Fatalf("unexpected word timing: %#v", words)
	}
}

func TestBuildWhisperXArgs(t *testing.T) {
	cfg := config.Default()
	cfg.Subtitles.WhisperModel = "small"
	svc := NewService(&cfg, nil)

	args := svc.buildWhisperXArgs("/tmp/a.wav", "/tmp/work", "en")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "whisperx /tmp/a.wav") {
		t.Fatalf("missing whisperx invocation: %s", joined)
	}
	if !strings.Contains(joined, "--model small") || !strings.Contains(joined, "--language en") {
		t.Fatalf("missing model or language: %s", joined)
	}
	if !strings.Contains(joined, "--device cpu --compute_type int8") {
		t.Fatalf("expected cpu device flags: %s", joined)
	}

	cfg.Subtitles.CUDAEnabled = true
	args = NewService(&cfg, nil).buildWhisperXArgs("/tmp/a.wav", "/tmp/work", "")
	joined = strings.Join(args, " ")
	if !strings.Contains(joined, "--device cuda") || strings.Contains(joined, "--language") {
		t.Fatalf("unexpected cuda args: %s", joined)
	}
}
