// Package subtitles generates timed-text tracks by driving WhisperX through
// uvx and rendering its JSON output as SRT.
//
// Transcription is treated as one opaque, potentially slow external call. A
// failure here never fails the surrounding job; callers attach the error as a
// warning and keep the video artifact.
package subtitles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"cliptrim/internal/config"
	"cliptrim/internal/logging"
	"cliptrim/internal/services"
)

const (
	whisperXCommand      = "uvx"
	whisperXCUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	whisperXPypiIndexURL = "https://pypi.org/simple"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// Service drives WhisperX transcription and SRT output.
type Service struct {
	cfg    *config.Config
	logger *slog.Logger
	run    commandRunner
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithCommandRunner injects a custom command runner (primarily for tests).
func WithCommandRunner(r commandRunner) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.run = r
		}
	}
}

// NewService constructs a subtitle generation service.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	svc := &Service{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "subtitles"),
		run:    defaultCommandRunner,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// GenerateRequest describes the inputs for subtitle generation.
type GenerateRequest struct {
	SourcePath string
	WorkDir    string
	OutputPath string
	Language   string
}

// GenerateResult reports the generated subtitle file and summary stats.
type GenerateResult struct {
	SubtitlePath string
	CueCount     int
	Duration     time.Duration
}

// Generate transcribes the source audio and writes an SRT file at
// req.OutputPath. Timestamps are relative to the source timeline.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	start := time.Now()
	if strings.TrimSpace(req.SourcePath) == "" || strings.TrimSpace(req.OutputPath) == "" {
		return GenerateResult{}, wrapGenerate("validate request", "source and output paths are required", nil)
	}
	workDir := strings.TrimSpace(req.WorkDir)
	if workDir == "" {
		workDir = filepath.Dir(req.OutputPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return GenerateResult{}, wrapGenerate("prepare work dir", "could not create transcription workspace", err)
	}

	audioPath := filepath.Join(workDir, "transcribe_audio.wav")
	defer os.Remove(audioPath)
	if err := s.extractAudio(ctx, req.SourcePath, audioPath); err != nil {
		return GenerateResult{}, err
	}

	segments, err := s.transcribe(ctx, audioPath, workDir, req.Language)
	if err != nil {
		return GenerateResult{}, err
	}

	cues := CuesFromSegments(segments)
	if len(cues) == 0 {
		return GenerateResult{}, wrapGenerate("render srt", "transcription produced no usable segments", nil)
	}
	if err := WriteSRT(req.OutputPath, cues); err != nil {
		return GenerateResult{}, err
	}

	s.logger.Info("subtitles generated",
		logging.String("output", req.OutputPath),
		logging.Int("cues", len(cues)),
		logging.Duration("elapsed", time.Since(start)))
	return GenerateResult{
		SubtitlePath: req.OutputPath,
		CueCount:     len(cues),
		Duration:     time.Since(start),
	}, nil
}

// TranscribeWords returns the word-level timestamps for a source, used by the
// silence and filler analyzers.
func (s *Service) TranscribeWords(ctx context.Context, sourcePath, workDir, language string) ([]Word, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, wrapGenerate("prepare work dir", "could not create transcription workspace", err)
	}
	audioPath := filepath.Join(workDir, "transcribe_audio.wav")
	defer os.Remove(audioPath)
	if err := s.extractAudio(ctx, sourcePath, audioPath); err != nil {
		return nil, err
	}
	segments, err := s.transcribe(ctx, audioPath, workDir, language)
	if err != nil {
		return nil, err
	}

	var words []Word
	for _, segment := range segments {
		words = append(words, segment.Words...)
	}
	return words, nil
}

func (s *Service) extractAudio(ctx context.Context, source, destination string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		destination,
	}
	if err := s.run(ctx, s.cfg.FFmpegBinary(), args...); err != nil {
		return wrapGenerate("extract audio", "failed to extract audio track with ffmpeg", err)
	}
	return nil
}

func (s *Service) transcribe(ctx context.Context, audioPath, outputDir, language string) ([]Segment, error) {
	args := s.buildWhisperXArgs(audioPath, outputDir, language)
	if err := s.run(ctx, whisperXCommand, args...); err != nil {
		return nil, wrapGenerate("run whisperx", "transcription engine failed", err)
	}

	jsonPath := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))+".json")
	segments, err := LoadSegments(jsonPath)
	if err != nil {
		return nil, wrapGenerate("load transcript", fmt.Sprintf("could not read %s", jsonPath), err)
	}
	return segments, nil
}

func (s *Service) buildWhisperXArgs(audioPath, outputDir, language string) []string {
	cudaEnabled := s.cfg != nil && s.cfg.Subtitles.CUDAEnabled
	model := "small"
	if s.cfg != nil && strings.TrimSpace(s.cfg.Subtitles.WhisperModel) != "" {
		model = strings.TrimSpace(s.cfg.Subtitles.WhisperModel)
	}

	args := make([]string, 0, 16)
	if cudaEnabled {
		args = append(args,
			"--index-url", whisperXCUDAIndexURL,
			"--extra-index-url", whisperXPypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", whisperXPypiIndexURL)
	}

	args = append(args,
		"whisperx",
		audioPath,
		"--model", model,
		"--output_dir", outputDir,
		"--output_format", "json",
	)
	if lang := strings.TrimSpace(language); lang != "" {
		args = append(args, "--language", lang)
	}
	if cudaEnabled {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--compute_type", "int8")
	}
	return args
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func wrapGenerate(operation, message string, err error) error {
	return services.Wrap(services.ErrSubtitleGeneration, "subtitles", operation, message, err)
}
