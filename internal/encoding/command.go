package encoding

import (
	"fmt"
	"strconv"
	"strings"

	"cliptrim/internal/services"
	"cliptrim/internal/timeline"
)

// BuildCommand renders a keep cut-list and profile into the ffmpeg argument
// list, excluding the binary itself. Pure and deterministic: identical inputs
// always yield the identical slice, so commands can be logged and replayed.
//
// The splice uses one select expression applied to both streams:
//
//	[0:v]select='between(t,A,B)+...',setpts=N/FRAME_RATE/TB[v]
//	[0:a]aselect='...',asetpts=N/SR/TB[a]
//
// setpts/asetpts rewrite timestamps so the retained frames play back
// contiguously.
func BuildCommand(inputPath string, cut timeline.CutList, profile Profile, outputPath string) ([]string, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, services.Wrap(services.ErrProcessExecution, "building", "build command", "input path is empty", nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return nil, services.Wrap(services.ErrProcessExecution, "building", "build command", "output path is empty", nil)
	}
	if cut.IsEmpty() {
		return nil, services.Wrap(services.ErrSegmentValidation, "building", "build command", "cut list has no segments", nil)
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	args := []string{
		"-i", inputPath,
		"-filter_complex", spliceFilter(cut),
		"-map", "[v]",
		"-map", "[a]",
		"-c:v", profile.VideoCodec,
		"-c:a", profile.AudioCodec,
		"-preset", profile.Preset,
		"-crf", strconv.Itoa(profile.Quality),
		"-pix_fmt", profile.PixFmt,
		"-b:v", profile.Bitrate,
	}
	if profile.X264Opts != "" {
		args = append(args, "-x264opts", profile.X264Opts)
	}
	args = append(args, "-y", outputPath)
	return args, nil
}

func validateProfile(profile Profile) error {
	if _, ok := presetByCapability[profile.Capability]; !ok {
		return incompatible(fmt.Sprintf("capability %q has no parameter set", profile.Capability))
	}
	if profile.VideoCodec == "" || profile.AudioCodec == "" {
		return incompatible("profile is missing codec identifiers")
	}
	if profile.Preset == "" || profile.Bitrate == "" || profile.Quality <= 0 {
		return incompatible("profile is missing rate-control parameters")
	}
	return nil
}

func spliceFilter(cut timeline.CutList) string {
	conditions := make([]string, 0, len(cut.Segments))
	for _, seg := range cut.Segments {
		conditions = append(conditions, fmt.Sprintf("between(t,%s,%s)", formatSeconds(seg.Start), formatSeconds(seg.End)))
	}
	selector := strings.Join(conditions, "+")
	return fmt.Sprintf("[0:v]select='%s',setpts=N/FRAME_RATE/TB[v];[0:a]aselect='%s',asetpts=N/SR/TB[a]", selector, selector)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func incompatible(message string) error {
	return services.Wrap(services.ErrProfileIncompatible, "building", "build command", message, nil)
}
