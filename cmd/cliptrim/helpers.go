package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cliptrim/internal/timeline"
)

// parseRemoveSpecs converts --remove flag values into segments. Each value is
// a "start-end" pair where either side is plain seconds ("12.5") or a
// timecode ("1:05", "0:01:05.5").
func parseRemoveSpecs(specs []string) ([]timeline.Segment, error) {
	segments := make([]timeline.Segment, 0, len(specs))
	for _, spec := range specs {
		trimmed := strings.TrimSpace(spec)
		if trimmed == "" {
			continue
		}
		parts := strings.Split(trimmed, "-")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid removal range %q: expected start-end", spec)
		}
		start, err := parseTimecode(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid removal range %q: %w", spec, err)
		}
		end, err := parseTimecode(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid removal range %q: %w", spec, err)
		}
		segments = append(segments, timeline.Segment{Start: start, End: end})
	}
	return segments, nil
}

func parseTimecode(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty time value")
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("time %q has too many components", value)
	}
	var total float64
	for _, part := range parts {
		component, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || component < 0 {
			return 0, fmt.Errorf("time %q is not a valid timecode", value)
		}
		total = total*60 + component
	}
	return total, nil
}

// formatClock renders seconds as h:mm:ss.s, dropping the hour field when zero.
func formatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	whole := int(seconds)
	frac := seconds - float64(whole)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := float64(whole%60) + frac
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%04.1f", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%04.1f", minutes, secs)
}

func formatSecondsFlag(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
