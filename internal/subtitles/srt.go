package subtitles

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"cliptrim/internal/services"
)

// Cue is one caption: a source-relative time range and its text.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// WriteSRT renders cues as a SubRip file: index, start --> end, text, blank.
func WriteSRT(path string, cues []Cue) error {
	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatSRTTimestamp(cue.Start),
			FormatSRTTimestamp(cue.End),
			strings.TrimSpace(cue.Text))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return services.Wrap(services.ErrSubtitleGeneration, "subtitles", "write srt", "could not write subtitle file", err)
	}
	return nil
}

// ReadSRT parses a SubRip file back into cues.
func ReadSRT(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	content := strings.ReplaceAll(strings.TrimSpace(string(data)), "\r\n", "\n")
	if content == "" {
		return nil, nil
	}

	var cues []Cue
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		cue, ok := parseCueBlock(lines)
		if !ok {
			continue
		}
		cues = append(cues, cue)
	}
	return cues, nil
}

func parseCueBlock(lines []string) (Cue, bool) {
	for i, line := range lines {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			return Cue{}, false
		}
		start, errStart := ParseSRTTimestamp(strings.TrimSpace(parts[0]))
		end, errEnd := ParseSRTTimestamp(strings.TrimSpace(parts[1]))
		if errStart != nil || errEnd != nil {
			return Cue{}, false
		}
		text := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		if text == "" {
			return Cue{}, false
		}
		return Cue{Start: start, End: end, Text: text}, true
	}
	return Cue{}, false
}

// FormatSRTTimestamp renders seconds as HH:MM:SS,mmm.
func FormatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseSRTTimestamp converts HH:MM:SS,mmm (or a period separator) to seconds.
func ParseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
