package subtitles

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Word is a single transcribed word with source-relative timestamps.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is one transcription segment with optional word timing.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

type transcriptPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments reads a WhisperX JSON transcript from disk.
func LoadSegments(path string) ([]Segment, error) {
	if strings.TrimSpace(path) == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload transcriptPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

// CuesFromSegments converts transcript segments into a time-ordered,
// non-overlapping cue sequence. Empty texts and zero-extent segments are
// dropped; a cue overlapping its predecessor is clipped to start where the
// predecessor ends.
func CuesFromSegments(segments []Segment) []Cue {
	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	cues := make([]Cue, 0, len(ordered))
	lastEnd := 0.0
	for _, segment := range ordered {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		start, end := segment.Start, segment.End
		if start < lastEnd {
			start = lastEnd
		}
		if end <= start {
			continue
		}
		cues = append(cues, Cue{Start: start, End: end, Text: text})
		lastEnd = end
	}
	return cues
}
