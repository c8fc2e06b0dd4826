// Package analysis proposes removal ranges from a word-level transcript.
//
// Two detectors run over the word stream: silences (a gap between consecutive
// words longer than the configured threshold, measured from t=0) and filler
// words (exact matches against the configured list, punctuation stripped).
// Proposals are suggestions for the user, not an automatic edit.
package analysis

import (
	"sort"
	"strings"

	"cliptrim/internal/config"
	"cliptrim/internal/subtitles"
	"cliptrim/internal/timeline"
)

// Kind distinguishes why a range was proposed.
type Kind string

const (
	KindSilence Kind = "silence"
	KindFiller  Kind = "filler"
)

// Proposal is one suggested removal range.
type Proposal struct {
	Kind    Kind    `json:"kind"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Content string  `json:"content,omitempty"`
}

// Segment converts the proposal into a removal segment.
func (p Proposal) Segment() timeline.Segment {
	return timeline.Segment{Start: p.Start, End: p.End}
}

// Duration returns the proposed range length in seconds.
func (p Proposal) Duration() float64 {
	return p.End - p.Start
}

// Analyze scans transcribed words for silences and filler words. Words must
// carry source-relative timestamps; output is ordered by start time.
func Analyze(words []subtitles.Word, cfg config.Analysis) []Proposal {
	threshold := cfg.SilenceThreshold
	if threshold <= 0 {
		threshold = 0.8
	}
	fillers := make(map[string]struct{}, len(cfg.FillerWords))
	for _, word := range cfg.FillerWords {
		if cleaned := normalizeWord(word); cleaned != "" {
			fillers[cleaned] = struct{}{}
		}
	}

	var proposals []Proposal
	lastWordEnd := 0.0
	for _, word := range words {
		if gap := word.Start - lastWordEnd; gap > threshold {
			proposals = append(proposals, Proposal{
				Kind:  KindSilence,
				Start: lastWordEnd,
				End:   word.Start,
			})
		}
		if _, ok := fillers[normalizeWord(word.Word)]; ok && word.End > word.Start {
			proposals = append(proposals, Proposal{
				Kind:    KindFiller,
				Start:   word.Start,
				End:     word.End,
				Content: strings.TrimSpace(word.Word),
			})
		}
		if word.End > lastWordEnd {
			lastWordEnd = word.End
		}
	}

	sort.SliceStable(proposals, func(i, j int) bool { return proposals[i].Start < proposals[j].Start })
	return proposals
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(word), ".,!?;:\"'"))
}
