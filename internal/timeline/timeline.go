// Package timeline resolves user-selected removal ranges into the ordered
// keep ranges the encoder splices together.
package timeline

import (
	"fmt"
	"sort"

	"cliptrim/internal/services"
)

// Segment is a half-open time range [Start, End) in source seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// CutList is the ordered, non-overlapping set of keep segments.
type CutList struct {
	Segments []Segment
}

// TotalDuration returns the summed length of all keep segments.
func (c CutList) TotalDuration() float64 {
	var total float64
	for _, seg := range c.Segments {
		total += seg.Duration()
	}
	return total
}

// IsEmpty reports whether nothing of the source survives.
func (c CutList) IsEmpty() bool {
	return len(c.Segments) == 0
}

// Resolve validates removeSegments against the source duration and computes
// their complement as a keep cut-list.
//
// Removal ranges must each satisfy 0 <= start < end <= duration and must not
// overlap one another; overlapping requests are ambiguous and rejected rather
// than merged. Ranges that merely touch are coalesced. Keep segments shorter
// than minKeep (roughly one frame) are dropped so the splice filter never sees
// a degenerate range. Output ordering is start-time ascending.
func Resolve(duration float64, removeSegments []Segment, minKeep float64) (CutList, error) {
	if duration <= 0 {
		return CutList{}, invalid(fmt.Sprintf("source duration %.3f must be positive", duration))
	}
	if minKeep < 0 {
		minKeep = 0
	}

	remove := make([]Segment, len(removeSegments))
	copy(remove, removeSegments)
	sort.Slice(remove, func(i, j int) bool { return remove[i].Start < remove[j].Start })

	for _, seg := range remove {
		if seg.Start >= seg.End {
			return CutList{}, invalid(fmt.Sprintf("segment %.3f-%.3f has no extent", seg.Start, seg.End))
		}
		if seg.Start < 0 || seg.End > duration {
			return CutList{}, invalid(fmt.Sprintf("segment %.3f-%.3f is outside 0-%.3f", seg.Start, seg.End, duration))
		}
	}

	merged := make([]Segment, 0, len(remove))
	for _, seg := range remove {
		if len(merged) == 0 {
			merged = append(merged, seg)
			continue
		}
		last := &merged[len(merged)-1]
		if seg.Start < last.End {
			return CutList{}, invalid(fmt.Sprintf("segments %.3f-%.3f and %.3f-%.3f overlap", last.Start, last.End, seg.Start, seg.End))
		}
		if seg.Start == last.End {
			last.End = seg.End
			continue
		}
		merged = append(merged, seg)
	}

	keep := make([]Segment, 0, len(merged)+1)
	cursor := 0.0
	for _, seg := range merged {
		if seg.Start-cursor >= minKeep {
			keep = append(keep, Segment{Start: cursor, End: seg.Start})
		}
		cursor = seg.End
	}
	if duration-cursor >= minKeep {
		keep = append(keep, Segment{Start: cursor, End: duration})
	}

	if len(keep) == 0 {
		return CutList{}, invalid("removal covers the entire source")
	}
	return CutList{Segments: keep}, nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrSegmentValidation, "validating", "resolve segments", message, nil)
}
