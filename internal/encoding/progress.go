package encoding

import (
	"regexp"
	"strconv"
	"time"
)

// ffmpeg writes carriage-return separated status lines to stderr such as
//
//	frame= 840 fps=120 q=23.0 size=2048KiB time=00:00:28.03 bitrate=... speed=4.1x
//
// Only the time= field matters here: it is the timestamp of the most
// recently written output frame, so it measures progress through the keep
// duration, not the source duration.
var progressTimePattern = regexp.MustCompile(`time=\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// ParseProgressTime extracts the processed output timestamp in seconds from
// one stderr status line. Returns false for lines without a parsable field,
// including the "time=N/A" ffmpeg emits before the first frame.
func ParseProgressTime(line string) (float64, bool) {
	match := progressTimePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, true
}

// etaSmoothing is the exponential-decay weight for new ETA observations.
// Status lines arrive in bursts; raw per-line estimates jitter badly.
const etaSmoothing = 0.3

// Tracker converts processed-time observations into percent/ETA samples.
// Not safe for concurrent use; each running job owns one.
type Tracker struct {
	totalKeep float64
	processed float64
	eta       float64
	hasETA    bool
}

// Sample is one progress observation.
type Sample struct {
	Percent    float64
	ETASeconds float64
}

// NewTracker builds a tracker for an encode expected to emit totalKeep
// seconds of output.
func NewTracker(totalKeep float64) *Tracker {
	return &Tracker{totalKeep: totalKeep}
}

// Observe folds a processed timestamp and the wall-clock elapsed time into
// the running estimate. Regressing timestamps are clamped so percent stays
// monotonic.
func (t *Tracker) Observe(processed float64, elapsed time.Duration) Sample {
	if processed > t.processed {
		t.processed = processed
	}

	percent := 0.0
	if t.totalKeep > 0 {
		percent = t.processed / t.totalKeep
		if percent > 1 {
			percent = 1
		}
	}

	if percent > 0 && percent < 1 && elapsed > 0 {
		raw := elapsed.Seconds() * (1 - percent) / percent
		if raw < 0 {
			raw = 0
		}
		if t.hasETA {
			t.eta = t.eta*(1-etaSmoothing) + raw*etaSmoothing
		} else {
			t.eta = raw
			t.hasETA = true
		}
	}
	if percent >= 1 {
		t.eta = 0
		t.hasETA = true
	}

	eta := t.eta
	if eta < 0 {
		eta = 0
	}
	return Sample{Percent: percent, ETASeconds: eta}
}
