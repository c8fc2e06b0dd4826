package ffprobe

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	payload := []byte(`{
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
			{"index": 1, "codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2}
		],
		"format": {"filename": "clip.mp4", "nb_streams": 2, "duration": "123.450000", "size": "1000", "bit_rate": "32000"}
	}`)
	result, err := Parse(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	video, ok := result.VideoStream()
	if !ok {
		t.Fatalf("expected a video stream")
	}
	if video.Resolution() != "1920x1080" {
		t.Fatalf("unexpected resolution: %s", video.Resolution())
	}
	if fps := video.FrameRateValue(); math.Abs(fps-29.97) > 0.01 {
		t.Fatalf("unexpected frame rate: %v", fps)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestParseRejectsMalformedPayload(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
		},
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestFrameRateValueEdgeCases(t *testing.T) {
	cases := map[string]float64{
		"":        0,
		"0/0":     0,
		"25":      25,
		"50/2":    25,
		"junk/10": 0,
	}
	for raw, want := range cases {
		stream := Stream{FrameRate: raw}
		if got := stream.FrameRateValue(); got != want {
			t.Fatalf("frame rate %q: expected %v, got %v", raw, want, got)
		}
	}
}
