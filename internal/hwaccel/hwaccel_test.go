package hwaccel

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const encoderListing = ` V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC
 V....D h264_nvenc           NVIDIA NVENC H.264 encoder
 V....D h264_qsv             H.264 / AVC (Intel Quick Sync Video)
`

func TestProbePrefersNVENC(t *testing.T) {
	prober := NewProber("ffmpeg", true, nil, WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if args[1] == "-encoders" {
			return []byte(encoderListing), nil
		}
		return nil, nil
	}))
	if got := prober.Probe(context.Background()); got != CapabilityNVENC {
		t.Fatalf("expected nvenc, got %s", got)
	}
}

func TestProbeFallsThroughFailedDryRun(t *testing.T) {
	prober := NewProber("ffmpeg", true, nil, WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if args[1] == "-encoders" {
			return []byte(encoderListing), nil
		}
		for i, arg := range args {
			if arg == "-c:v" && args[i+1] == "h264_nvenc" {
				return []byte("Cannot load libnvidia-encode"), errors.New("exit status 1")
			}
		}
		return nil, nil
	}))
	if got := prober.Probe(context.Background()); got != CapabilityQSV {
		t.Fatalf("expected qsv after nvenc dry-run failure, got %s", got)
	}
}

func TestProbeReturnsCPUWhenNothingWorks(t *testing.T) {
	prober := NewProber("ffmpeg", true, nil, WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("ffmpeg not found")
	}))
	if got := prober.Probe(context.Background()); got != CapabilityCPU {
		t.Fatalf("expected cpu fallback, got %s", got)
	}
}

func TestProbeDisabledSkipsFFmpeg(t *testing.T) {
	calls := 0
	prober := NewProber("ffmpeg", false, nil, WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls++
		return []byte(encoderListing), nil
	}))
	if got := prober.Probe(context.Background()); got != CapabilityCPU {
		t.Fatalf("expected cpu when disabled, got %s", got)
	}
	if calls != 0 {
		t.Fatalf("expected no ffmpeg invocations, got %d", calls)
	}
}

func TestProbeCachesUntilInvalidate(t *testing.T) {
	calls := 0
	prober := NewProber("ffmpeg", true, nil, WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if args[1] == "-encoders" {
			calls++
			return []byte(encoderListing), nil
		}
		return nil, nil
	}))
	ctx := context.Background()
	prober.Probe(ctx)
	prober.Probe(ctx)
	if calls != 1 {
		t.Fatalf("expected one listing call while cached, got %d", calls)
	}
	prober.Invalidate()
	prober.Probe(ctx)
	if calls != 2 {
		t.Fatalf("expected re-probe after invalidate, got %d calls", calls)
	}
}

func TestParseCapability(t *testing.T) {
	if ParseCapability(" NVENC ") != CapabilityNVENC {
		t.Fatalf("expected nvenc")
	}
	if ParseCapability("mystery") != CapabilityCPU {
		t.Fatalf("unknown values should map to cpu")
	}
}

func TestEncoderNames(t *testing.T) {
	for capability, encoder := range map[Capability]string{
		CapabilityCPU:   "libx264",
		CapabilityNVENC: "h264_nvenc",
		CapabilityAMF:   "h264_amf",
		CapabilityQSV:   "h264_qsv",
	} {
		if capability.Encoder() != encoder {
			t.Fatalf("capability %s: expected encoder %s, got %s", capability, encoder, capability.Encoder())
		}
		if !strings.Contains(capability.Label(), " ") {
			t.Fatalf("label for %s should be descriptive, got %q", capability, capability.Label())
		}
	}
}
