// Package hwaccel discovers which hardware H.264 encoders the host ffmpeg can
// actually use.
//
// Discovery runs once per process. Probe lists the encoders ffmpeg was built
// with, then confirms each candidate with a one-second synthetic dry-run
// encode, since a compiled-in encoder can still fail at runtime when the
// driver or device is absent. Probe failures are swallowed; the answer
// degrades to software encoding, never to an error.
package hwaccel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"os/exec"

	"cliptrim/internal/logging"
)

// Capability identifies an encoding path the host can execute.
type Capability string

const (
	CapabilityCPU   Capability = "cpu"
	CapabilityNVENC Capability = "nvenc"
	CapabilityAMF   Capability = "amf"
	CapabilityQSV   Capability = "qsv"
)

// probeOrder is the fixed hardware preference; the first verified wins.
var probeOrder = []Capability{CapabilityNVENC, CapabilityAMF, CapabilityQSV}

// Encoder returns the ffmpeg encoder name for the capability.
func (c Capability) Encoder() string {
	switch c {
	case CapabilityNVENC:
		return "h264_nvenc"
	case CapabilityAMF:
		return "h264_amf"
	case CapabilityQSV:
		return "h264_qsv"
	default:
		return "libx264"
	}
}

// Label returns a short human-readable name for status output.
func (c Capability) Label() string {
	switch c {
	case CapabilityNVENC:
		return "NVIDIA NVENC"
	case CapabilityAMF:
		return "AMD AMF"
	case CapabilityQSV:
		return "Intel Quick Sync"
	default:
		return "Software (libx264)"
	}
}

// ParseCapability converts a stored capability string back to the enum,
// defaulting to CPU for unknown values.
func ParseCapability(raw string) Capability {
	switch Capability(strings.ToLower(strings.TrimSpace(raw))) {
	case CapabilityNVENC:
		return CapabilityNVENC
	case CapabilityAMF:
		return CapabilityAMF
	case CapabilityQSV:
		return CapabilityQSV
	default:
		return CapabilityCPU
	}
}

type commandOutputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Prober caches the host capability for the process lifetime.
type Prober struct {
	mu      sync.Mutex
	binary  string
	enabled bool
	run     commandOutputRunner
	logger  *slog.Logger

	probed bool
	cached Capability
}

// ProberOption customizes Prober construction.
type ProberOption func(*Prober)

// WithRunner injects a custom command runner (primarily for tests).
func WithRunner(run commandOutputRunner) ProberOption {
	return func(p *Prober) {
		if run != nil {
			p.run = run
		}
	}
}

// NewProber builds a prober for the given ffmpeg binary. When enabled is
// false every Probe call answers CPU without touching ffmpeg.
func NewProber(binary string, enabled bool, logger *slog.Logger, opts ...ProberOption) *Prober {
	if logger == nil {
		logger = logging.NewNop()
	}
	prober := &Prober{
		binary:  strings.TrimSpace(binary),
		enabled: enabled,
		run:     defaultRunner,
		logger:  logger.With(logging.String(logging.FieldComponent, "hwaccel")),
	}
	if prober.binary == "" {
		prober.binary = "ffmpeg"
	}
	for _, opt := range opts {
		opt(prober)
	}
	return prober
}

// Probe returns the best usable capability, caching the first answer.
func (p *Prober) Probe(ctx context.Context) Capability {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.probed {
		return p.cached
	}
	p.cached = p.detect(ctx)
	p.probed = true
	p.logger.Info("encoder capability resolved", logging.String("capability", string(p.cached)))
	return p.cached
}

// Invalidate clears the cached answer so the next Probe re-detects. Intended
// for explicit re-probe requests, not for routine use.
func (p *Prober) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed = false
	p.cached = CapabilityCPU
}

func (p *Prober) detect(ctx context.Context) Capability {
	if !p.enabled {
		return CapabilityCPU
	}
	compiled, err := p.run(ctx, p.binary, "-hide_banner", "-encoders")
	if err != nil {
		p.logger.Debug("encoder listing failed", logging.Error(err))
		return CapabilityCPU
	}
	listing := string(compiled)
	for _, candidate := range probeOrder {
		if !strings.Contains(listing, candidate.Encoder()) {
			continue
		}
		if err := p.verify(ctx, candidate); err != nil {
			p.logger.Debug("encoder dry run failed",
				logging.String("encoder", candidate.Encoder()),
				logging.Error(err))
			continue
		}
		return candidate
	}
	return CapabilityCPU
}

// verify runs a one-second synthetic encode to null output. Exit status zero
// means the encoder works end to end on this host.
func (p *Prober) verify(ctx context.Context, capability Capability) error {
	output, err := p.run(ctx, p.binary,
		"-hide_banner",
		"-f", "lavfi",
		"-i", "testsrc=duration=1:size=320x240:rate=30",
		"-frames:v", "30",
		"-c:v", capability.Encoder(),
		"-f", "null", "-")
	if err != nil {
		return fmt.Errorf("dry run %s: %w: %s", capability.Encoder(), err, strings.TrimSpace(string(output)))
	}
	return nil
}
