package encoding

import (
	"strings"

	"cliptrim/internal/config"
	"cliptrim/internal/hwaccel"
)

// Profile is the concrete parameter set for one encode, immutable for the
// job's lifetime. Rate control is constant quality with a bitrate ceiling.
type Profile struct {
	Capability hwaccel.Capability `json:"capability"`
	VideoCodec string             `json:"video_codec"`
	AudioCodec string             `json:"audio_codec"`
	Preset     string             `json:"preset"`
	Quality    int                `json:"quality"`
	Bitrate    string             `json:"bitrate"`
	PixFmt     string             `json:"pix_fmt"`
	X264Opts   string             `json:"x264_opts,omitempty"`
}

// preset tiers per capability. NVENC rejects "slower"; the hardware paths
// trade a step of preset for throughput.
var presetByCapability = map[hwaccel.Capability]string{
	hwaccel.CapabilityCPU:   "slower",
	hwaccel.CapabilityNVENC: "medium",
	hwaccel.CapabilityAMF:   "slow",
	hwaccel.CapabilityQSV:   "slow",
}

const adaptiveQuantOpts = "aq-mode=2:aq-strength=1.0"

// SelectProfile maps a probed capability and the configured quality policy to
// an encoding profile. Pure table lookup; it never second-guesses the
// capability the prober decided on.
func SelectProfile(capability hwaccel.Capability, cfg config.Encoding) Profile {
	preset, ok := presetByCapability[capability]
	if !ok {
		capability = hwaccel.CapabilityCPU
		preset = presetByCapability[hwaccel.CapabilityCPU]
	}

	quality := cfg.Quality
	if quality <= 0 {
		quality = 16
	}
	bitrate := strings.TrimSpace(cfg.DefaultBitrate)
	if bitrate == "" {
		bitrate = "20000k"
	}

	profile := Profile{
		Capability: capability,
		VideoCodec: capability.Encoder(),
		AudioCodec: "aac",
		Preset:     preset,
		Quality:    quality,
		Bitrate:    bitrate,
		PixFmt:     "yuv420p",
	}
	if capability == hwaccel.CapabilityCPU {
		profile.X264Opts = adaptiveQuantOpts
	}
	return profile
}
