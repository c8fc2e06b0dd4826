package config

const (
	defaultOutputDir         = "~/Videos/cliptrim"
	defaultStagingDir        = "~/.local/share/cliptrim/staging"
	defaultLogDir            = "~/.local/share/cliptrim/logs"
	defaultQuality           = 16
	defaultBitrate           = "20000k"
	defaultMinKeepSeconds    = 0.04
	defaultWhisperModel      = "small"
	defaultSilenceThreshold  = 0.8
	defaultQueuePollInterval = 2
	defaultConcurrency       = 1
	defaultCancelKillTimeout = 5
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults. The encoding
// policy is "near-lossless perceptual quality, bounded worst-case size".
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Tools: Tools{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Encoding: Encoding{
			HardwareAcceleration: true,
			Quality:              defaultQuality,
			DefaultBitrate:       defaultBitrate,
			MinKeepSeconds:       defaultMinKeepSeconds,
		},
		Subtitles: Subtitles{
			WhisperModel: defaultWhisperModel,
		},
		Analysis: Analysis{
			SilenceThreshold: defaultSilenceThreshold,
			FillerWords:      []string{"um", "uh", "like", "you know"},
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
			Concurrency:       defaultConcurrency,
			CancelKillTimeout: defaultCancelKillTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
