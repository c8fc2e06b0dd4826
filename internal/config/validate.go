package config

import (
	"errors"
	"fmt"
	"regexp"
)

var bitratePattern = regexp.MustCompile(`^[0-9]+[kKmM]?$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if c.Analysis.SilenceThreshold <= 0 {
		return errors.New("analysis.silence_threshold must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.Quality < 0 || c.Encoding.Quality > 51 {
		return errors.New("encoding.quality must be between 0 and 51")
	}
	if c.Encoding.DefaultBitrate != "" && !bitratePattern.MatchString(c.Encoding.DefaultBitrate) {
		return fmt.Errorf("encoding.default_bitrate %q must look like 20000k", c.Encoding.DefaultBitrate)
	}
	if c.Encoding.MinKeepSeconds < 0 {
		return errors.New("encoding.min_keep_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.Enabled && c.Subtitles.WhisperModel == "" {
		return errors.New("subtitles.whisper_model must be set when subtitles.enabled is true")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive (seconds)")
	}
	if c.Workflow.Concurrency < 1 {
		return errors.New("workflow.concurrency must be >= 1")
	}
	if c.Workflow.CancelKillTimeout <= 0 {
		return errors.New("workflow.cancel_kill_timeout must be positive (seconds)")
	}
	return nil
}
