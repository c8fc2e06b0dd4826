package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Tools.FFmpegPath = strings.TrimSpace(c.Tools.FFmpegPath)
	c.Tools.FFprobePath = strings.TrimSpace(c.Tools.FFprobePath)
	c.Encoding.DefaultBitrate = strings.TrimSpace(c.Encoding.DefaultBitrate)
	c.Subtitles.WhisperModel = strings.TrimSpace(c.Subtitles.WhisperModel)
	c.Subtitles.Language = strings.TrimSpace(c.Subtitles.Language)

	fillers := make([]string, 0, len(c.Analysis.FillerWords))
	for _, word := range c.Analysis.FillerWords {
		if trimmed := strings.TrimSpace(word); trimmed != "" {
			fillers = append(fillers, trimmed)
		}
	}
	c.Analysis.FillerWords = fillers
	return nil
}
