package main

import (
	"log/slog"
	"strings"
	"sync"

	"cliptrim/internal/config"
	"cliptrim/internal/hwaccel"
	"cliptrim/internal/jobs"
	"cliptrim/internal/logging"
	"cliptrim/internal/orchestrator"
	"cliptrim/internal/subtitles"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// buildLogger constructs the process logger from the loaded configuration.
// Logging problems never abort a command; a nop logger is the fallback.
func (c *commandContext) buildLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		if cfg == nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openStore() (*jobs.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return jobs.Open(cfg)
}

// newOrchestrator wires the processing pipeline for the loaded configuration.
// The subtitle service is always attached; subtitles.enabled only decides
// whether jobs ask for a track by default.
func (c *commandContext) newOrchestrator(store *jobs.Store) *orchestrator.Orchestrator {
	cfg := c.configValue()
	logger := c.buildLogger()

	prober := hwaccel.NewProber(cfg.FFmpegBinary(), cfg.Encoding.HardwareAcceleration, logger)
	subtitler := subtitles.NewService(cfg, logger)
	return orchestrator.New(cfg, store, prober, subtitler, logger)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
