package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/adapter"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *adapter.Config
	logger     *slog.Logger
	logCloser  io.Closer
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads the configuration and the file logger once per
// invocation. A log file that cannot be opened falls back to a null logger.
func (c *commandContext) ensureConfig() (*adapter.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := adapter.LoadConfig(path)
		if err != nil {
			c.configErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		c.config = cfg

		logger, closer, err := adapter.SetupLogger(&cfg.Logging)
		if err != nil {
			logger = adapter.NullLogger()
		}
		c.logger, c.logCloser = logger, closer
		slog.SetDefault(logger)
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	if c.logger == nil {
		return adapter.NullLogger()
	}
	return c.logger
}

func (c *commandContext) close() {
	if c.logCloser != nil {
		c.logCloser.Close()
		c.logCloser = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
