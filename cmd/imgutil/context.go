package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"imgutil/internal/config"
	"imgutil/internal/logging"
)

// skipConfigLoadAnnotation marks commands that must run without a loadable
// configuration, such as config init.
const skipConfigLoadAnnotation = "skipConfigLoad"

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
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
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// logger builds the command logger. quietConsole limits stderr to warnings so
// a progress bar can own the terminal. The returned func closes the log file.
func (c *commandContext) logger(quietConsole bool) (*slog.Logger, func() error) {
	cfg := c.configValue()
	var (
		logger   *slog.Logger
		closeLog func() error
		err      error
	)
	if quietConsole {
		logger, closeLog, err = logging.NewForProgress(cfg)
	} else {
		logger, closeLog, err = logging.NewFromConfig(cfg)
	}
	if err != nil {
		return logging.NewNop(), func() error { return nil }
	}
	return logger, closeLog
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigLoadAnnotation] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
