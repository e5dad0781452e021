package main

import (
	"sync"

	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/logger"
	"go.uber.org/zap"
)

type commandContext struct {
	promptsFlag *string

	loadConfig func() (*config.Config, error)

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(promptsFlag *string, loadConfig func() (*config.Config, error)) *commandContext {
	return &commandContext{
		promptsFlag: promptsFlag,
		loadConfig:  loadConfig,
	}
}

// ensureConfig loads the environment once. Missing prompts only disable the
// AI fallback, so a bad prompts path is logged rather than returned.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := c.loadConfig()
		if err != nil {
			c.configErr = err
			return
		}
		if cfg.Prompts == nil {
			path := cfg.EnvVars.PromptsPath
			if c.promptsFlag != nil && *c.promptsFlag != "" {
				path = *c.promptsFlag
			}
			prompts, err := config.LoadPrompts(path)
			if err != nil {
				logger.Get().Warn("prompts not loaded", zap.String("path", path), zap.Error(err))
			} else {
				cfg.Prompts = prompts
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}
