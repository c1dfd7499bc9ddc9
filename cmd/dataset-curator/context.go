package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ironsheep/dataset-curator/internal/config"
	"github.com/ironsheep/dataset-curator/internal/logging"
	"github.com/ironsheep/dataset-curator/internal/workpool"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the command logger on stderr. Flags win over the config's
// [logging] section; cfg may be nil for commands that do not load a config.
func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	opts := logging.Options{Writer: cmd.ErrOrStderr()}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
	}
	if v := flagValue(c.logLevelFlag); v != "" {
		opts.Level = v
	}
	if v := flagValue(c.logFormatFlag); v != "" {
		opts.Format = v
	}
	return logging.New(opts)
}

func (c *commandContext) progress(cmd *cobra.Command) workpool.ProgressFunc {
	return newProgressFunc(cmd.ErrOrStderr())
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
