package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	for i, dir := range c.InputFolders {
		expanded, err := expandPath(strings.TrimSpace(dir))
		if err != nil {
			return fmt.Errorf("input_folders[%d]: %w", i, err)
		}
		c.InputFolders[i] = expanded
	}

	var err error
	if c.OutputBase, err = expandPath(strings.TrimSpace(c.OutputBase)); err != nil {
		return fmt.Errorf("output_base: %w", err)
	}

	for i, name := range c.ClassNames {
		c.ClassNames[i] = strings.TrimSpace(name)
	}

	c.ResizeFilter = strings.ToLower(strings.TrimSpace(c.ResizeFilter))
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}
