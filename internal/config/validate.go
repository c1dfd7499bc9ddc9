package config

import (
	"errors"
	"fmt"

	"github.com/ironsheep/dataset-curator/internal/imaging"
	"github.com/ironsheep/dataset-curator/internal/logging"
)

// Validate ensures the configuration is usable for a curation run.
func (c *Config) Validate() error {
	if err := c.validateFolders(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	if err := c.validateClasses(); err != nil {
		return err
	}
	if c.Seed < 0 {
		return fmt.Errorf("seed must be zero or positive, got %d", c.Seed)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be zero or positive, got %d", c.Workers)
	}
	return c.validateLogging()
}

func (c *Config) validateFolders() error {
	if len(c.InputFolders) == 0 {
		return errors.New("input_folders must list at least one source directory (create a config with 'dataset-curator config init')")
	}
	for i, dir := range c.InputFolders {
		if dir == "" {
			return fmt.Errorf("input_folders[%d] is empty", i)
		}
	}
	if c.OutputBase == "" {
		return errors.New("output_base must be set")
	}
	return nil
}

func (c *Config) validateSplit() error {
	if len(c.SplitRatio) != 3 {
		return fmt.Errorf("split_ratio must have three values (train, val, test), got %d", len(c.SplitRatio))
	}
	if err := c.Ratios().Validate(); err != nil {
		return fmt.Errorf("split_ratio: %w", err)
	}
	return nil
}

func (c *Config) validateImages() error {
	if len(c.TargetSize) != 2 {
		return fmt.Errorf("target_size must be [width, height], got %d values", len(c.TargetSize))
	}
	if c.TargetSize[0] <= 0 || c.TargetSize[1] <= 0 {
		return fmt.Errorf("target_size must be positive, got %dx%d", c.TargetSize[0], c.TargetSize[1])
	}
	if _, err := imaging.ParseFilter(c.ResizeFilter); err != nil {
		return fmt.Errorf("resize_filter: %w", err)
	}
	if c.JPEGQuality < 0 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be within [0,100], got %d", c.JPEGQuality)
	}
	return nil
}

func (c *Config) validateClasses() error {
	if len(c.ClassNames) == 0 {
		return errors.New("class_names must list at least one class")
	}
	seen := make(map[string]int, len(c.ClassNames))
	for i, name := range c.ClassNames {
		if name == "" {
			return fmt.Errorf("class_names[%d] is empty", i)
		}
		if j, ok := seen[name]; ok {
			return fmt.Errorf("class_names[%d] duplicates class_names[%d] (%q)", i, j, name)
		}
		seen[name] = i
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
