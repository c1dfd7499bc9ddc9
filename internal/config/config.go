package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/dataset-curator/internal/dataset"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	projectConfigName = "curator.toml"
	userConfigPath    = "~/.config/dataset-curator/config.toml"
)

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config holds everything a curation run needs.
type Config struct {
	InputFolders []string  `toml:"input_folders"`
	OutputBase   string    `toml:"output_base"`
	SplitRatio   []float64 `toml:"split_ratio"`

	// TargetSize is [width, height] in pixels.
	TargetSize []int    `toml:"target_size"`
	ClassNames []string `toml:"class_names"`

	// Seed drives the split shuffle. Zero seeds from the clock.
	Seed    int64 `toml:"seed"`
	Workers int   `toml:"workers"`

	ResizeFilter string `toml:"resize_filter"`
	JPEGQuality  int    `toml:"jpeg_quality"`

	Logging Logging `toml:"logging"`
}

// Default returns a Config with every optional value filled in. InputFolders
// and ClassNames are left empty; they have no sensible default.
func Default() Config {
	return Config{
		OutputBase:   "./datasets",
		SplitRatio:   []float64{0.7, 0.2, 0.1},
		TargetSize:   []int{640, 640},
		ResizeFilter: "linear",
		JPEGQuality:  95,
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(userConfigPath)
}

// Load locates, parses, normalizes, and validates a configuration file. It
// returns the config, the path it resolved, and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config %s: %s", path, strict.String())
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{projectPath, userPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// Ratios returns the split ratios. Only meaningful after Validate.
func (c *Config) Ratios() dataset.Ratios {
	return dataset.Ratios{Train: c.SplitRatio[0], Val: c.SplitRatio[1], Test: c.SplitRatio[2]}
}

// Width returns the target image width. Only meaningful after Validate.
func (c *Config) Width() int { return c.TargetSize[0] }

// Height returns the target image height. Only meaningful after Validate.
func (c *Config) Height() int { return c.TargetSize[1] }

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules ("~" expansion, absolute, clean)
// to a path given on the command line.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration to path. An existing file is
// never overwritten.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("config file %s already exists", path)
		}
		return fmt.Errorf("create sample config: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		_ = f.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}
