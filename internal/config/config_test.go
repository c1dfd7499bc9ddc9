package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/dataset-curator/internal/config"
	"github.com/ironsheep/dataset-curator/internal/dataset"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadExplicitPathFillsDefaultsAndExpandsPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, t.TempDir(), `
input_folders = ["~/src/a", "~/src/b"]
output_base = "~/out"
class_names = [" snake ", "raccoon"]
seed = 42
`)

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, []string{filepath.Join(home, "src", "a"), filepath.Join(home, "src", "b")}, cfg.InputFolders)
	assert.Equal(t, filepath.Join(home, "out"), cfg.OutputBase)
	assert.Equal(t, []string{"snake", "raccoon"}, cfg.ClassNames)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 640, cfg.Width())
	assert.Equal(t, 640, cfg.Height())
	assert.Equal(t, dataset.Ratios{Train: 0.7, Val: 0.2, Test: 0.1}, cfg.Ratios())
	assert.Equal(t, "linear", cfg.ResizeFilter)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadSearchesProjectFileFirst(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	project := t.TempDir()
	t.Chdir(project)

	userDir := filepath.Join(home, ".config", "dataset-curator")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.toml"),
		[]byte("input_folders = [\"/user\"]\nclass_names = [\"a\"]\n"), 0o644))

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, filepath.Join(userDir, "config.toml"), resolved)
	assert.Equal(t, []string{"/user"}, cfg.InputFolders)

	require.NoError(t, os.WriteFile(filepath.Join(project, "curator.toml"),
		[]byte("input_folders = [\"/project\"]\nclass_names = [\"a\"]\n"), 0o644))

	cfg, _, _, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"/project"}, cfg.InputFolders)
}

func TestLoadWithoutFileRequiresInputFolders(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, _, _, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input_folders")
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "does not exist")

	unknown := writeConfig(t, t.TempDir(), "input_folders = [\"/a\"]\nclass_names = [\"a\"]\nsplit_ratios = [1, 0, 0]\n")
	_, _, _, err = config.Load(unknown)
	assert.ErrorContains(t, err, "split_ratios")

	broken := writeConfig(t, t.TempDir(), "input_folders = [\n")
	_, _, _, err = config.Load(broken)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.InputFolders = []string{"/data/a"}
		cfg.OutputBase = "/data/out"
		cfg.ClassNames = []string{"snake", "raccoon", "squirrel"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"no inputs", func(c *config.Config) { c.InputFolders = nil }, "input_folders"},
		{"empty input", func(c *config.Config) { c.InputFolders = []string{""} }, "input_folders[0]"},
		{"no output", func(c *config.Config) { c.OutputBase = "" }, "output_base"},
		{"two ratios", func(c *config.Config) { c.SplitRatio = []float64{0.8, 0.2} }, "split_ratio"},
		{"ratios do not sum", func(c *config.Config) { c.SplitRatio = []float64{0.5, 0.2, 0.1} }, "split_ratio"},
		{"negative ratio", func(c *config.Config) { c.SplitRatio = []float64{1.1, -0.1, 0} }, "split_ratio"},
		{"all train", func(c *config.Config) { c.SplitRatio = []float64{1, 0, 0} }, ""},
		{"zero width", func(c *config.Config) { c.TargetSize = []int{0, 640} }, "target_size"},
		{"one dimension", func(c *config.Config) { c.TargetSize = []int{640} }, "target_size"},
		{"unknown filter", func(c *config.Config) { c.ResizeFilter = "sinc" }, "resize_filter"},
		{"bad quality", func(c *config.Config) { c.JPEGQuality = 101 }, "jpeg_quality"},
		{"no classes", func(c *config.Config) { c.ClassNames = nil }, "class_names"},
		{"blank class", func(c *config.Config) { c.ClassNames = []string{"a", ""} }, "class_names[1]"},
		{"duplicate class", func(c *config.Config) { c.ClassNames = []string{"a", "b", "a"} }, "duplicates"},
		{"negative seed", func(c *config.Config) { c.Seed = -1 }, "seed"},
		{"negative workers", func(c *config.Config) { c.Workers = -2 }, "workers"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCreateSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "curator.toml")

	require.NoError(t, config.CreateSample(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, toml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "input_folders")

	cfg, _, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []string{"snake", "raccoon", "squirrel"}, cfg.ClassNames)

	err = config.CreateSample(path)
	assert.ErrorContains(t, err, "already exists")
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/x/../y")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "y"), got)

	got, err = config.ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
