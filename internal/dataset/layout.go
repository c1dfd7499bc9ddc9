package dataset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ironsheep/dataset-curator/internal/detection"
	"github.com/ironsheep/dataset-curator/internal/fileutil"
)

const (
	ImagesDir    = "images"
	LabelsDir    = "labels"
	ManifestName = "data.yaml"

	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
)

// SplitNames lists the curated splits in canonical order.
var SplitNames = []string{SplitTrain, SplitVal, SplitTest}

// ImageExtensions is the allow-list of image formats, lower case.
var ImageExtensions = []string{".jpg", ".jpeg", ".png"}

// Pair is an image and its annotation file.
type Pair struct {
	Image string `json:"image"`
	Label string `json:"label"`
}

// PairError records a per-pair failure that caused the pair to be skipped.
type PairError struct {
	Pair Pair  `json:"pair"`
	Err  error `json:"-"`
}

func (e PairError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pair.Image, e.Err)
}

func (e PairError) Unwrap() error { return e.Err }

// IsImage reports whether name carries an allow-listed image extension.
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// LabelName derives the annotation file name for an image file name.
func LabelName(imageName string) string {
	base := filepath.Base(imageName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + detection.LabelExt
}

// ListImages returns the sorted base names of allow-listed image files
// directly inside dir. Extensions match regardless of case. Subdirectories
// are not descended into.
func ListImages(dir string) ([]string, error) {
	return listFiles(dir, IsImage)
}

// ListLabels returns the sorted base names of annotation files directly
// inside dir.
func ListLabels(dir string) ([]string, error) {
	return listFiles(dir, func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), detection.LabelExt)
	})
}

func listFiles(dir string, keep func(name string) bool) ([]string, error) {
	var names []string
	err := doublestar.GlobWalk(os.DirFS(dir), "*", func(path string, d fs.DirEntry) error {
		if d.IsDir() || !keep(path) {
			return nil
		}
		names = append(names, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(names)
	return names, nil
}

// SplitDir is one images/labels directory pair within a materialized
// dataset. Name is empty for a flat dataset.
type SplitDir struct {
	Name string
	Dir  string
}

// ImagesPath returns the split's images directory.
func (s SplitDir) ImagesPath() string { return filepath.Join(s.Dir, ImagesDir) }

// LabelsPath returns the split's labels directory.
func (s SplitDir) LabelsPath() string { return filepath.Join(s.Dir, LabelsDir) }

// RelImage returns the dataset-relative path of an image in this split.
func (s SplitDir) RelImage(name string) string {
	return filepath.Join(s.Name, ImagesDir, name)
}

// DiscoverSplits finds the image directories of a materialized dataset.
// Curated train/val/test splits win; when none is present a flat
// <root>/images layout is accepted.
func DiscoverSplits(root string) ([]SplitDir, error) {
	var splits []SplitDir
	for _, name := range SplitNames {
		dir := filepath.Join(root, name)
		if fileutil.IsDir(filepath.Join(dir, ImagesDir)) {
			splits = append(splits, SplitDir{Name: name, Dir: dir})
		}
	}
	if len(splits) > 0 {
		return splits, nil
	}
	if fileutil.IsDir(filepath.Join(root, ImagesDir)) {
		return []SplitDir{{Dir: root}}, nil
	}
	return nil, fmt.Errorf("no images directory found under %s", root)
}
