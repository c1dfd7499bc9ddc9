package dataset

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ironsheep/dataset-curator/internal/fileutil"
	"github.com/ironsheep/dataset-curator/internal/logging"
)

// CollectResult is the outcome of scanning source roots.
type CollectResult struct {
	Pairs        []Pair
	Orphans      []string
	OrphanLabels []string
	SkippedRoots []string
}

// Collect enumerates image/label pairs under every root. A root without an
// images or labels directory is skipped, and an image without a label is
// reported as an orphan, as is a label without an image; none of these stops
// the scan. Only paths are read.
func Collect(roots []string, logger *slog.Logger) (*CollectResult, error) {
	if len(roots) == 0 {
		return nil, errors.New("no input folders configured")
	}
	logger = logging.OrNop(logger)

	res := &CollectResult{}
	for _, root := range roots {
		imagesDir := filepath.Join(root, ImagesDir)
		labelsDir := filepath.Join(root, LabelsDir)

		if !fileutil.IsDir(imagesDir) || !fileutil.IsDir(labelsDir) {
			logger.Warn("missing images/labels folder, skipping root", "root", root)
			res.SkippedRoots = append(res.SkippedRoots, root)
			continue
		}

		names, err := ListImages(imagesDir)
		if err != nil {
			logger.Warn("cannot list images, skipping root", "root", root, "error", err)
			res.SkippedRoots = append(res.SkippedRoots, root)
			continue
		}

		found := 0
		stems := make(map[string]bool, len(names))
		for _, name := range names {
			img := filepath.Join(imagesDir, name)
			lbl := filepath.Join(labelsDir, LabelName(name))
			stems[LabelName(name)] = true
			if info, err := os.Stat(lbl); err != nil || info.IsDir() {
				logger.Warn("missing label for image", "image", img)
				res.Orphans = append(res.Orphans, img)
				continue
			}
			res.Pairs = append(res.Pairs, Pair{Image: img, Label: lbl})
			found++
		}
		res.OrphanLabels = append(res.OrphanLabels, orphanLabels(labelsDir, stems, logger)...)
		logger.Debug("collected root", "root", root, "pairs", found)
	}
	return res, nil
}

// orphanLabels lists annotation files in labelsDir whose name no image in
// the root maps to.
func orphanLabels(labelsDir string, taken map[string]bool, logger *slog.Logger) []string {
	labels, err := ListLabels(labelsDir)
	if err != nil {
		logger.Warn("cannot list labels", "dir", labelsDir, "error", err)
		return nil
	}
	var orphans []string
	for _, name := range labels {
		if taken[name] {
			continue
		}
		lbl := filepath.Join(labelsDir, name)
		logger.Warn("missing image for label", "label", lbl)
		orphans = append(orphans, lbl)
	}
	return orphans
}
