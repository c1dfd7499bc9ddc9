package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ironsheep/dataset-curator/internal/dataset"
	"github.com/ironsheep/dataset-curator/internal/detection"
	"github.com/ironsheep/dataset-curator/internal/fileutil"
	"github.com/ironsheep/dataset-curator/internal/logging"
	"github.com/ironsheep/dataset-curator/internal/workpool"
)

// DefaultSmallThreshold is the default filter threshold: 5% of the image
// width and height.
const DefaultSmallThreshold = 0.05

// Filter extracts the pairs that contain small objects into a new dataset.
type Filter struct {
	// Threshold is the relative size below which both width and height must
	// fall for a box to count as small.
	Threshold float64

	Logger      *slog.Logger
	NewProgress workpool.ProgressFunc
}

// FilterResult summarizes a filter run. Kept holds destination pairs.
type FilterResult struct {
	Scanned   int                 `json:"scanned"`
	Unlabeled int                 `json:"unlabeled"`
	Kept      []dataset.Pair      `json:"kept"`
	Skipped   []dataset.PairError `json:"-"`
	PerSplit  map[string]int      `json:"per_split"`
}

// Run copies every qualifying pair from root into outputDir, mirroring the
// split layout. Images without a label are ignored; labels that cannot be
// parsed and copies that fail are recorded in Skipped.
func (f *Filter) Run(ctx context.Context, root, outputDir string) (*FilterResult, error) {
	if f.Threshold <= 0 || f.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be within (0,1], got %v", f.Threshold)
	}
	splits, err := dataset.DiscoverSplits(root)
	if err != nil {
		return nil, err
	}
	logger := logging.OrNop(f.Logger)

	res := &FilterResult{PerSplit: map[string]int{}}
	for _, split := range splits {
		dst := dataset.SplitDir{Name: split.Name, Dir: filepath.Join(outputDir, split.Name)}
		for _, dir := range []string{dst.ImagesPath(), dst.LabelsPath()} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create %s: %w", dir, err)
			}
		}

		names, err := dataset.ListImages(split.ImagesPath())
		if err != nil {
			return nil, err
		}

		progress := f.NewProgress.Start(progressLabel("Filtering", split), len(names))
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				_ = progress.Finish()
				return nil, err
			}
			res.Scanned++
			f.filterImage(res, logger, split, dst, name)
			_ = progress.Add(1)
		}
		_ = progress.Finish()
	}

	logger.Info("filter complete",
		"dataset", root,
		"output", outputDir,
		"scanned", res.Scanned,
		"kept", len(res.Kept),
		"skipped", len(res.Skipped))
	return res, nil
}

func (f *Filter) filterImage(res *FilterResult, logger *slog.Logger, split, dst dataset.SplitDir, name string) {
	src := dataset.Pair{
		Image: filepath.Join(split.ImagesPath(), name),
		Label: filepath.Join(split.LabelsPath(), dataset.LabelName(name)),
	}
	if _, err := os.Stat(src.Label); err != nil {
		logger.Debug("no label, ignoring image", "image", src.Image)
		res.Unlabeled++
		return
	}

	boxes, bad, err := detection.ReadLabelFile(src.Label)
	if err == nil && len(bad) > 0 {
		err = bad[0]
	}
	if err != nil {
		logger.Warn("unparsable label, skipping pair", "label", src.Label, "error", err)
		res.Skipped = append(res.Skipped, dataset.PairError{Pair: src, Err: err})
		return
	}
	if !detection.HasSmallObjects(boxes, f.Threshold) {
		return
	}

	out := dataset.Pair{
		Image: filepath.Join(dst.ImagesPath(), name),
		Label: filepath.Join(dst.LabelsPath(), dataset.LabelName(name)),
	}
	if err := fileutil.CopyFile(src.Image, out.Image); err != nil {
		logger.Warn("cannot copy image", "image", src.Image, "error", err)
		res.Skipped = append(res.Skipped, dataset.PairError{Pair: src, Err: err})
		return
	}
	if err := fileutil.CopyFile(src.Label, out.Label); err != nil {
		_ = os.Remove(out.Image)
		logger.Warn("cannot copy label", "label", src.Label, "error", err)
		res.Skipped = append(res.Skipped, dataset.PairError{Pair: src, Err: err})
		return
	}
	res.Kept = append(res.Kept, out)
	res.PerSplit[split.Name]++
}
