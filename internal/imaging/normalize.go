package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/dataset-curator/internal/dataset"
	"github.com/ironsheep/dataset-curator/internal/fileutil"
	"github.com/ironsheep/dataset-curator/internal/logging"
	"github.com/ironsheep/dataset-curator/internal/workpool"
)

// ErrSuperseded marks a pair dropped because a later pair in the same split
// writes the same label file.
var ErrSuperseded = errors.New("superseded")

// DefaultJPEGQuality matches the quality most YOLO tooling writes with.
const DefaultJPEGQuality = 95

// ParseFilter maps a config name to a resampling filter. Empty means linear.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear", "bilinear":
		return imaging.Linear, nil
	case "nearest":
		return imaging.NearestNeighbor, nil
	case "catmull-rom", "catmullrom", "bicubic":
		return imaging.CatmullRom, nil
	case "lanczos":
		return imaging.Lanczos, nil
	case "box":
		return imaging.Box, nil
	default:
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resize filter %q", name)
	}
}

// Normalizer resizes images to a fixed resolution and writes them, with a
// verbatim copy of their labels, into a split directory.
//
// The resize does not preserve aspect ratio and never letterboxes. Bounding
// boxes are resolution-relative, so labels stay valid unchanged.
type Normalizer struct {
	Width  int
	Height int

	// Filter names the resampling filter (see ParseFilter); empty means
	// linear.
	Filter string

	// JPEGQuality applies to .jpg/.jpeg outputs; zero means DefaultJPEGQuality.
	JPEGQuality int

	// Workers bounds parallel decode/resize/encode; <= 0 means NumCPU.
	Workers int

	Logger *slog.Logger

	// NewProgress, when set, is called once per split.
	NewProgress workpool.ProgressFunc
}

// NormalizeResult reports what a split normalization produced. Written holds
// destination pairs in input order; Skipped holds source pairs that were
// left out, each with its reason. A pair replaced by a later pair with the
// same stem is skipped with ErrSuperseded.
type NormalizeResult struct {
	Written []dataset.Pair
	Skipped []dataset.PairError
}

type pairOutcome struct {
	out dataset.Pair
	err error
}

// Validate checks the target size and filter name.
func (n *Normalizer) Validate() error {
	if n.Width <= 0 || n.Height <= 0 {
		return fmt.Errorf("target size must be positive, got %dx%d", n.Width, n.Height)
	}
	_, err := ParseFilter(n.Filter)
	return err
}

// NormalizeSplit writes every pair into <splitDir>/images and
// <splitDir>/labels, creating both directories. A pair that cannot be decoded
// or written is skipped entirely; neither its image nor its label appears in
// the output. When several pairs share a stem (a.jpg and a.png, or the same
// name from two roots) the last one in input order is written and the others
// are skipped with ErrSuperseded.
func (n *Normalizer) NormalizeSplit(ctx context.Context, splitDir string, pairs []dataset.Pair) (*NormalizeResult, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	filter, _ := ParseFilter(n.Filter)
	logger := logging.OrNop(n.Logger).With("split", filepath.Base(splitDir))

	imagesDir := filepath.Join(splitDir, dataset.ImagesDir)
	labelsDir := filepath.Join(splitDir, dataset.LabelsDir)
	for _, dir := range []string{imagesDir, labelsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	progress := n.NewProgress.Start(filepath.Base(splitDir), len(pairs))
	defer func() { _ = progress.Finish() }()

	// Pairs sharing a label name would share labels/<stem>.txt, so only the
	// last of each group is written and the rest are superseded.
	groups := groupByLabelName(pairs)
	ordered := make([]pairOutcome, len(pairs))
	var work []int
	for _, idx := range groups {
		last := idx[len(idx)-1]
		for _, k := range idx[:len(idx)-1] {
			ordered[k] = pairOutcome{err: fmt.Errorf("%w by %s", ErrSuperseded, pairs[last].Image)}
			_ = progress.Add(1)
		}
		if len(idx) > 1 {
			logger.Warn("name collision, later pair replaces earlier",
				"label", dataset.LabelName(pairs[last].Image), "count", len(idx), "kept", pairs[last].Image)
		}
		work = append(work, last)
	}

	outcomes, err := workpool.Map(ctx, work, n.Workers, func(_ context.Context, k int) pairOutcome {
		out, err := n.normalizePair(imagesDir, labelsDir, filter, pairs[k])
		_ = progress.Add(1)
		return pairOutcome{out: out, err: err}
	})
	if err != nil {
		return nil, err
	}
	for i, k := range work {
		ordered[k] = outcomes[i]
	}

	res := &NormalizeResult{}
	for i, o := range ordered {
		if o.err != nil {
			logger.Warn("skipping pair", "image", pairs[i].Image, "error", o.err)
			res.Skipped = append(res.Skipped, dataset.PairError{Pair: pairs[i], Err: o.err})
			continue
		}
		res.Written = append(res.Written, o.out)
	}
	logger.Info("split normalized", "written", len(res.Written), "skipped", len(res.Skipped))
	return res, nil
}

func (n *Normalizer) normalizePair(imagesDir, labelsDir string, filter imaging.ResampleFilter, p dataset.Pair) (dataset.Pair, error) {
	format, err := imaging.FormatFromFilename(p.Image)
	if err != nil {
		return dataset.Pair{}, fmt.Errorf("unsupported output format: %w", err)
	}
	src, err := imaging.Open(p.Image)
	if err != nil {
		return dataset.Pair{}, fmt.Errorf("failed to decode image: %w", err)
	}
	resized := imaging.Resize(src, n.Width, n.Height, filter)

	out := dataset.Pair{
		Image: filepath.Join(imagesDir, filepath.Base(p.Image)),
		Label: filepath.Join(labelsDir, dataset.LabelName(p.Image)),
	}

	imgTmp, err := fileutil.WriteTemp(imagesDir, filepath.Base(out.Image), func(w io.Writer) error {
		return imaging.Encode(w, resized, format, imaging.JPEGQuality(n.quality()))
	})
	if err != nil {
		return dataset.Pair{}, fmt.Errorf("failed to encode image: %w", err)
	}
	lblTmp, err := fileutil.CopyToTemp(p.Label, labelsDir)
	if err != nil {
		_ = os.Remove(imgTmp)
		return dataset.Pair{}, fmt.Errorf("failed to copy label: %w", err)
	}

	if err := os.Rename(imgTmp, out.Image); err != nil {
		return dataset.Pair{}, errors.Join(err, os.Remove(imgTmp), os.Remove(lblTmp))
	}
	if err := os.Rename(lblTmp, out.Label); err != nil {
		return dataset.Pair{}, errors.Join(err, os.Remove(lblTmp), os.Remove(out.Image))
	}
	return out, nil
}

func (n *Normalizer) quality() int {
	if n.JPEGQuality <= 0 || n.JPEGQuality > 100 {
		return DefaultJPEGQuality
	}
	return n.JPEGQuality
}

// groupByLabelName buckets pair indexes by the label file name they would
// be written to, in order of first appearance. a.jpg and a.png share a group.
func groupByLabelName(pairs []dataset.Pair) [][]int {
	pos := make(map[string]int, len(pairs))
	var groups [][]int
	for i, p := range pairs {
		name := dataset.LabelName(p.Image)
		g, ok := pos[name]
		if !ok {
			g = len(groups)
			pos[name] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
