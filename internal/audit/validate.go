package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/dataset-curator/internal/dataset"
	"github.com/ironsheep/dataset-curator/internal/detection"
	"github.com/ironsheep/dataset-curator/internal/fileutil"
	"github.com/ironsheep/dataset-curator/internal/imaging"
	"github.com/ironsheep/dataset-curator/internal/logging"
	"github.com/ironsheep/dataset-curator/internal/workpool"
)

// DefaultMinArea is the default validator threshold: 2% of the image area.
const DefaultMinArea = 0.02

// Output subdirectories used by CopyFlagged.
const (
	MissingAnnotationsDir = "missing_annotations"
	SmallObjectsDir       = "small_objects"
)

// Prober reads image dimensions. *imaging.DimensionCache satisfies it.
type Prober interface {
	Probe(path string) (imaging.Dimensions, error)
}

type probeFunc func(string) (imaging.Dimensions, error)

func (f probeFunc) Probe(path string) (imaging.Dimensions, error) { return f(path) }

// SmallObject describes one box flagged by the area check.
type SmallObject struct {
	Class          string  `json:"class"`
	ClassID        int     `json:"class_id"`
	AbsoluteWidth  float64 `json:"absolute_width"`
	AbsoluteHeight float64 `json:"absolute_height"`
	RelativeWidth  float64 `json:"relative_width"`
	RelativeHeight float64 `json:"relative_height"`
}

// ImageFindings groups the flagged boxes of one image.
type ImageFindings struct {
	Image   string        `json:"image"`
	Objects []SmallObject `json:"small_objects"`
}

// LabelIssue is a problem that kept part or all of an annotation from being
// checked: an unreadable image, an unparsable line, or an unknown class id.
// Line is zero when the issue is not tied to a single line.
type LabelIssue struct {
	Image  string `json:"image"`
	Line   int    `json:"line,omitempty"`
	Reason string `json:"reason"`
}

// Report is the validator output. Image paths are relative to the dataset
// root and appear in split then file-name order.
type Report struct {
	MissingAnnotations []string        `json:"missing_annotations"`
	SmallObjects       []ImageFindings `json:"small_objects"`
	Malformed          []LabelIssue    `json:"malformed,omitempty"`
	ImagesScanned      int             `json:"images_scanned"`
}

// Validator checks a dataset for unlabeled images and undersized objects.
type Validator struct {
	// MinArea is the minimum box area as a fraction of the image area.
	MinArea float64

	// Taxonomy names class ids. When empty, ids are reported as numbers and
	// are not range-checked.
	Taxonomy detection.Taxonomy

	// Prober reads image dimensions; nil means an uncached header read.
	Prober Prober

	Logger      *slog.Logger
	NewProgress workpool.ProgressFunc
}

// Validate scans every image under root. It never writes to the dataset.
// Per-image problems are recorded in the report; the returned error is for
// an invalid threshold, an unusable root, or cancellation.
func (v *Validator) Validate(ctx context.Context, root string) (*Report, error) {
	if v.MinArea < 0 || v.MinArea > 1 {
		return nil, fmt.Errorf("min object size must be within [0,1], got %v", v.MinArea)
	}
	splits, err := dataset.DiscoverSplits(root)
	if err != nil {
		return nil, err
	}
	logger := logging.OrNop(v.Logger)
	prober := v.Prober
	if prober == nil {
		prober = probeFunc(imaging.Probe)
	}

	report := &Report{
		MissingAnnotations: []string{},
		SmallObjects:       []ImageFindings{},
	}
	for _, split := range splits {
		names, err := dataset.ListImages(split.ImagesPath())
		if err != nil {
			return nil, err
		}

		progress := v.NewProgress.Start(progressLabel("Validating", split), len(names))
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				_ = progress.Finish()
				return nil, err
			}
			v.checkImage(report, prober, split, name)
			report.ImagesScanned++
			_ = progress.Add(1)
		}
		_ = progress.Finish()
	}

	logger.Info("validation complete",
		"dataset", root,
		"images", report.ImagesScanned,
		"missing_annotations", len(report.MissingAnnotations),
		"small_objects", len(report.SmallObjects),
		"malformed", len(report.Malformed))
	return report, nil
}

func (v *Validator) checkImage(report *Report, prober Prober, split dataset.SplitDir, name string) {
	rel := split.RelImage(name)
	labelPath := filepath.Join(split.LabelsPath(), dataset.LabelName(name))

	if _, err := os.Stat(labelPath); err != nil {
		report.MissingAnnotations = append(report.MissingAnnotations, rel)
		return
	}

	dims, err := prober.Probe(filepath.Join(split.ImagesPath(), name))
	if err != nil {
		report.Malformed = append(report.Malformed, LabelIssue{Image: rel, Reason: err.Error()})
		return
	}

	boxes, bad, err := detection.ReadLabelFile(labelPath)
	if err != nil {
		report.Malformed = append(report.Malformed, LabelIssue{Image: rel, Reason: err.Error()})
		return
	}
	for _, le := range bad {
		report.Malformed = append(report.Malformed, LabelIssue{Image: rel, Line: le.Line, Reason: le.Err.Error()})
	}

	var flagged []SmallObject
	for _, b := range boxes {
		class, err := v.className(b.ClassID)
		if err != nil {
			report.Malformed = append(report.Malformed, LabelIssue{Image: rel, Reason: err.Error()})
			continue
		}
		if !detection.SmallByArea(b, dims.Width, dims.Height, v.MinArea) {
			continue
		}
		absW, absH := b.AbsoluteSize(dims.Width, dims.Height)
		flagged = append(flagged, SmallObject{
			Class:          class,
			ClassID:        b.ClassID,
			AbsoluteWidth:  absW,
			AbsoluteHeight: absH,
			RelativeWidth:  b.Width,
			RelativeHeight: b.Height,
		})
	}
	if len(flagged) > 0 {
		report.SmallObjects = append(report.SmallObjects, ImageFindings{Image: rel, Objects: flagged})
	}
}

func (v *Validator) className(id int) (string, error) {
	if len(v.Taxonomy) == 0 {
		return strconv.Itoa(id), nil
	}
	return v.Taxonomy.Name(id)
}

// CopyFlagged copies every reported image from root into
// <outputDir>/missing_annotations and <outputDir>/small_objects, keeping the
// split subdirectory. An image that qualifies for both is copied to both.
// Copy failures do not stop the pass; they are joined into the returned
// error alongside the number of files copied.
func CopyFlagged(report *Report, root, outputDir string, logger *slog.Logger) (int, error) {
	logger = logging.OrNop(logger)

	var (
		copied int
		errs   []error
	)
	copyInto := func(category, rel string) {
		src := filepath.Join(root, rel)
		dst := filepath.Join(outputDir, category, flaggedName(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			errs = append(errs, err)
			return
		}
		if err := fileutil.CopyFile(src, dst); err != nil {
			logger.Warn("cannot copy flagged image", "image", src, "error", err)
			errs = append(errs, err)
			return
		}
		copied++
	}

	for _, rel := range report.MissingAnnotations {
		copyInto(MissingAnnotationsDir, rel)
	}
	for _, f := range report.SmallObjects {
		copyInto(SmallObjectsDir, f.Image)
	}
	return copied, errors.Join(errs...)
}

// flaggedName turns "train/images/a.jpg" into "train/a.jpg" and
// "images/a.jpg" into "a.jpg".
func flaggedName(rel string) string {
	imagesDir := filepath.Dir(rel)
	split := filepath.Dir(imagesDir)
	if split == "." {
		return filepath.Base(rel)
	}
	return filepath.Join(split, filepath.Base(rel))
}

func progressLabel(verb string, split dataset.SplitDir) string {
	if split.Name == "" {
		return verb + " dataset"
	}
	return verb + " " + split.Name
}
